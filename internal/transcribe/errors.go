package transcribe

import (
	"fmt"
)

// ProviderError is any failure talking to a transcription provider.
// StatusCode is zero when the failure happened before an HTTP response
// (transport error, unreadable file).
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s transcription failed (status %d): %s", e.Provider, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s transcription failed (status %d)", e.Provider, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s transcription failed: %v", e.Provider, e.Err)
	default:
		return fmt.Sprintf("%s transcription failed: %s", e.Provider, e.Message)
	}
}

func (e *ProviderError) Unwrap() error { return e.Err }
