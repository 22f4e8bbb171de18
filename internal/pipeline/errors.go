package pipeline

import (
	"fmt"
)

// Kind is the externally meaningful class of a pipeline failure.
type Kind string

const (
	KindInvalidIdentifier Kind = "invalid_identifier"
	KindAcquisition       Kind = "acquisition_error"
	KindEmptyAsset        Kind = "empty_asset"
	KindTranscription     Kind = "transcription_provider_error"
)

// emptyAssetDetail is the public detail for a zero-byte download.
const emptyAssetDetail = "empty download: audio file is 0 bytes"

// Error is a terminal pipeline failure. State is where the run stopped;
// StatusCode is the upstream HTTP status when one is known.
type Error struct {
	Kind       Kind
	State      State
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindInvalidIdentifier:
		return "invalid video id"
	case e.Kind == KindEmptyAsset:
		return emptyAssetDetail
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Detail is the diagnostic string exposed to callers: the upstream status
// code when known, otherwise the error message.
func (e *Error) Detail() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("Status code: %d", e.StatusCode)
	}
	if e.Kind == KindEmptyAsset || e.Err == nil {
		return e.Error()
	}
	return e.Err.Error()
}
