package transcribe

import (
	"context"
	"fmt"
	"time"
)

// Provider is the interface for speech-to-text backends.
type Provider interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
	Name() string  // "openai", "whisper"
	Model() string // model identifier for logs and health
}

// Result is the transcript returned by any provider.
type Result struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

// Segment is a time-aligned span of the transcript, in provider order.
type Segment struct {
	Start float64 `json:"start"` // seconds
	End   float64 `json:"end"`   // seconds
	Text  string  `json:"text"`
}

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "whisper-1"

	// responseFormat asks for top-level text plus an ordered segment list.
	responseFormat = "verbose_json"
)

// Config selects and configures a Provider.
type Config struct {
	Provider string // "openai" or "whisper"
	APIKey   string
	BaseURL  string // openai: optional API base; whisper: full transcription endpoint URL
	Model    string
	Language string
	Timeout  time.Duration
}

// New builds the provider named in cfg.Provider.
func New(cfg Config) (Provider, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.BaseURL, model, cfg.Language), nil
	case "whisper":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("whisper provider requires an endpoint URL")
		}
		return NewWhisperClient(cfg.BaseURL, cfg.APIKey, model, cfg.Language, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown transcription provider %q", cfg.Provider)
	}
}
