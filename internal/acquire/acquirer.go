package acquire

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/snarg/yt-whisper/internal/metrics"
)

// CanonicalURL is the watch URL for a video id.
func CanonicalURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// Outcome describes a successful acquisition.
type Outcome struct {
	Strategy string
	Bytes    int64
}

// Acquirer tries its strategies in order until one writes the file.
type Acquirer struct {
	strategies []Strategy
	log        zerolog.Logger
}

// New creates an Acquirer over an explicit, ordered strategy list.
func New(log zerolog.Logger, strategies ...Strategy) *Acquirer {
	return &Acquirer{strategies: strategies, log: log}
}

// NewDefault wires the standard two-tier policy: metadata-first, then
// direct-URL.
func NewDefault(src Source, bufSize int, log zerolog.Logger) *Acquirer {
	return New(log,
		NewMetadataFirst(src, bufSize, log),
		NewDirectURL(src, bufSize),
	)
}

// Strategies returns the strategy names in the order they are tried.
func (a *Acquirer) Strategies() []string {
	names := make([]string, len(a.strategies))
	for i, s := range a.strategies {
		names[i] = s.Name()
	}
	return names
}

// Acquire downloads the audio for videoID into dst. Each strategy is tried
// once, in order. Earlier failures are logged; when all fail, the error of
// the last strategy tried is returned.
func (a *Acquirer) Acquire(ctx context.Context, videoID, dst string) (Outcome, error) {
	if len(a.strategies) == 0 {
		return Outcome{}, &Error{Kind: KindStreamTransfer, Err: errors.New("no acquisition strategies configured")}
	}

	url := CanonicalURL(videoID)
	var lastErr error

	for i, s := range a.strategies {
		start := time.Now()
		n, err := s.Fetch(ctx, url, dst)
		metrics.AcquisitionDuration.WithLabelValues(s.Name()).Observe(time.Since(start).Seconds())

		if err == nil {
			metrics.AcquisitionAttemptsTotal.WithLabelValues(s.Name(), "ok").Inc()
			a.log.Debug().
				Str("video_id", videoID).
				Str("strategy", s.Name()).
				Int64("bytes", n).
				Dur("duration_ms", time.Since(start)).
				Msg("audio acquired")
			return Outcome{Strategy: s.Name(), Bytes: n}, nil
		}

		err = withStrategy(err, s.Name())
		lastErr = err

		var ae *Error
		errors.As(err, &ae)
		metrics.AcquisitionAttemptsTotal.WithLabelValues(s.Name(), string(ae.Kind)).Inc()

		ev := a.log.Warn().Err(err).
			Str("video_id", videoID).
			Str("strategy", s.Name()).
			Str("kind", string(ae.Kind))
		if ae.StatusCode != 0 {
			ev = ev.Int("status", ae.StatusCode)
		}
		if i < len(a.strategies)-1 {
			ev.Msg("acquisition strategy failed, falling back")
		} else {
			ev.Msg("acquisition strategy failed")
		}

		if ctx.Err() != nil {
			break
		}
	}
	return Outcome{}, lastErr
}

// withStrategy ensures err is an *Error tagged with the strategy name.
func withStrategy(err error, name string) error {
	var ae *Error
	if !errors.As(err, &ae) {
		return &Error{Kind: KindStreamTransfer, Strategy: name, StatusCode: statusCodeOf(err), Err: err}
	}
	if ae.Strategy == "" {
		ae.Strategy = name
	}
	return err
}
