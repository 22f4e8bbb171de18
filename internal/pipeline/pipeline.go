package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/snarg/yt-whisper/internal/acquire"
	"github.com/snarg/yt-whisper/internal/audio"
	"github.com/snarg/yt-whisper/internal/metrics"
	"github.com/snarg/yt-whisper/internal/transcribe"
)

// Acquirer downloads the audio for a video id into dst.
type Acquirer interface {
	Acquire(ctx context.Context, videoID, dst string) (acquire.Outcome, error)
}

// Pipeline runs validate → acquire → verify → transcribe → shape for one
// request at a time per call. It holds no per-request state.
type Pipeline struct {
	acquirer Acquirer
	provider transcribe.Provider
	scratch  *audio.Scratch
	log      zerolog.Logger
}

// New creates a Pipeline.
func New(acquirer Acquirer, provider transcribe.Provider, scratch *audio.Scratch, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		acquirer: acquirer,
		provider: provider,
		scratch:  scratch,
		log:      log,
	}
}

// run tracks the state of one invocation.
type run struct {
	log     zerolog.Logger
	state   State
	entered time.Time
}

func (r *run) enter(s State) {
	now := time.Now()
	metrics.StageDuration.WithLabelValues(r.state.String()).Observe(now.Sub(r.entered).Seconds())
	r.log.Debug().Str("from", r.state.String()).Str("to", s.String()).Msg("pipeline transition")
	r.state = s
	r.entered = now
}

func (r *run) fail(kind Kind, status int, err error) *Error {
	pe := &Error{Kind: kind, State: r.state, StatusCode: status, Err: err}
	r.enter(StateFailed)
	return pe
}

// Run transcribes the audio of rawID. Every failure is an *Error. Once a
// scratch path is allocated it is released on every exit path.
func (p *Pipeline) Run(ctx context.Context, rawID string) (body *Body, err error) {
	metrics.PipelineInFlight.Inc()
	defer metrics.PipelineInFlight.Dec()

	r := &run{log: p.log, state: StateValidating, entered: time.Now()}
	defer func() {
		outcome := "ok"
		var pe *Error
		if errors.As(err, &pe) {
			outcome = string(pe.Kind)
		}
		metrics.PipelineRunsTotal.WithLabelValues(outcome).Inc()
	}()

	videoID, verr := Validate(rawID)
	if verr != nil {
		r.enter(StateFailed)
		return nil, verr
	}
	r.log = p.log.With().Str("video_id", videoID).Logger()

	// Acquiring
	r.enter(StateAcquiring)
	scratch := p.scratch.Allocate(videoID)
	defer scratch.Release()

	outcome, aerr := p.acquirer.Acquire(ctx, videoID, scratch.Path)
	if aerr != nil {
		r.log.Error().Err(aerr).Int("status", acquire.StatusCode(aerr)).Msg("audio acquisition failed")
		return nil, r.fail(KindAcquisition, acquire.StatusCode(aerr), aerr)
	}
	r.log.Info().Str("strategy", outcome.Strategy).Int64("bytes", outcome.Bytes).Msg("audio acquired")

	// Verifying
	r.enter(StateVerifying)
	asset, serr := audio.Stat(scratch.Path)
	if serr != nil {
		r.log.Error().Err(serr).Msg("audio file missing after acquisition")
		return nil, r.fail(KindAcquisition, 0, serr)
	}
	if asset.SizeBytes == 0 {
		r.log.Error().Str("strategy", outcome.Strategy).Msg("acquisition produced an empty file")
		return nil, r.fail(KindEmptyAsset, 0, nil)
	}
	metrics.AudioBytes.Observe(float64(asset.SizeBytes))

	// Transcribing
	r.enter(StateTranscribing)
	res, terr := p.provider.Transcribe(ctx, asset.Path)
	if terr != nil {
		metrics.TranscriptionRequestsTotal.WithLabelValues(p.provider.Name(), "error").Inc()
		status := 0
		var pe *transcribe.ProviderError
		if errors.As(terr, &pe) {
			status = pe.StatusCode
		}
		r.log.Error().Err(terr).Str("provider", p.provider.Name()).Int("status", status).Msg("transcription failed")
		return nil, r.fail(KindTranscription, status, terr)
	}
	metrics.TranscriptionRequestsTotal.WithLabelValues(p.provider.Name(), "ok").Inc()

	// Shaping
	r.enter(StateShaping)
	body = Shape(res)
	r.enter(StateDone)

	r.log.Info().
		Int("segments", len(body.Segments)).
		Int64("audio_bytes", asset.SizeBytes).
		Str("strategy", outcome.Strategy).
		Msg("transcription complete")
	return body, nil
}
