package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/snarg/yt-whisper/internal/pipeline"
)

// Transcriber runs the transcription pipeline for one video id.
type Transcriber interface {
	Run(ctx context.Context, videoID string) (*pipeline.Body, error)
}

// WhisperHandler serves the video transcription endpoint.
type WhisperHandler struct {
	transcriber Transcriber
	log         zerolog.Logger
}

// NewWhisperHandler creates a new whisper handler.
func NewWhisperHandler(transcriber Transcriber, log zerolog.Logger) *WhisperHandler {
	return &WhisperHandler{
		transcriber: transcriber,
		log:         log.With().Str("handler", "whisper").Logger(),
	}
}

// Routes registers the whisper endpoint.
func (h *WhisperHandler) Routes(r chi.Router) {
	r.Get("/", h.Transcribe)
}

// Transcribe handles GET /api/whisper?videoId=...
// 200 {text, segments}; 400 for a malformed id; 500 {error, detail} for any
// pipeline failure.
func (h *WhisperHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	videoID := r.URL.Query().Get("videoId")

	body, err := h.transcriber.Run(r.Context(), videoID)
	if err == nil {
		WriteJSON(w, http.StatusOK, body)
		return
	}

	var pe *pipeline.Error
	if !errors.As(err, &pe) {
		pe = &pipeline.Error{Kind: pipeline.KindAcquisition, Err: err}
	}
	if pe.Kind == pipeline.KindInvalidIdentifier {
		WriteError(w, http.StatusBadRequest, "Invalid videoId")
		return
	}

	hlog.FromRequest(r).Error().Err(err).
		Str("video_id", videoID).
		Str("kind", string(pe.Kind)).
		Str("state", pe.State.String()).
		Int("status", pe.StatusCode).
		Msg("whisper failed")
	WriteErrorDetail(w, http.StatusInternalServerError, "Whisper failed", pe.Detail())
}
