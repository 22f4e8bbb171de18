package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteError(t *testing.T) {
	t.Run("omits_empty_detail", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, http.StatusBadRequest, "Invalid videoId")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if got := rec.Body.String(); got != "{\"error\":\"Invalid videoId\"}\n" {
			t.Errorf("body = %q", got)
		}
	})

	t.Run("includes_detail", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteErrorDetail(rec, http.StatusInternalServerError, "Whisper failed", "Status code: 403")
		if got := rec.Body.String(); got != "{\"error\":\"Whisper failed\",\"detail\":\"Status code: 403\"}\n" {
			t.Errorf("body = %q", got)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
	})
}
