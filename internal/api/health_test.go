package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name string
		info HealthInfo
		want map[string]string
	}{
		{
			name: "fully_configured",
			info: HealthInfo{
				Provider:   "openai",
				Model:      "whisper-1",
				Strategies: []string{"metadata-first", "direct-url"},
				HasCookie:  func() bool { return true },
			},
			want: map[string]string{
				"transcription": "openai/whisper-1",
				"acquisition":   "metadata-first,direct-url",
				"cookie":        "configured",
			},
		},
		{
			name: "no_cookie",
			info: HealthInfo{Provider: "whisper", Model: "large-v3", Strategies: []string{"direct-url"}},
			want: map[string]string{
				"transcription": "whisper/large-v3",
				"acquisition":   "direct-url",
				"cookie":        "not_configured",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.info, "v1.2.3", time.Now().Add(-90*time.Second))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/health", nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			var resp HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Status != "healthy" || resp.Version != "v1.2.3" {
				t.Errorf("status/version = %q/%q", resp.Status, resp.Version)
			}
			if resp.UptimeSeconds < 90 {
				t.Errorf("uptime = %d, want >= 90", resp.UptimeSeconds)
			}
			for k, v := range tt.want {
				if resp.Checks[k] != v {
					t.Errorf("checks[%s] = %q, want %q", k, resp.Checks[k], v)
				}
			}
		})
	}
}
