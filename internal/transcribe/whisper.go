package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WhisperClient calls an OpenAI-compatible /v1/audio/transcriptions endpoint
// directly (speaches, faster-whisper-server, or OpenAI itself).
// Implements the Provider interface.
type WhisperClient struct {
	url      string
	apiKey   string
	model    string
	language string
	client   *http.Client
}

// whisperResponse is the verbose_json body. Segments is absent when the
// server does not support segment timestamps.
type whisperResponse struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
	Segments []whisperSegment `json:"segments"`
}

type whisperSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// whisperErrorBody is the OpenAI-style error envelope.
type whisperErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewWhisperClient creates a new Whisper HTTP client.
func NewWhisperClient(url, apiKey, model, language string, timeout time.Duration) *WhisperClient {
	return &WhisperClient{
		url:      url,
		apiKey:   apiKey,
		model:    model,
		language: language,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name.
func (wc *WhisperClient) Name() string { return "whisper" }

// Model returns the configured model identifier.
func (wc *WhisperClient) Model() string { return wc.model }

// Transcribe streams an audio file to the Whisper API as multipart/form-data
// and returns the verbose_json result. Temperature is always sent as 0 so
// repeated runs decode identically.
func (wc *WhisperClient) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, wc.fail(0, "", fmt.Errorf("open audio file: %w", err))
	}
	defer f.Close()

	pr, pw := io.Pipe()
	w := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(wc.writeForm(w, f, filepath.Base(audioPath)))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wc.url, pr)
	if err != nil {
		pr.Close()
		return nil, wc.fail(0, "", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if wc.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+wc.apiKey)
	}

	resp, err := wc.client.Do(req)
	if err != nil {
		return nil, wc.fail(0, "", fmt.Errorf("whisper request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wc.fail(resp.StatusCode, "", fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, wc.fail(resp.StatusCode, errorMessage(body), nil)
	}

	var parsed whisperResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, wc.fail(resp.StatusCode, "", fmt.Errorf("decode response: %w", err))
	}

	result := &Result{
		Text:     parsed.Text,
		Segments: make([]Segment, 0, len(parsed.Segments)),
	}
	for _, s := range parsed.Segments {
		result.Segments = append(result.Segments, Segment{Start: s.Start, End: s.End, Text: s.Text})
	}
	return result, nil
}

func (wc *WhisperClient) writeForm(w *multipart.Writer, audio io.Reader, filename string) error {
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return fmt.Errorf("copy audio data: %w", err)
	}

	if wc.model != "" {
		w.WriteField("model", wc.model)
	}
	if wc.language != "" {
		w.WriteField("language", wc.language)
	}
	w.WriteField("temperature", "0.00")
	w.WriteField("response_format", responseFormat)
	w.WriteField("timestamp_granularities[]", "segment")

	return w.Close()
}

func (wc *WhisperClient) fail(status int, msg string, err error) *ProviderError {
	return &ProviderError{Provider: wc.Name(), StatusCode: status, Message: msg, Err: err}
}

// errorMessage extracts error.message from an OpenAI-style body, falling back
// to the raw (trimmed) body.
func errorMessage(body []byte) string {
	var eb whisperErrorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error.Message != "" {
		return eb.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	return msg
}
