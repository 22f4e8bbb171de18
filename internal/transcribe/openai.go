package transcribe

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient transcribes through the OpenAI SDK.
// Implements the Provider interface.
type OpenAIClient struct {
	client   *openai.Client
	model    string
	language string
}

// NewOpenAIClient creates a client for the OpenAI audio API. baseURL may be
// empty to use the public endpoint.
func NewOpenAIClient(apiKey, baseURL, model, language string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		language: language,
	}
}

// Name returns the provider name.
func (oc *OpenAIClient) Name() string { return "openai" }

// Model returns the configured model identifier.
func (oc *OpenAIClient) Model() string { return oc.model }

// Transcribe uploads the file at audioPath and returns text plus segments.
// Temperature is left at zero; the SDK omits the field and the API default
// is deterministic decoding.
func (oc *OpenAIClient) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	resp, err := oc.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:       oc.model,
		FilePath:    audioPath,
		Format:      openai.AudioResponseFormatVerboseJSON,
		Temperature: 0,
		Language:    oc.language,
	})
	if err != nil {
		return nil, oc.wrap(err)
	}

	result := &Result{
		Text:     resp.Text,
		Segments: make([]Segment, 0, len(resp.Segments)),
	}
	for _, s := range resp.Segments {
		result.Segments = append(result.Segments, Segment{Start: s.Start, End: s.End, Text: s.Text})
	}
	return result, nil
}

func (oc *OpenAIClient) wrap(err error) *ProviderError {
	pe := &ProviderError{Provider: oc.Name(), Err: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		pe.StatusCode = apiErr.HTTPStatusCode
		pe.Message = apiErr.Message
	case errors.As(err, &reqErr):
		pe.StatusCode = reqErr.HTTPStatusCode
		if reqErr.Err != nil {
			pe.Message = reqErr.Err.Error()
		}
	}
	return pe
}
