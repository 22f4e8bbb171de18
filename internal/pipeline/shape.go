package pipeline

import "github.com/snarg/yt-whisper/internal/transcribe"

// Body is the public success response.
type Body struct {
	Text     string               `json:"text"`
	Segments []transcribe.Segment `json:"segments"`
}

// Shape builds the response body from a provider result. Segments are
// copied in provider order; nothing is filtered, merged or reordered.
func Shape(res *transcribe.Result) *Body {
	if res == nil {
		return &Body{Segments: []transcribe.Segment{}}
	}
	segments := make([]transcribe.Segment, len(res.Segments))
	copy(segments, res.Segments)
	return &Body{Text: res.Text, Segments: segments}
}
