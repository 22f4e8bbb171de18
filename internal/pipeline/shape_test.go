package pipeline

import (
	"reflect"
	"testing"

	"github.com/snarg/yt-whisper/internal/transcribe"
)

func TestShape_PreservesOrder(t *testing.T) {
	// Deliberately out of chronological order and with a duplicate: the
	// shaper must not sort, filter or dedupe.
	segs := []transcribe.Segment{
		{Start: 5, End: 6, Text: "c"},
		{Start: 0, End: 1, Text: "a"},
		{Start: 0, End: 1, Text: "a"},
		{Start: 2, End: 3, Text: ""},
	}
	res := &transcribe.Result{Text: "a a c", Segments: segs}

	body := Shape(res)
	if body.Text != "a a c" {
		t.Errorf("Text = %q", body.Text)
	}
	if !reflect.DeepEqual(body.Segments, segs) {
		t.Errorf("Segments = %+v, want %+v", body.Segments, segs)
	}

	again := Shape(res)
	if !reflect.DeepEqual(body, again) {
		t.Error("Shape is not idempotent")
	}
}

func TestShape_CopiesSegments(t *testing.T) {
	res := &transcribe.Result{Segments: []transcribe.Segment{{Start: 0, End: 1, Text: "x"}}}
	body := Shape(res)
	res.Segments[0].Text = "mutated"
	if body.Segments[0].Text != "x" {
		t.Error("body shares backing array with provider result")
	}
}

func TestShape_Empty(t *testing.T) {
	for name, res := range map[string]*transcribe.Result{
		"nil_result":   nil,
		"nil_segments": {Text: ""},
	} {
		t.Run(name, func(t *testing.T) {
			body := Shape(res)
			if body.Segments == nil {
				t.Error("Segments must be non-nil so it encodes as []")
			}
			if len(body.Segments) != 0 {
				t.Errorf("len(Segments) = %d, want 0", len(body.Segments))
			}
		})
	}
}
