package acquire

import (
	"errors"
	"strings"
)

// ErrNoFormats means the platform returned no stream variants at all.
var ErrNoFormats = errors.New("no stream formats available")

// ErrNoAudioFormat means no audio-only variant exists.
var ErrNoAudioFormat = errors.New("no audio-only format available")

// Format is one stream variant offered by the platform.
type Format struct {
	Itag          int
	MimeType      string
	Bitrate       int
	AudioChannels int
	ContentLength int64
	QualityLabel  string
}

// HasAudio reports whether the variant carries an audio track.
func (f Format) HasAudio() bool { return f.AudioChannels > 0 }

// AudioOnly reports whether the variant carries audio and nothing else.
func (f Format) AudioOnly() bool {
	return f.HasAudio() && strings.HasPrefix(f.MimeType, "audio/")
}

// HighestAudio returns the highest-bitrate audio-only variant.
func HighestAudio(formats []Format) (Format, error) {
	best, ok := highest(formats, Format.AudioOnly)
	if !ok {
		return Format{}, ErrNoAudioFormat
	}
	return best, nil
}

// SelectFormat picks the variant to download: the highest-bitrate audio-only
// variant, else the highest-bitrate variant that still has audio, else the
// highest-bitrate variant of any kind. degraded is true when the result is
// not audio-only.
func SelectFormat(formats []Format) (f Format, degraded bool, err error) {
	if best, ok := highest(formats, Format.AudioOnly); ok {
		return best, false, nil
	}
	if best, ok := highest(formats, Format.HasAudio); ok {
		return best, true, nil
	}
	if best, ok := highest(formats, func(Format) bool { return true }); ok {
		return best, true, nil
	}
	return Format{}, false, ErrNoFormats
}

// highest returns the first variant with the greatest bitrate among those
// matching keep.
func highest(formats []Format, keep func(Format) bool) (Format, bool) {
	var best Format
	found := false
	for _, f := range formats {
		if !keep(f) {
			continue
		}
		if !found || f.Bitrate > best.Bitrate {
			best = f
			found = true
		}
	}
	return best, found
}
