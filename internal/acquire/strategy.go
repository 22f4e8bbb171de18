package acquire

import (
	"context"
	"io"

	"github.com/rs/zerolog"
)

// Source is the streaming platform: metadata lookup, stream retrieval for a
// chosen variant, and a direct audio stream for a URL.
type Source interface {
	Metadata(ctx context.Context, url string) (*Listing, error)
	Stream(ctx context.Context, listing *Listing, f Format) (io.ReadCloser, error)
	StreamDirect(ctx context.Context, url string) (io.ReadCloser, error)
}

// Listing is the metadata for one video.
type Listing struct {
	VideoID string
	Title   string
	Formats []Format

	// handle is the source's native video object.
	handle any
}

// Strategy is one way of getting audio from url into dst.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, url, dst string) (int64, error)
}

// MetadataFirst resolves stream metadata, picks a variant and downloads it.
type MetadataFirst struct {
	src     Source
	bufSize int
	log     zerolog.Logger
}

// NewMetadataFirst creates the metadata-first strategy.
func NewMetadataFirst(src Source, bufSize int, log zerolog.Logger) *MetadataFirst {
	return &MetadataFirst{src: src, bufSize: bufSize, log: log}
}

func (s *MetadataFirst) Name() string { return "metadata-first" }

func (s *MetadataFirst) Fetch(ctx context.Context, url, dst string) (int64, error) {
	listing, err := s.src.Metadata(ctx, url)
	if err != nil {
		return 0, classify(KindMetadataFetch, err)
	}

	f, degraded, err := SelectFormat(listing.Formats)
	if err != nil {
		return 0, classify(KindNoPlayableFormat, err)
	}
	if degraded {
		s.log.Warn().
			Str("video_id", listing.VideoID).
			Int("itag", f.Itag).
			Str("mime_type", f.MimeType).
			Msg("no audio-only format, using best available variant")
	}

	rc, err := s.src.Stream(ctx, listing, f)
	if err != nil {
		return 0, classify(KindStreamTransfer, err)
	}
	defer rc.Close()

	return CopyToFile(dst, rc, s.bufSize)
}

// DirectURL asks the source for the best audio-only stream of url in one
// step, without a separate format selection pass.
type DirectURL struct {
	src     Source
	bufSize int
}

// NewDirectURL creates the direct-URL strategy.
func NewDirectURL(src Source, bufSize int) *DirectURL {
	return &DirectURL{src: src, bufSize: bufSize}
}

func (s *DirectURL) Name() string { return "direct-url" }

func (s *DirectURL) Fetch(ctx context.Context, url, dst string) (int64, error) {
	rc, err := s.src.StreamDirect(ctx, url)
	if err != nil {
		return 0, classify(KindStreamTransfer, err)
	}
	defer rc.Close()

	return CopyToFile(dst, rc, s.bufSize)
}
