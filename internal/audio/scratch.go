package audio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Scratch allocates request-scoped audio files under a single directory.
type Scratch struct {
	dir    string
	log    zerolog.Logger
	remove func(string) error
}

// Option configures a Scratch.
type Option func(*Scratch)

// WithRemover replaces os.Remove as the deletion function.
func WithRemover(fn func(string) error) Option {
	return func(s *Scratch) { s.remove = fn }
}

// NewScratch creates a scratch allocator rooted at dir.
func NewScratch(dir string, log zerolog.Logger, opts ...Option) *Scratch {
	s := &Scratch{
		dir:    dir,
		log:    log.With().Str("component", "scratch").Logger(),
		remove: os.Remove,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the scratch directory.
func (s *Scratch) Dir() string { return s.dir }

// ScratchFile is one request's staging file. The file itself is created by
// whoever writes to Path; Release deletes it if it exists.
type ScratchFile struct {
	Path string

	scratch  *Scratch
	released bool
}

// Allocate returns a new unique scratch path for resourceID.
// Format: {dir}/yt-{resourceID}-{unixnano}-{uuid}.webm
func (s *Scratch) Allocate(resourceID string) *ScratchFile {
	name := fmt.Sprintf("yt-%s-%d-%s.webm", resourceID, time.Now().UnixNano(), uuid.NewString())
	return &ScratchFile{
		Path:    filepath.Join(s.dir, name),
		scratch: s,
	}
}

// Release removes the scratch file. A file that was never created is not an
// error. Any other failure is logged and swallowed; it reports whether a
// removal was attempted so callers can assert on cleanup.
func (f *ScratchFile) Release() bool {
	if f == nil || f.released {
		return false
	}
	f.released = true

	err := f.scratch.remove(f.Path)
	switch {
	case err == nil:
		f.scratch.log.Debug().Str("path", f.Path).Msg("scratch file removed")
	case errors.Is(err, fs.ErrNotExist):
	default:
		f.scratch.log.Warn().Err(err).Str("path", f.Path).Msg("scratch cleanup failed")
	}
	return true
}

// Asset is a fully written audio file ready for transcription.
type Asset struct {
	Path      string
	SizeBytes int64
}

// Stat reports the size of the file at path.
func Stat(path string) (Asset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Asset{}, err
	}
	if info.IsDir() {
		return Asset{}, fmt.Errorf("%s is a directory", path)
	}
	return Asset{Path: path, SizeBytes: info.Size()}, nil
}
