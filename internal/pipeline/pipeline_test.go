package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snarg/yt-whisper/internal/acquire"
	"github.com/snarg/yt-whisper/internal/audio"
	"github.com/snarg/yt-whisper/internal/transcribe"
)

// fakeAcquirer writes size bytes to dst, or fails with err.
type fakeAcquirer struct {
	mu       sync.Mutex
	size     int
	strategy string
	err      error
	noFile   bool

	calls int
	dsts  []string
}

func (f *fakeAcquirer) Acquire(ctx context.Context, videoID, dst string) (acquire.Outcome, error) {
	f.mu.Lock()
	f.calls++
	f.dsts = append(f.dsts, dst)
	f.mu.Unlock()

	if f.err != nil {
		// Leave a partial file behind, as a failed stream would.
		os.WriteFile(dst, []byte("partial"), 0o644)
		return acquire.Outcome{}, f.err
	}
	if f.noFile {
		return acquire.Outcome{Strategy: f.strategy}, nil
	}
	if err := os.WriteFile(dst, make([]byte, f.size), 0o644); err != nil {
		return acquire.Outcome{}, err
	}
	return acquire.Outcome{Strategy: f.strategy, Bytes: int64(f.size)}, nil
}

// fakeProvider returns a canned result and records the path it was given.
type fakeProvider struct {
	result *transcribe.Result
	err    error

	calls    int
	lastPath string
	sawBytes int64
}

func (f *fakeProvider) Transcribe(ctx context.Context, audioPath string) (*transcribe.Result, error) {
	f.calls++
	f.lastPath = audioPath
	if info, err := os.Stat(audioPath); err == nil {
		f.sawBytes = info.Size()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeProvider) Name() string  { return "fake" }
func (f *fakeProvider) Model() string { return "fake-1" }

func rickResult() *transcribe.Result {
	return &transcribe.Result{
		Text:     "Never gonna give you up",
		Segments: []transcribe.Segment{{Start: 0.0, End: 2.3, Text: "Never gonna give you up"}},
	}
}

type harness struct {
	acq      *fakeAcquirer
	prov     *fakeProvider
	dir      string
	removed  []string
	removeFn func(string) error
	logs     bytes.Buffer
	p        *Pipeline
}

func newHarness(t *testing.T, acq *fakeAcquirer, prov *fakeProvider) *harness {
	t.Helper()
	h := &harness{acq: acq, prov: prov, dir: t.TempDir()}
	h.removeFn = os.Remove
	remover := func(path string) error {
		h.removed = append(h.removed, path)
		return h.removeFn(path)
	}
	log := zerolog.New(&h.logs)
	scratch := audio.NewScratch(h.dir, log, audio.WithRemover(remover))
	h.p = New(acq, prov, scratch, log)
	return h
}

func (h *harness) scratchFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(h.dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRun_Success(t *testing.T) {
	h := newHarness(t,
		&fakeAcquirer{size: 524288, strategy: "metadata-first"},
		&fakeProvider{result: rickResult()},
	)

	body, err := h.p.Run(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, "Never gonna give you up", body.Text)
	assert.Equal(t, []transcribe.Segment{{Start: 0.0, End: 2.3, Text: "Never gonna give you up"}}, body.Segments)
	assert.Equal(t, 1, h.prov.calls)
	assert.EqualValues(t, 524288, h.prov.sawBytes)
	assert.Equal(t, h.acq.dsts[0], h.prov.lastPath)

	assert.Len(t, h.removed, 1, "cleanup attempted once")
	assert.Empty(t, h.scratchFiles(t), "scratch file deleted")
}

func TestRun_InvalidIdentifier(t *testing.T) {
	for _, id := range []string{"", "abc", "abcde", "abc def", "abc/../x", "dQw4w9WgXcQ!", "ünïcødé"} {
		t.Run(id, func(t *testing.T) {
			h := newHarness(t, &fakeAcquirer{size: 1}, &fakeProvider{result: rickResult()})

			body, err := h.p.Run(context.Background(), id)
			assert.Nil(t, body)

			var pe *Error
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, KindInvalidIdentifier, pe.Kind)
			assert.Equal(t, StateValidating, pe.State)
			assert.Equal(t, 0, h.acq.calls, "no acquisition for invalid id")
			assert.Equal(t, 0, h.prov.calls, "no transcription for invalid id")
			assert.Empty(t, h.removed, "no scratch file was allocated")
		})
	}
}

func TestRun_AcquisitionFailed(t *testing.T) {
	acqErr := &acquire.Error{Kind: acquire.KindStreamTransfer, Strategy: "direct-url", StatusCode: 410, Err: errors.New("gone")}
	h := newHarness(t, &fakeAcquirer{err: acqErr}, &fakeProvider{result: rickResult()})

	_, err := h.p.Run(context.Background(), "dQw4w9WgXcQ")

	var pe *Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, KindAcquisition, pe.Kind)
	assert.Equal(t, StateAcquiring, pe.State)
	assert.Equal(t, 410, pe.StatusCode)
	assert.Equal(t, "Status code: 410", pe.Detail())
	assert.Equal(t, 0, h.prov.calls)

	assert.Len(t, h.removed, 1, "partial file cleaned up")
	assert.Empty(t, h.scratchFiles(t))
}

func TestRun_AcquisitionFailedWithoutStatus(t *testing.T) {
	h := newHarness(t, &fakeAcquirer{err: errors.New("dial tcp: connection refused")}, &fakeProvider{})

	_, err := h.p.Run(context.Background(), "dQw4w9WgXcQ")

	var pe *Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "dial tcp: connection refused", pe.Detail())
}

func TestRun_EmptyAsset(t *testing.T) {
	h := newHarness(t, &fakeAcquirer{size: 0, strategy: "metadata-first"}, &fakeProvider{result: rickResult()})

	_, err := h.p.Run(context.Background(), "dQw4w9WgXcQ")

	var pe *Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, KindEmptyAsset, pe.Kind)
	assert.Equal(t, StateVerifying, pe.State)
	assert.Contains(t, pe.Detail(), "empty download")
	assert.Equal(t, 0, h.prov.calls, "provider must not be called for an empty file")
	assert.Len(t, h.removed, 1)
	assert.Empty(t, h.scratchFiles(t))
}

func TestRun_MissingAssetAfterAcquire(t *testing.T) {
	h := newHarness(t, &fakeAcquirer{noFile: true, strategy: "direct-url"}, &fakeProvider{result: rickResult()})

	_, err := h.p.Run(context.Background(), "dQw4w9WgXcQ")

	var pe *Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, KindAcquisition, pe.Kind)
	assert.Equal(t, StateVerifying, pe.State)
	assert.Equal(t, 0, h.prov.calls)
}

func TestRun_TranscriptionFailed(t *testing.T) {
	provErr := &transcribe.ProviderError{Provider: "fake", StatusCode: 429, Message: "quota exceeded"}
	h := newHarness(t, &fakeAcquirer{size: 1000, strategy: "metadata-first"}, &fakeProvider{err: provErr})

	_, err := h.p.Run(context.Background(), "dQw4w9WgXcQ")

	var pe *Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, KindTranscription, pe.Kind)
	assert.Equal(t, StateTranscribing, pe.State)
	assert.Equal(t, "Status code: 429", pe.Detail())
	assert.Equal(t, 1, h.prov.calls, "provider errors are not retried")
	assert.Len(t, h.removed, 1)
	assert.Empty(t, h.scratchFiles(t))
}

func TestRun_CleanupFailureDoesNotChangeResult(t *testing.T) {
	h := newHarness(t, &fakeAcquirer{size: 10000, strategy: "direct-url"}, &fakeProvider{result: rickResult()})
	h.removeFn = func(string) error { return errors.New("permission denied") }

	body, err := h.p.Run(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "Never gonna give you up", body.Text)
	assert.Len(t, h.removed, 1)
	assert.Contains(t, h.logs.String(), "scratch cleanup failed")
}

func TestRun_LogsWinningStrategy(t *testing.T) {
	h := newHarness(t, &fakeAcquirer{size: 10000, strategy: "direct-url"}, &fakeProvider{result: rickResult()})

	_, err := h.p.Run(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Contains(t, h.logs.String(), `"strategy":"direct-url"`)
}

func TestRun_ConcurrentDistinctScratchPaths(t *testing.T) {
	acq := &fakeAcquirer{size: 64, strategy: "metadata-first"}
	dir := t.TempDir()
	scratch := audio.NewScratch(dir, zerolog.Nop())
	p := New(acq, &concurrentProvider{}, scratch, zerolog.Nop())

	ids := []string{"aaaaaa", "bbbbbb", "cccccc", "dddddd", "aaaaaa", "bbbbbb"}
	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = p.Run(context.Background(), id)
		}(i, id)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	seen := map[string]bool{}
	for _, d := range acq.dsts {
		assert.False(t, seen[d], "scratch path reused: %s", d)
		seen[d] = true
		assert.Equal(t, dir, filepath.Dir(d))
	}
	assert.Len(t, seen, len(ids))
}

// concurrentProvider is safe for parallel use.
type concurrentProvider struct{}

func (concurrentProvider) Transcribe(ctx context.Context, audioPath string) (*transcribe.Result, error) {
	return &transcribe.Result{Text: filepath.Base(audioPath), Segments: []transcribe.Segment{}}, nil
}
func (concurrentProvider) Name() string  { return "concurrent" }
func (concurrentProvider) Model() string { return "c-1" }
