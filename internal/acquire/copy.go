package acquire

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// DefaultBufferSize is the write buffer used when copying a stream to disk.
const DefaultBufferSize = 1 << 25

// CopyToFile streams src into dst, creating or truncating it. Writes are
// coalesced through a bufSize buffer. A read error or a write error fails
// the copy with KindStreamTransfer; the partial file is left for the caller
// to clean up.
func CopyToFile(dst string, src io.Reader, bufSize int) (int64, error) {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	f, err := os.Create(dst)
	if err != nil {
		return 0, &Error{Kind: KindStreamTransfer, Err: fmt.Errorf("create %s: %w", dst, err)}
	}

	rr := &recordingReader{r: src}
	bw := bufio.NewWriterSize(f, bufSize)

	// Plain io.Writer hides bufio's ReadFrom, which would bypass the buffer
	// and hand the reader straight to the file.
	n, err := io.Copy(struct{ io.Writer }{bw}, rr)
	if err != nil {
		f.Close()
		if rr.err != nil {
			return n, classify(KindStreamTransfer, fmt.Errorf("read stream: %w", rr.err))
		}
		return n, &Error{Kind: KindStreamTransfer, Err: fmt.Errorf("write %s: %w", dst, err)}
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return n, &Error{Kind: KindStreamTransfer, Err: fmt.Errorf("flush %s: %w", dst, err)}
	}
	if err := f.Close(); err != nil {
		return n, &Error{Kind: KindStreamTransfer, Err: fmt.Errorf("close %s: %w", dst, err)}
	}
	return n, nil
}

// recordingReader remembers the first non-EOF read error so a failed copy
// can be attributed to the source or the sink.
type recordingReader struct {
	r   io.Reader
	err error
}

func (r *recordingReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && err != io.EOF && r.err == nil {
		r.err = err
	}
	return n, err
}
