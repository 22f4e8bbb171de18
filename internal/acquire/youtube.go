package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/kkdai/youtube/v2"
)

// singleChunk is large enough that the client fetches any stream with one
// range request instead of many small ones.
const singleChunk int64 = 1 << 40

// YouTubeSource implements Source on top of github.com/kkdai/youtube.
type YouTubeSource struct {
	client *youtube.Client
	http   *http.Client
}

// NewYouTubeSource creates a source whose every request carries profile.
func NewYouTubeSource(profile *Profile) *YouTubeSource {
	hc := &http.Client{Transport: profile.Transport(http.DefaultTransport)}
	return &YouTubeSource{
		client: &youtube.Client{
			HTTPClient: hc,
			ChunkSize:  singleChunk,
		},
		http: hc,
	}
}

// Metadata fetches the video's stream variants.
func (s *YouTubeSource) Metadata(ctx context.Context, url string) (*Listing, error) {
	v, err := s.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, &Error{Kind: KindMetadataFetch, StatusCode: youtubeStatus(err), Err: err}
	}
	return &Listing{
		VideoID: v.ID,
		Title:   v.Title,
		Formats: convertFormats(v.Formats),
		handle:  v,
	}, nil
}

// Stream opens the selected variant of a listing returned by Metadata.
func (s *YouTubeSource) Stream(ctx context.Context, listing *Listing, f Format) (io.ReadCloser, error) {
	v, ok := listing.handle.(*youtube.Video)
	if !ok {
		return nil, &Error{Kind: KindNoPlayableFormat, Err: errors.New("listing was not produced by this source")}
	}
	yf := findItag(v.Formats, f.Itag)
	if yf == nil {
		return nil, &Error{Kind: KindNoPlayableFormat, Err: fmt.Errorf("itag %d not in listing", f.Itag)}
	}

	rc, _, err := s.client.GetStreamContext(ctx, v, yf)
	if err != nil {
		return nil, &Error{Kind: KindStreamTransfer, StatusCode: youtubeStatus(err), Err: err}
	}
	return &statusReader{rc: rc}, nil
}

// StreamDirect resolves the highest-bitrate audio-only stream URL for url and
// fetches it with one plain GET, bypassing the client's chunked downloader.
func (s *YouTubeSource) StreamDirect(ctx context.Context, url string) (io.ReadCloser, error) {
	v, err := s.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, &Error{Kind: KindMetadataFetch, StatusCode: youtubeStatus(err), Err: err}
	}

	best, err := HighestAudio(convertFormats(v.Formats))
	if err != nil {
		return nil, &Error{Kind: KindNoPlayableFormat, Err: err}
	}
	yf := findItag(v.Formats, best.Itag)

	streamURL, err := s.client.GetStreamURLContext(ctx, v, yf)
	if err != nil {
		return nil, &Error{Kind: KindStreamTransfer, StatusCode: youtubeStatus(err), Err: fmt.Errorf("resolve stream url: %w", err)}
	}
	return s.get(ctx, streamURL)
}

func (s *YouTubeSource) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Kind: KindStreamTransfer, Err: fmt.Errorf("create request: %w", err)}
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindStreamTransfer, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		se := &HTTPStatusError{StatusCode: resp.StatusCode, URL: url}
		return nil, &Error{Kind: KindStreamTransfer, StatusCode: resp.StatusCode, Err: se}
	}
	return resp.Body, nil
}

func convertFormats(list youtube.FormatList) []Format {
	out := make([]Format, 0, len(list))
	for _, f := range list {
		out = append(out, Format{
			Itag:          f.ItagNo,
			MimeType:      f.MimeType,
			Bitrate:       f.Bitrate,
			AudioChannels: f.AudioChannels,
			ContentLength: f.ContentLength,
			QualityLabel:  f.QualityLabel,
		})
	}
	return out
}

func findItag(list youtube.FormatList, itag int) *youtube.Format {
	for i := range list {
		if list[i].ItagNo == itag {
			return &list[i]
		}
	}
	return nil
}

// youtubeStatus extracts the HTTP status from a client error, or 0.
func youtubeStatus(err error) int {
	var code youtube.ErrUnexpectedStatusCode
	if errors.As(err, &code) {
		return int(code)
	}
	return statusCodeOf(err)
}

// statusReader converts client errors raised mid-stream into *Error so the
// upstream status survives the copy.
type statusReader struct {
	rc io.ReadCloser
}

func (r *statusReader) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	if err != nil && err != io.EOF {
		if code := youtubeStatus(err); code != 0 {
			err = &Error{Kind: KindStreamTransfer, StatusCode: code, Err: err}
		}
	}
	return n, err
}

func (r *statusReader) Close() error { return r.rc.Close() }
