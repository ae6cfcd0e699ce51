// Package streamopener opens a session's input URL over HTTP, probes its
// content type, constructs and opens the matching decoder, and —
// best-effort — wires up a tee muxer and cover-art download when saving
// is enabled. "Seek the demuxer to last_timestamp" is reinterpreted as
// an HTTP Range request resuming at the last byte offset consumed (see
// DESIGN.md for why time-base PTS seeking has no analogue against a raw
// compressed byte stream with no independent container index).
package streamopener

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/drgolem/streamplayer/internal/coverart"
	"github.com/drgolem/streamplayer/internal/interrupt"
	"github.com/drgolem/streamplayer/internal/readahead"
	"github.com/drgolem/streamplayer/internal/sanitize"
	"github.com/drgolem/streamplayer/internal/teemuxer"
	"github.com/drgolem/streamplayer/pkg/decoders"
	"github.com/drgolem/streamplayer/pkg/types"
)

// countingReader tracks cumulative bytes pulled off the network. Its
// running total stands in for last_timestamp across a soft-fail retry:
// there is no independent container index to seek against a raw
// compressed byte stream, so resumption means "ask the server for bytes
// past what we've already consumed" (see streamopener.Request.LastByteOffset).
type countingReader struct {
	r   io.Reader
	n   atomic.Int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	return n, err
}

// TempDir is the fixed scratch location for tee containers.
const TempDir = "/tmp/pianobar"

// Request carries everything the opener needs from the session before
// playback starts.
type Request struct {
	URL          string
	Artist       string
	Album        string
	Title        string
	AlbumArtURL  string
	SaveDir      string // empty disables saving
	LastByteOffset int64 // resume point for a soft-fail retry
	Counter      *interrupt.Counter // makes the read loop a cancelable suspension point
}

// Opened is everything the Play Loop needs to drive one playback attempt.
type Opened struct {
	Decoder      types.AudioDecoder
	SampleRate   int
	Channels     int
	BitsPerSample int
	SongDuration float64 // seconds; 0 if unknown

	Tee        *teemuxer.Tee // nil if saving is disabled or setup failed
	SaveFile   bool
	TempPath   string
	TargetPath string

	body    io.ReadCloser
	counted *countingReader
}

// BytesRead returns the cumulative network bytes consumed so far, the
// value the session persists as last_timestamp for a soft-fail retry.
func (o *Opened) BytesRead() int64 {
	if o.counted == nil {
		return 0
	}
	return o.counted.n.Load()
}

// Close releases the HTTP response body. The decoder and tee muxer are
// released separately by Session.finish, in its own teardown order.
func (o *Opened) Close() error {
	if o.body == nil {
		return nil
	}
	return o.body.Close()
}

// Open performs the HTTP GET (with a Range header when resuming),
// content-type probe, decoder construction/open, and best-effort save
// setup.
func Open(req Request) (*Opened, error) {
	httpReq, err := http.NewRequest(http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("find_best_stream: failed to build request: %w", err)
	}
	if req.LastByteOffset > 0 {
		httpReq.Header.Set("Range", fmt.Sprintf("bytes=%d-", req.LastByteOffset))
	}

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to open input: unexpected status %d", resp.StatusCode)
	}

	counted := &countingReader{r: resp.Body}
	var body io.Reader = readahead.Open(counted, readahead.DefaultSize)
	if req.Counter != nil {
		body = interrupt.NewReader(body, req.Counter)
	}
	var tee *teemuxer.Tee
	saveFile := false
	var tempPath, targetPath string

	if req.SaveDir != "" {
		tee, tempPath, targetPath, saveFile = trySetupSave(req, body)
		if tee != nil {
			body = tee.Reader()
		}
	}

	contentType := resp.Header.Get("Content-Type")
	ct, err := decoders.FromHeader(contentType, req.URL)
	if err != nil {
		resp.Body.Close()
		if tee != nil {
			tee.Abort()
		}
		return nil, fmt.Errorf("find_best_stream: %w", err)
	}

	decoder, err := decoders.NewDecoder(ct)
	if err != nil {
		resp.Body.Close()
		if tee != nil {
			tee.Abort()
		}
		return nil, fmt.Errorf("stream-info probe failed: %w", err)
	}
	if err := decoder.Open(body); err != nil {
		resp.Body.Close()
		if tee != nil {
			tee.Abort()
		}
		return nil, fmt.Errorf("failed to open %s stream: %w", ct, err)
	}

	rate, channels, bps := decoder.GetFormat()
	duration := float64(0)
	if ct == decoders.ContentWAV {
		duration = estimateDuration(resp, bps, rate, channels)
	}

	return &Opened{
		Decoder:       decoder,
		SampleRate:    rate,
		Channels:      channels,
		BitsPerSample: bps,
		SongDuration:  duration,
		Tee:           tee,
		SaveFile:      saveFile,
		TempPath:      tempPath,
		TargetPath:    targetPath,
		body:          resp.Body,
		counted:       counted,
	}, nil
}

// trySetupSave sanitizes tags, builds the final directory, skips if the
// target already exists, creates the temp directory, and opens the tee
// muxer. Any failure along the way disables saving but never fails the
// open.
func trySetupSave(req Request, body io.Reader) (tee *teemuxer.Tee, tempPath, targetPath string, ok bool) {
	artist := sanitize.Path(req.Artist)
	album := sanitize.Path(req.Album)
	title := sanitize.Path(req.Title)

	finalDir := filepath.Join(req.SaveDir, artist, album)
	targetPath = filepath.Join(finalDir, title+".mp3")

	if _, err := os.Stat(targetPath); err == nil {
		return nil, "", "", false
	}

	if err := os.MkdirAll(finalDir, 0o755); err != nil {
		return nil, "", "", false
	}

	if err := os.MkdirAll(TempDir, 0o700); err != nil {
		return nil, "", "", false
	}

	tempPath = filepath.Join(TempDir, title+ext(req.URL))
	t, err := teemuxer.Open(tempPath, body)
	if err != nil {
		return nil, "", "", false
	}

	go coverart.Download(finalDir, req.AlbumArtURL) //nolint:errcheck // best-effort, failure is not fatal to playback

	return t, tempPath, targetPath, true
}

func ext(url string) string {
	e := filepath.Ext(url)
	if e == "" {
		return ".aac"
	}
	return e
}

// estimateDuration computes song_duration when the server reports
// Content-Length on an uncompressed PCM stream: duration = bytes /
// byte_rate. Compressed formats have no fixed byte rate without decoding
// the whole stream, so duration is left at 0 (unknown), matching the
// invariant that song_duration > 0 iff a duration was actually reported.
func estimateDuration(resp *http.Response, bitsPerSample, sampleRate, channels int) float64 {
	if resp.ContentLength <= 0 {
		return 0
	}
	byteRate := sampleRate * channels * (bitsPerSample / 8)
	if byteRate <= 0 {
		return 0
	}
	return float64(resp.ContentLength) / float64(byteRate)
}
