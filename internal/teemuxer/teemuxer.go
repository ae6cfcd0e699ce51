// Package teemuxer persists a pristine copy of the compressed stream to a
// temp file while it is being decoded. Because the source is already a
// single elementary stream of compressed bytes (no packet/time-base
// rescaling needed — see pkg/decoders.ContentType's stream-selection
// note), teeing reduces to copying raw bytes read from the network to a
// temp file via io.TeeReader, in the same order the play loop reads
// them, with no packet/pts bookkeeping of its own.
package teemuxer

import (
	"fmt"
	"io"
	"os"
)

// Tee wraps a temp file that receives everything read through its Reader.
// The trailer (here: simply closing and keeping the file) is written only
// when Commit is called; Abort discards the temp file instead, so a
// session torn down mid-stream never leaves a finished-looking file
// behind.
type Tee struct {
	path string
	f    *os.File
	r    io.Reader
}

// Open creates the temp container at path and returns a Tee whose Reader
// method yields a stream that mirrors everything read from src into the
// temp file as it is consumed.
func Open(path string, src io.Reader) (*Tee, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create tee container %s: %w", path, err)
	}
	return &Tee{
		path: path,
		f:    f,
		r:    io.TeeReader(src, f),
	}, nil
}

// Reader returns the tee-wrapped stream: reads from it are transparently
// mirrored into the temp container.
func (t *Tee) Reader() io.Reader {
	return t.r
}

// Path returns the temp container's path.
func (t *Tee) Path() string {
	return t.path
}

// Commit closes the temp container, keeping its contents. Call only when
// the session completed without being torn down and saving is enabled.
func (t *Tee) Commit() error {
	if t.f == nil {
		return nil
	}
	err := t.f.Close()
	t.f = nil
	return err
}

// Abort closes and removes the temp container. Call on do_quit or on any
// error path that does not reach a successful commit.
func (t *Tee) Abort() error {
	if t.f == nil {
		return os.Remove(t.path)
	}
	f := t.f
	t.f = nil
	f.Close()
	return os.Remove(t.path)
}
