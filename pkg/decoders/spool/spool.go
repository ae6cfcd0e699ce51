// Package spool bridges a streaming io.Reader to the file-path-based codec
// libraries (mpg123, flac, opus) that this module wraps. Those libraries
// open a named file and expect to read it to completion; a network stream
// has neither a name nor a fixed end. Spool copies the reader into a
// private temp file as it arrives and hands back the path as soon as
// enough bytes have landed for the codec to probe its header, while a
// background goroutine keeps draining the source into the same file.
package spool

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// minHeaderBytes is how much we wait for before returning the path, enough
// for mpg123/FLAC to find their stream header on the first probe.
const minHeaderBytes = 32 * 1024

// File is a temp file being filled from a live reader.
type File struct {
	path   string
	f      *os.File
	done   chan struct{}
	err    error
}

// Open starts draining r into a new temp file under dir (os.TempDir() if
// empty) and blocks until either minHeaderBytes have been written, r ends,
// or r errors. It returns the temp path to open for decoding.
func Open(dir string, r io.Reader) (*File, error) {
	f, err := os.CreateTemp(dir, "streamplayer-spool-*.bin")
	if err != nil {
		return nil, fmt.Errorf("spool: create temp file: %w", err)
	}

	sf := &File{path: f.Name(), f: f, done: make(chan struct{})}

	ready := make(chan struct{})
	go sf.drain(r, ready)

	select {
	case <-ready:
	case <-sf.done:
	}

	return sf, nil
}

func (sf *File) drain(r io.Reader, ready chan struct{}) {
	defer close(sf.done)
	defer sf.f.Close()

	buf := make([]byte, 32*1024)
	var written int64
	readyClosed := false

	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := sf.f.Write(buf[:n]); werr != nil {
				sf.err = werr
				return
			}
			written += int64(n)
			if !readyClosed && written >= minHeaderBytes {
				close(ready)
				readyClosed = true
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				sf.err = err
			}
			if !readyClosed {
				close(ready)
			}
			return
		}
	}
}

// Path returns the spool file's path, valid to open for read immediately.
func (sf *File) Path() string {
	return sf.path
}

// Wait blocks until the source reader is fully drained (EOF or error).
func (sf *File) Wait() error {
	<-sf.done
	return sf.err
}

// WaitFor blocks for at most timeout for the drain goroutine to finish,
// used by decoders that hit a premature EOF and want to know whether more
// bytes are merely late rather than the stream having truly ended.
func (sf *File) WaitFor(timeout time.Duration) (done bool, err error) {
	select {
	case <-sf.done:
		return true, sf.err
	case <-time.After(timeout):
		return false, nil
	}
}

// Close removes the temp file. Safe to call once the decoder using it is
// closed; callers that want to keep the spooled bytes (tee/save path)
// should rename Path() elsewhere before calling Close.
func (sf *File) Close() error {
	return os.Remove(sf.path)
}
