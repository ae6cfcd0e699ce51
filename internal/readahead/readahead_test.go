package readahead

import (
	"bytes"
	"io"
	"testing"
)

func TestReadaheadYieldsAllBytes(t *testing.T) {
	data := bytes.Repeat([]byte("abcdefgh"), 10000)
	ra := Open(bytes.NewReader(data), 4096)

	got, err := io.ReadAll(ra)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("got %d bytes, want %d", len(got), len(data))
	}
}

func TestReadaheadPropagatesSourceError(t *testing.T) {
	errSrc := io.ErrUnexpectedEOF
	ra := Open(&erroringReader{err: errSrc}, 1024)

	_, err := io.ReadAll(ra)
	if err != errSrc {
		t.Fatalf("got error %v, want %v", err, errSrc)
	}
}

type erroringReader struct{ err error }

func (r *erroringReader) Read([]byte) (int, error) { return 0, r.err }
