package spool

import (
	"bytes"
	"io"
	"os"
	"testing"
)

func TestOpenSmallReaderReturnsImmediately(t *testing.T) {
	data := []byte("short stream, well under the header threshold")
	sf, err := Open(t.TempDir(), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sf.Close()

	if err := sf.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	got, err := os.ReadFile(sf.Path())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("spooled contents = %q, want %q", got, data)
	}
}

func TestOpenLargeReaderUnblocksEarly(t *testing.T) {
	data := make([]byte, minHeaderBytes*3)
	for i := range data {
		data[i] = byte(i)
	}

	pr, pw := io.Pipe()
	opened := make(chan struct{})
	go func() {
		pw.Write(data[:minHeaderBytes])
		// Hold the rest back until Open has returned: Open must not wait
		// for the whole stream.
		<-opened
		pw.Write(data[minHeaderBytes:])
		pw.Close()
	}()

	sf, err := Open(t.TempDir(), pr)
	close(opened)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sf.Close()

	if err := sf.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	got, err := os.ReadFile(sf.Path())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("spooled contents length = %d, want %d", len(got), len(data))
	}
}

func TestCloseRemovesFile(t *testing.T) {
	sf, err := Open(t.TempDir(), bytes.NewReader([]byte("x")))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	path := sf.Path()
	sf.Wait()
	if err := sf.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected spool file removed, stat err = %v", err)
	}
}
