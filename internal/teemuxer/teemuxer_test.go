package teemuxer

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestTeeCommit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.aac")
	src := bytes.NewReader([]byte("compressed audio bytes"))

	tee, err := Open(path, src)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	got, err := io.ReadAll(tee.Reader())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "compressed audio bytes" {
		t.Fatalf("unexpected data read through tee: %q", got)
	}

	if err := tee.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(onDisk) != "compressed audio bytes" {
		t.Fatalf("temp container contents = %q", onDisk)
	}
}

func TestTeeAbort(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.aac")
	src := bytes.NewReader([]byte("abc"))

	tee, err := Open(path, src)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	io.ReadAll(tee.Reader())

	if err := tee.Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected temp container removed, stat err = %v", err)
	}
}
