package session

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/drgolem/streamplayer/internal/streamopener"
	"github.com/drgolem/streamplayer/internal/teemuxer"
)

func TestSetVolumeNoopWhenNotPlaying(t *testing.T) {
	s := New(Config{})
	// mode defaults to WAITING; SetVolume must not panic and must be a
	// no-op since there is no graph yet.
	s.SetVolume(0, 0, 0)
}

func TestPauseGateBlocksAndResumes(t *testing.T) {
	s := New(Config{})
	s.SetPause(true)

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned while paused")
	case <-time.After(50 * time.Millisecond):
	}

	s.SetPause(false)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after pause cleared")
	}
}

func TestQuitWakesPauseGate(t *testing.T) {
	s := New(Config{})
	s.SetPause(true)

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	s.Quit()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Quit")
	}
}

func TestSkipSignalsCounterOnce(t *testing.T) {
	s := New(Config{})
	s.Skip()
	if !s.counter.CheckAndReset() {
		t.Fatal("expected interrupt counter to report abort after Skip")
	}
	if s.counter.CheckAndReset() {
		t.Fatal("expected counter to reset to None after CheckAndReset")
	}
}

func openTestTee(t *testing.T, dir string) (*teemuxer.Tee, string) {
	t.Helper()
	path := filepath.Join(dir, "song.aac")
	tee, err := teemuxer.Open(path, bytes.NewReader([]byte("compressed bytes")))
	if err != nil {
		t.Fatalf("teemuxer.Open: %v", err)
	}
	if _, err := io.Copy(io.Discard, tee.Reader()); err != nil {
		t.Fatalf("drain tee: %v", err)
	}
	return tee, path
}

// finish must abort a retried attempt's tee container immediately: it
// must never survive into the next attempt or be committed alongside it.
func TestFinishAbortsRetriedAttemptsTee(t *testing.T) {
	tee, path := openTestTee(t, t.TempDir())
	opened := &streamopener.Opened{Tee: tee, SaveFile: true, TempPath: path}

	s := New(Config{})
	s.finish(opened, nil, nil, nil, false)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected retried attempt's tee container removed, stat err = %v", err)
	}
}

// The post-finish block (trailer commit) must run exactly once, after the
// retry loop ends: finish on the final attempt leaves the container
// intact, and commitSave is what actually commits it.
func TestCommitSaveRunsOnceAfterFinalAttempt(t *testing.T) {
	dir := t.TempDir()
	tee, path := openTestTee(t, dir)
	target := filepath.Join(dir, "song.mp3")
	opened := &streamopener.Opened{Tee: tee, SaveFile: true, TempPath: path, TargetPath: target}

	s := New(Config{})
	s.finish(opened, nil, nil, nil, true)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected final attempt's tee container to survive finish: %v", err)
	}

	s.commitSave(opened)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected committed container to remain on disk: %v", err)
	}
}

// commitSave must abort rather than commit when do_quit was set, even if
// the attempt was otherwise eligible for saving.
func TestCommitSaveAbortsOnQuit(t *testing.T) {
	dir := t.TempDir()
	tee, path := openTestTee(t, dir)
	opened := &streamopener.Opened{Tee: tee, SaveFile: true, TempPath: path, TargetPath: filepath.Join(dir, "song.mp3")}

	s := New(Config{})
	s.Quit()
	s.commitSave(opened)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected tee container removed after quit, stat err = %v", err)
	}
}
