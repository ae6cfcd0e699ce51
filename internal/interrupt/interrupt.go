// Package interrupt implements the three-valued abort signal the control
// thread uses to cancel the worker's blocking I/O: skip-once (abort the
// current song) or quit (tear down for good).
package interrupt

import (
	"sync/atomic"

	"github.com/drgolem/streamplayer/pkg/types"
)

// State is a tagged-variant rendering of a 0/1/>=2 interrupt counter.
type State int32

const (
	// None: keep blocking, nothing requested.
	None State = 0
	// SkipOnce: abort the current blocking call and reset to None.
	// Used for "skip song" — the play loop stops and the session returns
	// without a retry.
	SkipOnce State = 1
	// Quit: abort and latch do_quit. Used for "quit application".
	Quit State = 2
)

// Counter is the lock-free, single-control-thread-writer interrupt signal
// shared between the control thread and the worker's blocking I/O.
type Counter struct {
	v atomic.Int32
}

// Signal raises the counter. SkipOnce and Quit are the only meaningful
// values; Quit latches (further Signal(SkipOnce) calls after Quit are
// ignored, matching the one-way do_quit transition).
func (c *Counter) Signal(s State) {
	for {
		cur := State(c.v.Load())
		if cur == Quit {
			return
		}
		if s == Quit || cur == None {
			if c.v.CompareAndSwap(int32(cur), int32(s)) {
				return
			}
			continue
		}
		return
	}
}

// Load returns the current state without mutating it.
func (c *Counter) Load() State {
	return State(c.v.Load())
}

// CheckAndReset implements the abort-hook semantics read by a blocking
// call: None -> keep going; SkipOnce -> reset to None and report abort;
// Quit -> report abort without resetting (do_quit latches independently).
func (c *Counter) CheckAndReset() (abort bool) {
	switch State(c.v.Load()) {
	case None:
		return false
	case SkipOnce:
		c.v.CompareAndSwap(int32(SkipOnce), int32(None))
		return true
	case Quit:
		return true
	default:
		return true
	}
}

// Reader wraps an io.Reader (or anything shaped like one) so every Read
// is a cancelable suspension point: before delegating, it consults the
// interrupt counter and returns types.ErrInterrupted instead of blocking
// further if asked to abort.
type Reader struct {
	r       interface{ Read([]byte) (int, error) }
	counter *Counter
}

// NewReader wraps r with interrupt checks driven by counter.
func NewReader(r interface{ Read([]byte) (int, error) }, counter *Counter) *Reader {
	return &Reader{r: r, counter: counter}
}

func (ir *Reader) Read(p []byte) (int, error) {
	if ir.counter.CheckAndReset() {
		return 0, types.ErrInterrupted
	}
	return ir.r.Read(p)
}
