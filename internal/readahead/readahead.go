// Package readahead decouples network reads from decoder reads using the
// lock-free SPSC ring buffer, so a stalled decoder never blocks the
// socket read and a stalled network never starves a decoder mid-frame.
// Grounded on pkg/audioplayer.Player's producer/consumer pattern: a
// dedicated producer goroutine fills the ring buffer, and Read plays the
// role of that player's consumer loop (short sleep-and-retry on
// underrun), but here the producer is a plain io.Reader pump instead of
// a decoder, and the consumer is whatever holds the returned *Readahead.
package readahead

import (
	"io"
	"sync"
	"time"

	"github.com/drgolem/streamplayer/pkg/ringbuffer"
)

// DefaultSize matches pkg/audioplayer.DefaultConfig's ringbuffer size.
const DefaultSize = 256 * 1024

// Readahead is an io.Reader backed by a background pump goroutine that
// drains src into a ring buffer.
type Readahead struct {
	rb  *ringbuffer.RingBuffer
	src io.Reader

	mu     sync.Mutex
	srcErr error
	done   bool
}

// Open starts pumping src into a ring buffer of the given size (rounded
// up to a power of 2 by ringbuffer.New) and returns a Reader over it.
func Open(src io.Reader, size uint64) *Readahead {
	if size == 0 {
		size = DefaultSize
	}
	ra := &Readahead{
		rb:  ringbuffer.New(size),
		src: src,
	}
	go ra.pump()
	return ra
}

func (ra *Readahead) pump() {
	buf := make([]byte, 32*1024)
	for {
		n, err := ra.src.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			for len(chunk) > 0 {
				// Write only what fits: the ring buffer rejects a write
				// larger than its free space, and a chunk may be larger
				// than the whole buffer.
				part := chunk
				if avail := ra.rb.AvailableWrite(); uint64(len(part)) > avail {
					part = part[:avail]
				}
				written, werr := ra.rb.Write(part)
				if werr != nil || written == 0 {
					// Ring buffer full; back off and retry the rest of
					// the chunk, mirroring the output-underrun wait in
					// pkg/audioplayer.Player.consumer.
					time.Sleep(10 * time.Millisecond)
					continue
				}
				chunk = chunk[written:]
			}
		}
		if err != nil {
			ra.mu.Lock()
			ra.srcErr = err
			ra.done = true
			ra.mu.Unlock()
			return
		}
	}
}

// Read implements io.Reader, blocking (with a short backoff, never via
// the pause-gate condvar) until at least one byte is available or the
// pump has terminated with an error.
func (ra *Readahead) Read(p []byte) (int, error) {
	for {
		n, err := ra.rb.Read(p)
		if n > 0 {
			return n, nil
		}
		if err == nil {
			continue
		}

		ra.mu.Lock()
		done, srcErr := ra.done, ra.srcErr
		ra.mu.Unlock()

		if !done {
			time.Sleep(time.Millisecond)
			continue
		}
		if ra.rb.AvailableRead() > 0 {
			continue
		}
		return 0, srcErr
	}
}
