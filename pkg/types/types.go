package types

import (
	"errors"
	"io"
)

// AudioDecoder is the common interface for all streaming audio decoders
// (MP3, FLAC, WAV, Opus, Vorbis, G.711). All decoders must implement these
// methods to provide a consistent API for decoding a continuous audio
// stream into raw PCM samples.
type AudioDecoder interface {
	// Open attaches the decoder to a stream of encoded audio and reads
	// whatever container/codec header is required to determine format.
	// Unlike a file-backed decoder, r is consumed progressively: the
	// decoder must not assume r supports seeking.
	Open(r io.Reader) error

	// Close closes the decoder and releases resources. Does not close r.
	Close() error

	// GetFormat returns the audio format information.
	// Returns: sample rate (Hz), channels (1=mono, 2=stereo), bits per sample (8/16/24/32)
	GetFormat() (rate, channels, bitsPerSample int)

	// DecodeSamples decodes up to 'samples' audio samples into audio.
	// Returns the number of samples actually decoded and io.EOF once the
	// stream is exhausted. A non-EOF error means the underlying codec
	// could not make sense of the bytes it was given (self-corrupted
	// stream); callers treat this as retryable.
	DecodeSamples(samples int, audio []byte) (int, error)
}

// Severity mirrors the message sink's notion of how loudly to report an error.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityError
)

// MessageSink is the single line of communication the core has with its
// host UI. It is never used to block playback: a failed call is itself
// swallowed by the caller.
type MessageSink interface {
	Message(severity Severity, format string, args ...any)
}

// Tags carries the caller-supplied song metadata used for sanitized
// filesystem paths and for invoking the post-playback hook.
type Tags struct {
	Artist       string
	Album        string
	Title        string
	AlbumArtURL  string
}

// Mode is the session's coarse playback state.
type Mode int32

const (
	ModeWaiting Mode = iota
	ModePlaying
	ModeFinished
)

func (m Mode) String() string {
	switch m {
	case ModeWaiting:
		return "WAITING"
	case ModePlaying:
		return "PLAYING"
	case ModeFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// Result is the worker's terminal return code.
type Result int

const (
	ResultOK Result = iota
	ResultSoftFail
	ResultHardFail
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "OK"
	case ResultSoftFail:
		return "SOFTFAIL"
	case ResultHardFail:
		return "HARDFAIL"
	default:
		return "UNKNOWN"
	}
}

// Common ringbuffer errors, shared by the byte ringbuffer and any future
// frame-typed ringbuffer. Enables consistent error handling via errors.Is().
var (
	// ErrInsufficientSpace indicates the ringbuffer doesn't have enough space for the write operation
	ErrInsufficientSpace = errors.New("insufficient space in ringbuffer")

	// ErrInsufficientData indicates the ringbuffer doesn't have enough data for the read operation
	ErrInsufficientData = errors.New("insufficient data in ringbuffer")

	// ErrInterrupted is returned by any adapter call aborted via the
	// interrupt hook (session skip or quit).
	ErrInterrupted = errors.New("interrupted")

	// ErrInvalidData signals a self-corrupted stream: soft-fail, retry
	// from the last known timestamp unless the user interrupted.
	ErrInvalidData = errors.New("invalid data")
)
