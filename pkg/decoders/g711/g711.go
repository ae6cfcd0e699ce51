// Package g711 decodes a streamed G.711 (A-law/mu-law) source using
// github.com/zaf/g711, a pure-Go codec needing no spool bridge: whole
// chunks of law-encoded bytes decode to PCM16 independently of each other.
package g711

import (
	"fmt"
	"io"

	"github.com/zaf/g711"
)

// Law selects which G.711 companding table to decode with.
type Law int

const (
	ALaw Law = iota
	ULaw
)

const (
	bitsPerSample = 16
	// G.711 is always 8kHz mono on the wire.
	sampleRate = 8000
	channels   = 1
)

// Decoder decodes a raw (headerless) G.711 byte stream. Implements
// types.AudioDecoder.
type Decoder struct {
	r       io.Reader
	law     Law
	scratch []byte
}

// NewDecoder creates a decoder for the given companding law.
func NewDecoder(law Law) *Decoder {
	return &Decoder{law: law}
}

// Open attaches the decoder to the raw law-encoded byte stream. There is no
// header to parse: format is fixed by the G.711 standard.
func (d *Decoder) Open(r io.Reader) error {
	d.r = r
	return nil
}

// Close detaches the source reader.
func (d *Decoder) Close() error {
	d.r = nil
	return nil
}

// GetFormat returns the fixed G.711 format (8kHz, mono, 16-bit decoded PCM).
func (d *Decoder) GetFormat() (int, int, int) {
	return sampleRate, channels, bitsPerSample
}

// DecodeSamples decodes up to 'samples' G.711 octets (one sample each,
// mono) into 16-bit PCM.
func (d *Decoder) DecodeSamples(samples int, audio []byte) (int, error) {
	if d.r == nil {
		return 0, fmt.Errorf("decoder not initialized")
	}

	if cap(d.scratch) < samples {
		d.scratch = make([]byte, samples)
	}
	raw := d.scratch[:samples]

	n, err := io.ReadFull(d.r, raw)
	if n <= 0 {
		return 0, err
	}
	raw = raw[:n]

	var pcm []byte
	switch d.law {
	case ALaw:
		pcm = g711.DecodeAlaw(raw)
	case ULaw:
		pcm = g711.DecodeUlaw(raw)
	default:
		return 0, fmt.Errorf("unknown g711 law: %d", d.law)
	}

	// pcm is already S16LE, one sample (2 bytes) per input octet.
	copy(audio, pcm)

	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return len(pcm) / 2, err
}
