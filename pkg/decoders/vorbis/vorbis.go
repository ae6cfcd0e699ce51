// Package vorbis decodes a streamed Ogg Vorbis source using
// github.com/jfreymuth/oggvorbis, which — unlike mpg123/flac/opus in this
// tree — reads directly off an io.Reader with no spool file needed.
package vorbis

import (
	"fmt"
	"io"
	"math"

	"github.com/jfreymuth/oggvorbis"
)

const bitsPerSample = 16

// Decoder wraps oggvorbis.Reader. Implements types.AudioDecoder.
type Decoder struct {
	reader   *oggvorbis.Reader
	rate     int
	channels int
	scratch  []float32
}

// NewDecoder creates a new Ogg Vorbis decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Open reads the Vorbis headers off r and prepares for decoding.
func (d *Decoder) Open(r io.Reader) error {
	reader, err := oggvorbis.NewReader(r)
	if err != nil {
		return fmt.Errorf("failed to open vorbis stream: %w", err)
	}

	d.reader = reader
	d.rate = reader.SampleRate()
	d.channels = reader.Channels()
	return nil
}

// Close releases decoder state. The underlying reader is owned by the caller.
func (d *Decoder) Close() error {
	d.reader = nil
	d.scratch = nil
	return nil
}

// GetFormat returns the audio format (rate, channels, bits per sample)
func (d *Decoder) GetFormat() (int, int, int) {
	return d.rate, d.channels, bitsPerSample
}

// DecodeSamples decodes up to 'samples' samples (per channel) into audio as
// interleaved signed 16-bit PCM, converting from oggvorbis's native
// float32 output.
func (d *Decoder) DecodeSamples(samples int, audio []byte) (int, error) {
	if d.reader == nil {
		return 0, fmt.Errorf("decoder not initialized")
	}

	need := samples * d.channels
	if cap(d.scratch) < need {
		d.scratch = make([]float32, need)
	}
	buf := d.scratch[:need]

	n, err := d.reader.Read(buf)
	if n <= 0 {
		return 0, err
	}

	framesDecoded := n / d.channels
	for i := 0; i < n; i++ {
		sample := clampToInt16(buf[i])
		audio[i*2] = byte(sample & 0xFF)
		audio[i*2+1] = byte((sample >> 8) & 0xFF)
	}

	return framesDecoded, err
}

func clampToInt16(f float32) int16 {
	v := float64(f) * 32767.0
	v = math.Max(-32768, math.Min(32767, v))
	return int16(v)
}
