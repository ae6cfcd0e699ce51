package flac

import (
	"fmt"
	"io"

	goflac "github.com/drgolem/go-flac/flac"

	"github.com/drgolem/streamplayer/pkg/decoders/spool"
)

// Decoder wraps the go-flac decoder to provide streaming FLAC decoding.
// Implements types.AudioDecoder.
type Decoder struct {
	decoder  *goflac.FlacDecoder
	spool    *spool.File
	rate     int
	channels int
	bps      int // bits per sample
}

// NewDecoder creates a new FLAC decoder
// Uses 16-bit output by default
func NewDecoder() *Decoder {
	return &Decoder{}
}

// GetFormat returns the audio format (rate, channels, bits per sample)
func (d *Decoder) GetFormat() (int, int, int) {
	return d.rate, d.channels, d.bps
}

// DecodeSamples decodes the specified number of samples into the audio buffer
func (d *Decoder) DecodeSamples(samples int, audio []byte) (int, error) {
	if d.decoder == nil {
		return 0, fmt.Errorf("decoder not initialized")
	}

	// Decode PCM data from FLAC
	n, err := d.decoder.DecodeSamples(samples, audio)
	return n, err
}

// Open spools r (a live FLAC stream) to a temp file and opens the FLAC
// frame decoder against it, 16-bit output by default.
func (d *Decoder) Open(r io.Reader) error {
	sf, err := spool.Open("", r)
	if err != nil {
		return fmt.Errorf("failed to spool input: %w", err)
	}

	decoder, err := goflac.NewFlacFrameDecoder(16)
	if err != nil {
		sf.Close()
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Open(sf.Path()); err != nil {
		decoder.Delete()
		sf.Close()
		return fmt.Errorf("failed to open spooled stream: %w", err)
	}

	rate, channels, bps := decoder.GetFormat()

	d.decoder = decoder
	d.spool = sf
	d.rate = rate
	d.channels = channels
	d.bps = bps

	return nil
}

// Close closes the decoder and releases the spool file.
func (d *Decoder) Close() error {
	if d.decoder != nil {
		d.decoder.Close()
		d.decoder.Delete()
		d.decoder = nil
	}
	if d.spool != nil {
		d.spool.Close()
		d.spool = nil
	}
	return nil
}

// Rate returns the sample rate in Hz
func (d *Decoder) Rate() int {
	return d.rate
}

// Channels returns the number of audio channels
func (d *Decoder) Channels() int {
	return d.channels
}

// Encoding returns the bits per sample (for consistency with MP3 decoder)
func (d *Decoder) Encoding() int {
	return d.bps
}

// BitsPerSample returns the bits per sample
func (d *Decoder) BitsPerSample() int {
	return d.bps
}
