// Package opus wraps drgolem/go-opus to decode a streamed Opus source,
// following the same spool-bridge shape as the mp3 and flac packages in
// this tree: go-opus's decoder is file-path based, so a live network
// reader is drained into a temp file underneath it.
package opus

import (
	"fmt"
	"io"

	goopus "github.com/drgolem/go-opus"

	"github.com/drgolem/streamplayer/pkg/decoders/spool"
)

// Decoder wraps goopus.Decoder. Implements types.AudioDecoder.
type Decoder struct {
	decoder  *goopus.Decoder
	spool    *spool.File
	rate     int
	channels int
	bps      int
}

// NewDecoder creates a new Opus decoder. Output is always 16-bit PCM.
func NewDecoder() *Decoder {
	return &Decoder{bps: 16}
}

// GetFormat returns the audio format (rate, channels, bits per sample)
func (d *Decoder) GetFormat() (int, int, int) {
	return d.rate, d.channels, d.bps
}

// DecodeSamples decodes up to 'samples' samples into audio.
func (d *Decoder) DecodeSamples(samples int, audio []byte) (int, error) {
	if d.decoder == nil {
		return 0, fmt.Errorf("decoder not initialized")
	}
	return d.decoder.DecodeSamples(samples, audio)
}

// Open spools r to a temp file and opens the Opus decoder against it.
func (d *Decoder) Open(r io.Reader) error {
	sf, err := spool.Open("", r)
	if err != nil {
		return fmt.Errorf("failed to spool input: %w", err)
	}

	decoder, err := goopus.NewDecoder()
	if err != nil {
		sf.Close()
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Open(sf.Path()); err != nil {
		decoder.Delete()
		sf.Close()
		return fmt.Errorf("failed to open spooled stream: %w", err)
	}

	rate, channels := decoder.GetFormat()

	d.decoder = decoder
	d.spool = sf
	d.rate = rate
	d.channels = channels

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
