package mp3

import (
	"fmt"
	"io"

	"github.com/drgolem/go-mpg123/mpg123"

	"github.com/drgolem/streamplayer/pkg/decoders/spool"
)

// Decoder wraps the mpg123.Decoder to provide streaming MP3 decoding.
// Implements types.AudioDecoder.
type Decoder struct {
	decoder  *mpg123.Decoder
	spool    *spool.File
	rate     int
	channels int
	encoding int
}

// NewDecoder creates a new MP3 decoder
func NewDecoder() *Decoder {
	return &Decoder{}
}

// GetFormat returns the audio format (rate, channels, encoding)
func (d *Decoder) GetFormat() (int, int, int) {
	return d.rate, d.channels, d.encoding
}

// DecodeSamples decodes the specified number of samples into the audio buffer
// Returns the number of samples decoded (not bytes)
func (d *Decoder) DecodeSamples(samples int, audio []byte) (int, error) {
	if d.decoder == nil {
		return 0, fmt.Errorf("decoder not initialized")
	}

	// Use mpg123's DecodeSamples which correctly handles all audio formats
	// (mono/stereo, 16/24/32-bit)
	return d.decoder.DecodeSamples(samples, audio)
}

// Open spools r (a live MP3 elementary stream) to a temp file and opens
// mpg123 against it. mpg123 is file-path based, not io.Reader based, so the
// spool keeps decoding and network draining concurrent.
func (d *Decoder) Open(r io.Reader) error {
	sf, err := spool.Open("", r)
	if err != nil {
		return fmt.Errorf("failed to spool input: %w", err)
	}

	decoder, err := mpg123.NewDecoder("")
	if err != nil {
		sf.Close()
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Open(sf.Path()); err != nil {
		decoder.Delete()
		sf.Close()
		return fmt.Errorf("failed to open spooled stream: %w", err)
	}

	rate, channels, encoding := decoder.GetFormat()

	d.decoder = decoder
	d.spool = sf
	d.rate = rate
	d.channels = channels
	d.encoding = encoding

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

// Encoding returns the encoding format
func (d *Decoder) Encoding() int {
	return d.encoding
}
