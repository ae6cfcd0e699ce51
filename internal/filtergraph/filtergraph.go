// Package filtergraph implements an abuffer -> volume -> aformat ->
// abuffersink style chain as a plain Go pipeline: a gain stage followed
// by a bit-depth/sample-rate normalization stage, instead of an ffmpeg
// AVFilter graph. Grounded on cmd/transform.go's use of
// github.com/zaf/resample for the format/rate conversion half of the
// chain.
package filtergraph

import (
	"bytes"
	"fmt"
	"math"
	"sync/atomic"

	soxr "github.com/zaf/resample"
)

// TargetFormat is the abuffersink contract: signed 16-bit samples at a
// fixed device rate.
type TargetFormat struct {
	SampleRate int
	Channels   int
}

// Graph holds the linear abuffer->volume->aformat->abuffersink chain for
// one playback attempt. Built once per successful open, torn down on
// every exit.
type Graph struct {
	sourceRate     int
	sourceChannels int
	sourceBits     int
	target         TargetFormat

	// gainBits stores math.Float64bits(gain dB) so SetVolume can be
	// called from the control thread concurrently with Process running
	// on the worker, without a lock.
	gainBits atomic.Uint64

	resampler *soxr.Resampler
	resampBuf bytes.Buffer
}

// New builds the graph for one decoder's format, configuring abuffer with
// the decoder's rate/channels/bit depth and aformat with target.
func New(sourceRate, sourceChannels, sourceBits int, target TargetFormat) (*Graph, error) {
	g := &Graph{
		sourceRate:     sourceRate,
		sourceChannels: sourceChannels,
		sourceBits:     sourceBits,
		target:         target,
	}
	g.SetVolumeDB(0) // volume filter starts at 0dB

	if sourceRate != target.SampleRate {
		r, err := soxr.New(&g.resampBuf, float64(sourceRate), float64(target.SampleRate), target.Channels, soxr.I16, soxr.HighQ)
		if err != nil {
			return nil, fmt.Errorf("failed to build aformat resampler: %w", err)
		}
		g.resampler = r
	}

	return g, nil
}

// SetVolumeDB sets the volume filter's gain in decibels. Safe to call
// concurrently with Process.
func (g *Graph) SetVolumeDB(db float64) {
	g.gainBits.Store(math.Float64bits(db))
}

func (g *Graph) volumeDB() float64 {
	return math.Float64frombits(g.gainBits.Load())
}

// Process pushes one decoded frame's raw PCM through volume and aformat,
// returning the filtered samples ready for the output device. The input
// buffer is assumed interleaved little-endian samples at sourceBits depth;
// output is always interleaved S16LE at target's sample rate. The channel
// count is not converted.
func (g *Graph) Process(pcm []byte) ([]byte, error) {
	s16, err := to16Bit(pcm, g.sourceBits)
	if err != nil {
		return nil, err
	}

	applyGain(s16, g.volumeDB())

	if g.resampler == nil {
		return s16, nil
	}

	g.resampBuf.Reset()
	if _, err := g.resampler.Write(s16); err != nil {
		return nil, fmt.Errorf("aformat resample: %w", err)
	}
	out := make([]byte, g.resampBuf.Len())
	copy(out, g.resampBuf.Bytes())
	return out, nil
}

// Close tears down the resampler. Idempotent.
func (g *Graph) Close() error {
	if g.resampler == nil {
		return nil
	}
	err := g.resampler.Close()
	g.resampler = nil
	return err
}

// to16Bit enforces the aformat stage's S16 contract, downconverting
// whatever bit depth the decoder produced (FLAC/WAV may emit 24 or 32 bit
// PCM) by taking the top 16 bits of each sample, matching how
// pkg/decoders/wav packs/unpacks samples of varying width.
func to16Bit(pcm []byte, bits int) ([]byte, error) {
	switch bits {
	case 16:
		return pcm, nil
	case 8:
		out := make([]byte, len(pcm)*2)
		for i, b := range pcm {
			v := int16(b)*256 - 32768
			out[i*2] = byte(v & 0xFF)
			out[i*2+1] = byte((v >> 8) & 0xFF)
		}
		return out, nil
	case 24:
		n := len(pcm) / 3
		out := make([]byte, n*2)
		for i := 0; i < n; i++ {
			b0, b1, b2 := pcm[i*3], pcm[i*3+1], pcm[i*3+2]
			v := int32(b0) | int32(b1)<<8 | int32(b2)<<16
			if v&0x800000 != 0 {
				v |= ^0xFFFFFF
			}
			sample := int16(v >> 8)
			out[i*2] = byte(sample & 0xFF)
			out[i*2+1] = byte((sample >> 8) & 0xFF)
		}
		return out, nil
	case 32:
		n := len(pcm) / 4
		out := make([]byte, n*2)
		for i := 0; i < n; i++ {
			v := int32(pcm[i*4]) | int32(pcm[i*4+1])<<8 | int32(pcm[i*4+2])<<16 | int32(pcm[i*4+3])<<24
			sample := int16(v >> 16)
			out[i*2] = byte(sample & 0xFF)
			out[i*2+1] = byte((sample >> 8) & 0xFF)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("aformat: unsupported source bit depth %d", bits)
	}
}

// applyGain scales interleaved S16LE samples in place by 10^(dB/20),
// clamping to avoid wraparound.
func applyGain(s16 []byte, db float64) {
	if db == 0 {
		return
	}
	mul := math.Pow(10, db/20)
	for i := 0; i+1 < len(s16); i += 2 {
		v := int16(uint16(s16[i]) | uint16(s16[i+1])<<8)
		scaled := float64(v) * mul
		if scaled > 32767 {
			scaled = 32767
		} else if scaled < -32768 {
			scaled = -32768
		}
		out := int16(scaled)
		s16[i] = byte(out & 0xFF)
		s16[i+1] = byte((out >> 8) & 0xFF)
	}
}
