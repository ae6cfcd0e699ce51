// Package outputdevice opens a PortAudio output stream and writes filtered
// S16 frames to it synchronously, one Write call per decoded frame.
// Adapted from pkg/audioplayer.Player's producer/consumer PortAudio
// wiring down to a single synchronous writer: the play loop already
// serializes decode and output on one worker goroutine, so there is no
// ring buffer or separate consumer thread here.
package outputdevice

import (
	"fmt"

	"github.com/drgolem/go-portaudio/portaudio"
)

// Device is an open PortAudio output stream at a fixed rate/channel count.
// Opened once per playback attempt and closed on every exit; a failure to
// open is treated as a hard, non-retryable failure by the caller.
type Device struct {
	stream          *portaudio.PaStream
	channels        int
	bytesPerSample  int
	framesPerBuffer int
}

// Config describes the device to open.
type Config struct {
	DeviceIndex     int
	SampleRate      int
	Channels        int
	FramesPerBuffer int
}

// DefaultFramesPerBuffer mirrors pkg/audioplayer.DefaultConfig's default
// PortAudio buffer size.
const DefaultFramesPerBuffer = 512

// Open opens the PortAudio output stream. The filter graph always hands
// this device S16 samples (aformat enforces it), so the sample format is
// fixed rather than switched on bit depth the way pkg/audioplayer's
// initStream does for raw file playback.
func Open(cfg Config) (*Device, error) {
	framesPerBuffer := cfg.FramesPerBuffer
	if framesPerBuffer <= 0 {
		framesPerBuffer = DefaultFramesPerBuffer
	}

	outParams := portaudio.PaStreamParameters{
		DeviceIndex:  cfg.DeviceIndex,
		ChannelCount: cfg.Channels,
		SampleFormat: portaudio.SampleFmtInt16,
	}

	stream, err := portaudio.NewStream(outParams, float64(cfg.SampleRate))
	if err != nil {
		return nil, fmt.Errorf("failed to create output stream: %w", err)
	}
	if err := stream.Open(framesPerBuffer); err != nil {
		return nil, fmt.Errorf("failed to open output stream: %w", err)
	}
	if err := stream.StartStream(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start output stream: %w", err)
	}

	return &Device{
		stream:          stream,
		channels:        cfg.Channels,
		bytesPerSample:  2,
		framesPerBuffer: framesPerBuffer,
	}, nil
}

// Write blocks until pcm (interleaved S16LE) has been handed to the
// device. pcm must be an integral number of frames; a short trailing
// remainder is dropped.
func (d *Device) Write(pcm []byte) error {
	bytesPerFrame := d.channels * d.bytesPerSample
	frames := len(pcm) / bytesPerFrame
	if frames == 0 {
		return nil
	}
	return d.stream.Write(frames, pcm[:frames*bytesPerFrame])
}

// Close stops and releases the PortAudio stream. Idempotent.
func (d *Device) Close() error {
	if d.stream == nil {
		return nil
	}
	stream := d.stream
	d.stream = nil
	if err := stream.StopStream(); err != nil {
		return fmt.Errorf("failed to stop output stream: %w", err)
	}
	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close output stream: %w", err)
	}
	return nil
}
