// Package playloop implements a FILL/DRAIN/DONE-style decode-and-play
// state machine. It owns nothing; it is handed an already-open decoder,
// filter graph, and output device by the session and runs them to
// completion, a retryable error, or an interrupt.
package playloop

import (
	"errors"
	"io"

	"github.com/drgolem/streamplayer/internal/filtergraph"
	"github.com/drgolem/streamplayer/internal/interrupt"
	"github.com/drgolem/streamplayer/internal/outputdevice"
	"github.com/drgolem/streamplayer/pkg/types"
)

// frameSamples is the number of samples pulled from the decoder per
// iteration, matching pkg/audioplayer.DefaultConfig.FramesPerBuffer's
// PortAudio buffer granularity.
const frameSamples = 512

// PauseGate is the subset of the session's pause protocol the loop needs:
// Wait blocks while paused and returns once cleared (or immediately if
// not paused), spurious-wake-safe.
type PauseGate interface {
	Wait()
}

// Clock receives position updates from the loop after every decoded
// frame, the Go-native analogue of updating last_timestamp/song_played.
type Clock interface {
	Advance(playedSeconds float64, samplePos int64)
}

// Run drives decode->filter->output until the decoder reaches EOF (nil
// returned), the decoder reports corrupted data (types.ErrInvalidData,
// soft-fail/retry signal), or the interrupt counter aborts the loop
// (types.ErrInterrupted).
func Run(decoder types.AudioDecoder, graph *filtergraph.Graph, device *outputdevice.Device, counter *interrupt.Counter, gate PauseGate, clock Clock) error {
	sampleRateHz, channels, bits := decoder.GetFormat()
	bytesPerFrame := channels * (bits / 8)
	buf := make([]byte, frameSamples*bytesPerFrame)

	var samplePos int64

	for {
		if counter.Load() == interrupt.Quit {
			return types.ErrInterrupted
		}

		gate.Wait()

		if counter.CheckAndReset() {
			return types.ErrInterrupted
		}

		n, err := decoder.DecodeSamples(frameSamples, buf)
		if n > 0 {
			frame := buf[:n*bytesPerFrame]

			filtered, ferr := graph.Process(frame)
			if ferr != nil {
				return ferr
			}

			if werr := device.Write(filtered); werr != nil {
				return werr
			}

			samplePos += int64(n)
			if clock != nil {
				clock.Advance(float64(samplePos)/float64(sampleRateHz), samplePos)
			}
		}

		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, types.ErrInterrupted) {
			return types.ErrInterrupted
		}
		return types.ErrInvalidData
	}
}
