// Package session owns the Player Session worker: mutable playback state
// shared with a control thread, the pause gate, the interrupt counter,
// and the retry loop that drives the stream opener, filter graph, output
// device, and play loop to a terminal result.
package session

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/drgolem/streamplayer/internal/filtergraph"
	"github.com/drgolem/streamplayer/internal/interrupt"
	"github.com/drgolem/streamplayer/internal/outputdevice"
	"github.com/drgolem/streamplayer/internal/playloop"
	"github.com/drgolem/streamplayer/internal/posthook"
	"github.com/drgolem/streamplayer/internal/streamopener"
	"github.com/drgolem/streamplayer/pkg/types"
)

// Config fixes the input to one playback attempt; set before the worker
// is launched and never mutated afterward.
type Config struct {
	URL         string
	Tags        types.Tags
	SaveDir     string
	VolumeDB    float64
	GainDB      float64
	GainMul     float64
	DeviceIndex int

	Sink types.MessageSink // may be nil
	Hook posthook.Hook     // external transcode; nil disables it
}

// Session is the worker-owned unit of work. All numeric/flag fields are
// plain atomics: no invariant spans two of these fields, so each is
// updated independently with no cross-field locking.
type Session struct {
	cfg Config

	mode          atomic.Int32 // types.Mode
	doQuit        atomic.Bool
	lastTimestamp atomic.Int64 // byte offset, see streamopener's reinterpretation
	songPlayed    atomic.Uint64 // math.Float64bits
	songDuration  atomic.Uint64 // math.Float64bits

	counter interrupt.Counter

	pauseMu   sync.Mutex
	pauseCond *sync.Cond
	doPause   bool

	gateMu  sync.Mutex
	graph   *filtergraph.Graph // set only while mode == PLAYING; guarded for SetVolume races
}

// New builds a session ready to run. mode starts at WAITING.
func New(cfg Config) *Session {
	s := &Session{cfg: cfg}
	s.pauseCond = sync.NewCond(&s.pauseMu)
	s.mode.Store(int32(types.ModeWaiting))
	return s
}

// Mode returns the current coarse state.
func (s *Session) Mode() types.Mode { return types.Mode(s.mode.Load()) }

// SongPlayed returns seconds played so far.
func (s *Session) SongPlayed() float64 { return math.Float64frombits(s.songPlayed.Load()) }

// SongDuration returns the known song duration, or 0 if unknown.
func (s *Session) SongDuration() float64 { return math.Float64frombits(s.songDuration.Load()) }

// Skip requests the current playback attempt abort (interrupt level 1).
// When the abort lands in the play loop, Run returns ResultOK without
// retrying. No-op once do_quit has latched.
func (s *Session) Skip() { s.counter.Signal(interrupt.SkipOnce) }

// Quit requests the worker tear down for good (interrupt level ≥2).
func (s *Session) Quit() {
	s.doQuit.Store(true)
	s.counter.Signal(interrupt.Quit)
	s.pauseMu.Lock()
	s.doPause = false
	s.pauseCond.Broadcast()
	s.pauseMu.Unlock()
}

// SetPause sets or clears do_pause and wakes the worker if it is waiting
// on the pause gate.
func (s *Session) SetPause(pause bool) {
	s.pauseMu.Lock()
	s.doPause = pause
	s.pauseCond.Broadcast()
	s.pauseMu.Unlock()
}

// Wait implements playloop.PauseGate: block while do_pause is set,
// re-checking on every wake (spurious-wake-safe).
func (s *Session) Wait() {
	s.pauseMu.Lock()
	for s.doPause && !s.doQuit.Load() {
		s.pauseCond.Wait()
	}
	s.pauseMu.Unlock()
}

// Advance implements playloop.Clock.
func (s *Session) Advance(playedSeconds float64, _ int64) {
	s.songPlayed.Store(math.Float64bits(playedSeconds))
}

// SetVolume recomputes and applies the combined gain. No-op unless
// mode == PLAYING. Errors go to the message sink and are otherwise
// swallowed.
func (s *Session) SetVolume(volumeDB, gainDB, gainMul float64) {
	if s.Mode() != types.ModePlaying {
		return
	}
	s.gateMu.Lock()
	g := s.graph
	s.gateMu.Unlock()
	if g == nil {
		return
	}
	g.SetVolumeDB(volumeDB + gainDB*gainMul)
}

func (s *Session) setGraph(g *filtergraph.Graph) {
	s.gateMu.Lock()
	s.graph = g
	s.gateMu.Unlock()
}

// outputTarget fixes the device's native format: S16, same channel count
// and rate as the decoder.
func outputTarget(channels, rate int) filtergraph.TargetFormat {
	return filtergraph.TargetFormat{SampleRate: rate, Channels: channels}
}

// Run is the worker entry point, implementing the open/play/finish retry
// loop. It blocks until the session reaches a terminal result.
func Run(s *Session) types.Result {
	var retry bool
	var result types.Result
	var finalOpened *streamopener.Opened

	for {
		opened, openErr := streamopener.Open(streamopener.Request{
			URL:            s.cfg.URL,
			Artist:         s.cfg.Tags.Artist,
			Album:          s.cfg.Tags.Album,
			Title:          s.cfg.Tags.Title,
			AlbumArtURL:    s.cfg.Tags.AlbumArtURL,
			SaveDir:        s.cfg.SaveDir,
			LastByteOffset: s.lastTimestamp.Load(),
			Counter:        &s.counter,
		})

		if openErr != nil {
			s.report(types.SeverityError, "stream open failed: %s", openErr)
			result = types.ResultSoftFail
			s.mode.Store(int32(types.ModeWaiting))
			s.finish(nil, nil, nil, nil, false)
			retry = !s.doQuit.Load()
			if retry {
				continue
			}
			break
		}

		if opened.SongDuration > 0 {
			s.songDuration.Store(math.Float64bits(opened.SongDuration))
		}

		graph, device, hardErr := s.openFilterAndDevice(opened)
		if hardErr != nil {
			s.report(types.SeverityError, "failed to open filter/device: %s", hardErr)
			result = types.ResultHardFail
			s.mode.Store(int32(types.ModeWaiting))
			s.finish(opened, opened.Decoder, graph, device, false)
			break
		}

		s.mode.Store(int32(types.ModePlaying))
		s.setGraph(graph)
		s.SetVolume(s.cfg.VolumeDB, s.cfg.GainDB, s.cfg.GainMul)

		playErr := playloop.Run(opened.Decoder, graph, device, &s.counter, s, s)
		s.setGraph(nil)
		s.lastTimestamp.Add(opened.BytesRead())

		switch {
		case playErr == nil:
			result = types.ResultOK
			retry = false
		case playErr == types.ErrInvalidData:
			retry = !s.doQuit.Load()
			result = types.ResultSoftFail
		default:
			// Interrupted (skip or quit), or a filter/device error:
			// treated as a clean return, not a retry.
			result = types.ResultOK
			retry = false
		}

		s.mode.Store(int32(types.ModeWaiting))
		// Keep this attempt's tee container open only if it is the last
		// one: a retried attempt's partial container must never be
		// committed or carried into the next attempt.
		s.finish(opened, opened.Decoder, graph, device, !retry)
		if !retry {
			finalOpened = opened
		}

		if retry {
			continue
		}
		break
	}

	s.mode.Store(int32(types.ModeFinished))
	// The post-finish block (trailer commit + external transcode) runs
	// exactly once, after the retry loop has terminated, never per
	// iteration.
	s.commitSave(finalOpened)
	return result
}

func (s *Session) openFilterAndDevice(opened *streamopener.Opened) (*filtergraph.Graph, *outputdevice.Device, error) {
	graph, err := filtergraph.New(opened.SampleRate, opened.Channels, opened.BitsPerSample, outputTarget(opened.Channels, opened.SampleRate))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build filter graph: %w", err)
	}

	device, err := outputdevice.Open(outputdevice.Config{
		DeviceIndex: s.cfg.DeviceIndex,
		SampleRate:  opened.SampleRate,
		Channels:    opened.Channels,
	})
	if err != nil {
		graph.Close()
		return nil, nil, fmt.Errorf("failed to open output device: %w", err)
	}

	return graph, device, nil
}

// finish releases the output device, filter graph, decoder, and opener
// (in that order) and is safe to call on any partial open state. When
// keepTee is true and saving is still eligible (save_file && !do_quit),
// the tee container is left open for commitSave to finish once the retry
// loop has terminated; otherwise it is aborted immediately, since a
// discarded attempt's partial container must never be committed or
// carried into the next attempt.
func (s *Session) finish(opened *streamopener.Opened, decoder types.AudioDecoder, graph *filtergraph.Graph, device *outputdevice.Device, keepTee bool) {
	if device != nil {
		device.Close()
	}
	if graph != nil {
		graph.Close()
	}
	if decoder != nil {
		decoder.Close()
	}
	if opened != nil {
		opened.Close()
	}

	if opened == nil || opened.Tee == nil {
		return
	}
	if keepTee && opened.SaveFile && !s.doQuit.Load() {
		return
	}
	opened.Tee.Abort()
}

// commitSave runs the post-finish block exactly once, after Run's retry
// loop has terminated: writes the tee trailer and, if configured, kicks
// off the external transcode. Gated on save_file && !do_quit; opened may
// be nil (no attempt reached a terminal state with a tee still open).
func (s *Session) commitSave(opened *streamopener.Opened) {
	if opened == nil || opened.Tee == nil {
		return
	}

	if s.doQuit.Load() || !opened.SaveFile {
		opened.Tee.Abort()
		return
	}

	if err := opened.Tee.Commit(); err != nil {
		s.report(types.SeverityError, "failed to commit tee container: %s", err)
		return
	}

	if s.cfg.Hook == nil {
		return
	}
	go func() {
		if err := s.cfg.Hook.Run(context.Background(), opened.TempPath, opened.TargetPath); err != nil {
			s.report(types.SeverityError, "post-play transcode failed: %s", err)
		}
	}()
}

func (s *Session) report(severity types.Severity, format string, args ...any) {
	if s.cfg.Sink == nil {
		return
	}
	s.cfg.Sink.Message(severity, format, args...)
}
