package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drgolem/streamplayer/internal/posthook"
	"github.com/drgolem/streamplayer/internal/session"
	"github.com/drgolem/streamplayer/pkg/types"

	"github.com/drgolem/go-portaudio/portaudio"
	"github.com/spf13/cobra"
)

var (
	deviceIdx   int
	volumeDB    float64
	gainDB      float64
	gainMul     float64
	saveDir     string
	artist      string
	album       string
	title       string
	albumArtURL string
	transcode   bool
	verbose     bool
)

// playCmd streams and plays exactly one URL per invocation.
var playCmd = &cobra.Command{
	Use:   "play <url>",
	Short: "Stream and play a single audio URL",
	Long: `play opens a network URL for one encoded audio stream, decodes it,
applies the volume/format filter chain, and writes the result to the
system audio device in real time.

Examples:
  # Play a stream
  streamplayer play https://example.com/stream.mp3

  # Play with a specific output device and lower volume
  streamplayer play -d 0 --volume -6 https://example.com/stream.flac

  # Save a pristine copy alongside playback, tagged for the save path
  streamplayer play --save-dir /music --artist "AC/DC" --album "Back In Black" --title "Thunderstruck" https://example.com/stream.mp3

On a transient stream error the player retries automatically from the
last byte offset it had consumed. Ctrl-C quits immediately without
writing a save file; sending SIGUSR1 (where supported) skips the
current song: playback stops and the URL is not retried.`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().IntVarP(&deviceIdx, "device", "d", 1, "Audio output device index")
	playCmd.Flags().Float64Var(&volumeDB, "volume", 0, "Base volume in decibels")
	playCmd.Flags().Float64Var(&gainDB, "gain", 0, "Per-song gain in decibels")
	playCmd.Flags().Float64Var(&gainMul, "gain-mul", 1, "Gain multiplier applied to --gain")
	playCmd.Flags().StringVar(&saveDir, "save-dir", "", "Save a pristine copy of the stream under this directory")
	playCmd.Flags().StringVar(&artist, "artist", "", "Artist tag, used for the save path")
	playCmd.Flags().StringVar(&album, "album", "", "Album tag, used for the save path")
	playCmd.Flags().StringVar(&title, "title", "untitled", "Title tag, used for the save path")
	playCmd.Flags().StringVar(&albumArtURL, "album-art-url", "", "Cover art URL, downloaded alongside a save")
	playCmd.Flags().BoolVar(&transcode, "transcode", true, "Run the external ffmpeg/lame transcode after a successful save")
	playCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (debug logging)")
}

// slogSink adapts slog to types.MessageSink.
type slogSink struct{}

func (slogSink) Message(severity types.Severity, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if severity == types.SeverityError {
		slog.Error(msg)
		return
	}
	slog.Info(msg)
}

func runPlay(cmd *cobra.Command, args []string) {
	url := args[0]

	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("Initializing PortAudio")
	if err := portaudio.Initialize(); err != nil {
		slog.Error("Failed to initialize PortAudio", "error", err)
		slog.Error("Hint: Make sure PortAudio is installed on your system")
		os.Exit(1)
	}
	defer portaudio.Terminate()

	slog.Info("PortAudio initialized", "version", portaudio.GetVersion())
	slog.Info("Session configured",
		"url", url,
		"device_index", deviceIdx,
		"volume_db", volumeDB,
		"save_dir", saveDir)

	var hook posthook.Hook
	if transcode && saveDir != "" {
		hook = posthook.NewFFmpegLame()
	}

	cfg := session.Config{
		URL: url,
		Tags: types.Tags{
			Artist:      artist,
			Album:       album,
			Title:       title,
			AlbumArtURL: albumArtURL,
		},
		SaveDir:     saveDir,
		VolumeDB:    volumeDB,
		GainDB:      gainDB,
		GainMul:     gainMul,
		DeviceIndex: deviceIdx,
		Sink:        slogSink{},
		Hook:        hook,
	}
	sess := session.New(cfg)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1)

	statusDone := make(chan struct{})
	go monitorSession(sess, statusDone)

	resultChan := make(chan types.Result, 1)
	go func() {
		resultChan <- session.Run(sess)
	}()

	var result types.Result
waitLoop:
	for {
		select {
		case result = <-resultChan:
			slog.Info("Playback finished", "result", result.String())
			break waitLoop
		case sig := <-sigChan:
			if sig == syscall.SIGUSR1 {
				slog.Info("Signal received, skipping current song", "signal", sig)
				sess.Skip()
				continue waitLoop
			}
			slog.Info("Signal received, quitting", "signal", sig)
			sess.Quit()
			result = <-resultChan
			break waitLoop
		}
	}

	close(statusDone)

	if result == types.ResultHardFail {
		os.Exit(1)
	}
}

// monitorSession logs session state every 2 seconds: mode, elapsed
// playback, and known duration.
func monitorSession(sess *session.Session, done chan struct{}) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			slog.Info("Playback status",
				"mode", sess.Mode().String(),
				"played_s", fmt.Sprintf("%.1f", sess.SongPlayed()),
				"duration_s", fmt.Sprintf("%.1f", sess.SongDuration()))
		case <-done:
			return
		}
	}
}
