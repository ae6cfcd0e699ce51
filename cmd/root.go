package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "streamplayer",
	Short: "Single-song streaming audio player",
	Long: `streamplayer plays exactly one network audio stream per invocation:
it opens the URL, decodes it, applies a volume/format filter chain, and
writes the result to the system audio device in real time, optionally
saving a pristine copy of the compressed stream alongside for later
transcoding.

Commands:
  - play: Stream and play a single URL`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
