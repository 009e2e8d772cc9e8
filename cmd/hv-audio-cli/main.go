// hv-audio-cli runs audio blocks and pipelines.
//
// Usage:
//
//	hv-audio-cli [--json] [--log-level LEVEL] <command> [flags]
//
// Commands:
//
//	list-blocks  Describe the audio blocks
//	normalize    Normalize the loudness of a WAV file
//	run          Run a pipeline definition
package main

import (
	"fmt"
	"os"

	"github.com/softwarewrighter/hybrid-vid/internal/cli"
)

// version is set via ldflags at build time.
var version = "dev"

func main() {
	if err := cli.NewAudioRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
