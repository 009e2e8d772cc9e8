// hv-video-cli runs video blocks and pipelines.
//
// Usage:
//
//	hv-video-cli [--json] [--channel-id ID] <command> [flags]
//
// Commands:
//
//	list-blocks  Describe the video blocks
//	concat       Concatenate two clips
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
	if err := cli.NewVideoRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
