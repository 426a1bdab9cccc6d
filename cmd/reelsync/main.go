// Command reelsync keeps a playback queue in step with a remote save service.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/reelsync/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "reelsync:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
