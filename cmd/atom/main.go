// Command atom runs builder manifests against an in-process host.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/atom/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
