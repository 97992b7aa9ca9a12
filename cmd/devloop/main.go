// Package main provides the entry point for the devloop CLI.
package main

import (
	"context"
	"os"

	"github.com/wliublackruvy/agent-based-dev/internal/cli"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version = "" //nolint:gochecknoglobals // build metadata
	commit  = "" //nolint:gochecknoglobals // build metadata
	date    = "" //nolint:gochecknoglobals // build metadata
)

func main() {
	err := cli.Execute(context.Background(), cli.BuildInfo{Version: version, Commit: commit, Date: date})
	os.Exit(cli.ExitCodeForError(err))
}
