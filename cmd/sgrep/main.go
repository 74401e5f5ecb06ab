// Command sgrep is a local full-text search and regex-grep tool over
// heterogeneous document collections.
package main

import (
	"os"

	"github.com/Hexilee/sgrep/pkg/cmd"
)

var (
	version = "dev"
	appName = "sgrep"
)

func main() {
	root := cmd.NewRootCommand(cmd.BuildInfo{Version: version, AppName: appName})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
