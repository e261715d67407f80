package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// version and commit are set with -ldflags at build time.
var (
	version = "unknown"
	commit  = "none"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionString())
	},
}

func versionString() string {
	return fmt.Sprintf("%s version: %s (commit %s, %s/%s)", app, version, commit, runtime.GOOS, runtime.GOARCH)
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
