package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Actual version can be specified in build command.
var version = "unknown"

type buildInfo struct {
	Version   string `json:"version"`
	Revision  string `json:"revision,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		printVersion(cmd.OutOrStdout(), currentBuild(), viper.GetBool("json"))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func currentBuild() buildInfo {
	info := buildInfo{
		Version:   version,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.Version == "unknown" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				info.Revision = s.Value
			}
		}
	}
	return info
}

func printVersion(w io.Writer, info buildInfo, asJSON bool) {
	if asJSON {
		_ = json.NewEncoder(w).Encode(info)
		return
	}

	fmt.Fprintf(w, "%s version: %s\n", app, info.Version)
	if info.Revision != "" {
		fmt.Fprintf(w, "revision: %s\n", info.Revision)
	}
	fmt.Fprintf(w, "go: %s %s\n", info.GoVersion, info.Platform)
}
