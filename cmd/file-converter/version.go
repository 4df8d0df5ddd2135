// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/pdiddy/file-converter/internal/ai"
	"github.com/pdiddy/file-converter/internal/convert"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the build, AI prompt version and routing table size",
	Run: func(cmd *cobra.Command, args []string) {
		info, _ := debug.ReadBuildInfo()
		printVersion(cmd.OutOrStdout(), info, versionShort)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the release")
	rootCmd.AddCommand(versionCmd)
}

// printVersion writes the release line and, unless short, the toolchain,
// commit and prompt details that identify how a conversion was produced.
func printVersion(w io.Writer, info *debug.BuildInfo, short bool) {
	fmt.Fprintf(w, "file-converter %s\n", version)
	if short {
		return
	}

	routes := 0
	for _, targets := range convert.SupportedConversions() {
		routes += len(targets)
	}
	goVersion, commit := "unknown", "unknown"
	if info != nil {
		goVersion = info.GoVersion
		var modified bool
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				commit = s.Value
			case "vcs.modified":
				modified = s.Value == "true"
			}
		}
		if modified {
			commit += " (modified)"
		}
	}
	fmt.Fprintf(w, "  go:      %s\n", goVersion)
	fmt.Fprintf(w, "  commit:  %s\n", commit)
	fmt.Fprintf(w, "  prompts: %s\n", ai.PromptVersion)
	fmt.Fprintf(w, "  routes:  %d\n", routes)
}
