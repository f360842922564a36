package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/clutz/display"
	"github.com/teranos/clutz/version"
)

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show clutz version information",
	Long:  `Display version, build time, commit hash, platform and the oracle dump versions this binary reads.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		out := cmd.OutOrStdout()

		if display.ShouldOutputJSON(cmd) {
			return writeJSON(out, info)
		}
		fmt.Fprintln(out, info.String())
		fmt.Fprintf(out, "Platform: %s\n", info.Platform)
		fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
		return nil
	},
}
