package cli

import (
	"customerlens/internal/core/version"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, _ []string) {
		bi := version.Info(AppName)
		cmd.Printf("%s version %s\n", AppName, bi.Version)
		cmd.Printf("commit %s, built %s", bi.Commit, bi.Date)
		if bi.GoVersion != "" {
			cmd.Printf(", %s", bi.GoVersion)
		}
		cmd.Println()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
