// Package cli is the customerlens command tree
package cli

import (
	"context"
	"time"

	"customerlens/internal/adapters/source"
	"customerlens/internal/platform/config"
	"customerlens/internal/platform/logger"

	"github.com/spf13/cobra"
)

// AppName tags logs and store connections opened by the CLI
const AppName = "customerlens"

var (
	logLevel     string
	fetchTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "customerlens",
	Short: "Clean customer CSV exports and chart them",
	Long: `customerlens normalizes customer exports (age tokens, gender from salutation)
and renders charts from the cleaned table, either one off from a YAML report
or through stored datasets.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		opt := logger.FromEnv()
		if logLevel != "" {
			opt.Level = logLevel
		}
		if opt.Service == "" {
			opt.Service = AppName
		}
		logger.Init(opt)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level, overrides LOG_LEVEL")
	rootCmd.PersistentFlags().DurationVar(&fetchTimeout, "fetch-timeout", 30*time.Second, "timeout for http(s) sources, 0 disables it")
}

// Execute runs the command tree with ctx
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// opener reads "-" from the command's stdin
func opener(cmd *cobra.Command) *source.Opener {
	o := source.NewOpener(fetchTimeout)
	o.Stdin = cmd.InOrStdin()
	return o
}

// intFlag returns the flag when set, otherwise the CORE_<prefix> env value
func intFlag(cmd *cobra.Command, name string, v int, env config.Conf, key string, def int) int {
	if cmd.Flags().Changed(name) {
		return v
	}
	return env.MayInt(key, def)
}
