package cmd

import (
	"context"

	"github.com/bnema/sessionize/internal/adapters/settings"
	"github.com/spf13/cobra"
)

func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	app := newApp()

	rootCmd := &cobra.Command{
		Use:           "sessionize",
		Short:         "Split web access logs into user sessions",
		Long:          "sessionize reads a chronologically ordered access log, groups each client's requests into sessions separated by a configurable inactivity gap, and writes one line per finished session.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.wire(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.configFile, "config", "", "Config file (default ~/.sessionize/config.toml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	_ = app.cfg.BindPFlag(settings.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(app),
		newReportCmd(app),
		newConfigCmd(app),
	)

	return rootCmd
}
