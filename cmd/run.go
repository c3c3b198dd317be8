package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnema/sessionize/internal/adapters/settings"
	"github.com/bnema/sessionize/internal/adapters/sink/text"
	"github.com/bnema/sessionize/internal/adapters/source/csvlog"
	"github.com/bnema/sessionize/internal/application"
	"github.com/bnema/sessionize/internal/domain"
	"github.com/spf13/cobra"
)

func newRunCmd(app *app) *cobra.Command {
	var (
		noReport    bool
		showSummary bool
		asJSON      bool
		quiet       bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Split an access log into sessions",
		Example: "  sessionize run --input log.csv --inactivity-file inactivity_period.txt --output sessionization.txt\n" +
			"  sessionize run -i log.csv --inactivity 2",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			window, err := app.settings.Window()
			if err != nil {
				return fmt.Errorf("inactivity threshold: %w", err)
			}

			inputPath, err := app.settings.InputPath()
			if err != nil {
				return err
			}
			outputPath := app.settings.Output.Path

			input, err := os.Open(inputPath)
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer func() {
				_ = input.Close()
			}()

			source, err := csvlog.NewReader(input)
			if err != nil {
				return fmt.Errorf("read %s: %w", inputPath, err)
			}

			sink, err := text.Create(outputPath, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			var report domain.RunReport
			sessionize := func(ctx context.Context) error {
				var runErr error
				report, runErr = app.service.Sessionize(ctx, application.SessionizeCommand{
					Window:     window,
					Input:      inputPath,
					Output:     outputPath,
					SkipReport: noReport,
				}, source, sink)
				return runErr
			}

			if quiet {
				err = sessionize(cmd.Context())
			} else {
				label := fmt.Sprintf("Sessionizing %s...", filepath.Base(inputPath))
				err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), label, sessionize)
			}

			if closeErr := sink.Close(); closeErr != nil {
				err = errors.Join(err, closeErr)
			}
			if err != nil {
				return err
			}

			if !showSummary && !asJSON {
				return nil
			}

			return writeReportsOutput(cmd, app, []domain.RunReport{report}, asJSON)
		},
	}

	cmd.Flags().StringP("input", "i", "", "Access log CSV with a header line")
	cmd.Flags().StringP("output", "o", "", "Sessions output file, - for stdout")
	cmd.Flags().Int64("inactivity", 0, "Inactivity threshold in seconds (1-86400)")
	cmd.Flags().String("inactivity-file", "", "File whose first line holds the inactivity threshold")
	cmd.Flags().BoolVar(&noReport, "no-report", false, "Do not record this run in the report history")
	cmd.Flags().BoolVar(&showSummary, "summary", false, "Print a run summary after processing")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run summary as JSON")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not show progress on stderr")

	for key, flag := range map[string]string{
		settings.KeyInputPath:         "input",
		settings.KeyOutputPath:        "output",
		settings.KeyInactivitySeconds: "inactivity",
		settings.KeyInactivityPath:    "inactivity-file",
	} {
		_ = app.cfg.BindPFlag(key, cmd.Flags().Lookup(flag))
	}

	return cmd
}
