package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	summaryadapter "github.com/bnema/sessionize/internal/adapters/render/summary"
	"github.com/bnema/sessionize/internal/domain"
	"github.com/spf13/cobra"
)

func newReportCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Inspect past runs",
	}

	cmd.AddCommand(
		newReportListCmd(app),
		newReportShowCmd(app),
	)

	return cmd
}

func newReportListCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reports, err := app.service.ListReports(cmd.Context())
			if err != nil {
				return err
			}

			return writeReportsOutput(cmd, app, reports, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print reports as JSON")

	return cmd
}

func newReportShowCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a single recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := app.service.GetReport(cmd.Context(), domain.RunID(args[0]))
			if err != nil {
				if errors.Is(err, domain.ErrReportNotFound) {
					return fmt.Errorf("%w: %s", err, args[0])
				}
				return err
			}

			return writeReportsOutput(cmd, app, []domain.RunReport{report}, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}

func writeReportsOutput(cmd *cobra.Command, app *app, reports []domain.RunReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	rendered, err := app.summaryRenderer(reports, summaryadapter.RenderOptions{Now: app.now()})
	if err != nil {
		return fmt.Errorf("render summary: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
