package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/eiken/internal/cli"
	"github.com/at-ishikawa/eiken/internal/config"
	"github.com/at-ishikawa/eiken/internal/pdf"
	"github.com/at-ishikawa/eiken/internal/report"
	"github.com/at-ishikawa/eiken/internal/result"
)

func newResultsCommand() *cobra.Command {
	var store StoreFlag
	resultsCommand := &cobra.Command{
		Use:   "results",
		Short: "Show the log of completed sets",
	}
	resultsCommand.PersistentFlags().Var(&store, "store", "result store to read (yaml, sqlite or mysql; default results.store)")

	resultsCommand.AddCommand(newResultsListCommand(&store))
	resultsCommand.AddCommand(newResultsStatsCommand(&store))
	resultsCommand.AddCommand(newResultsReportCommand(&store))
	resultsCommand.AddCommand(newResultsExportCommand(&store))
	resultsCommand.AddCommand(newResultsSyncCommand())

	return resultsCommand
}

// withRepository opens the configured result store for the duration of fn.
func withRepository(cmd *cobra.Command, store *StoreFlag, fn func(cfg *config.Config, repository result.Repository) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	store.apply(cfg)

	repository, closeRepository, err := result.Open(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("result.Open() > %w", err)
	}
	defer closeStore(closeRepository)
	return fn(cfg, repository)
}

func newResultsListCommand(store *StoreFlag) *cobra.Command {
	var limit int
	command := &cobra.Command{
		Use:   "list",
		Short: "List completed sets, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, store, func(_ *config.Config, repository result.Repository) error {
				return cli.RunResultsList(cmd.Context(), cmd.OutOrStdout(), repository, limit)
			})
		},
	}
	command.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of sets to show (0 shows all)")
	return command
}

func newResultsStatsCommand(store *StoreFlag) *cobra.Command {
	var year, month int
	command := &cobra.Command{
		Use:   "stats",
		Short: "Show accuracy per month and the most missed questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePeriod(year, month); err != nil {
				return err
			}
			return withRepository(cmd, store, func(_ *config.Config, repository result.Repository) error {
				return cli.RunResultsStats(cmd.Context(), cmd.OutOrStdout(), repository, year, month)
			})
		},
	}
	command.Flags().IntVar(&year, "year", 0, "only include sets completed in this year")
	command.Flags().IntVar(&month, "month", 0, "only include sets completed in this month (1-12)")
	return command
}

func newResultsReportCommand(store *StoreFlag) *cobra.Command {
	var (
		year, month int
		withPDF     bool
		paper       = PaperFlag(pdf.PaperA4)
	)
	command := &cobra.Command{
		Use:   "report",
		Short: "Write a markdown report of the result log, optionally as PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePeriod(year, month); err != nil {
				return err
			}
			return withRepository(cmd, store, func(cfg *config.Config, repository result.Repository) error {
				generator := report.NewGenerator(repository, cfg.Templates.ResultReport, cfg.Outputs.ReportDirectory)
				output, err := generator.Generate(cmd.Context(), report.Options{
					Year:      year,
					Month:     month,
					PDF:       withPDF,
					PaperSize: paper.String(),
				})
				if err != nil {
					return fmt.Errorf("generator.Generate() > %w", err)
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output.MarkdownPath)
				if output.PDFPath != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output.PDFPath)
				}
				return nil
			})
		},
	}
	command.Flags().IntVar(&year, "year", 0, "only include sets completed in this year")
	command.Flags().IntVar(&month, "month", 0, "only include sets completed in this month (1-12)")
	command.Flags().BoolVar(&withPDF, "pdf", false, "also convert the report to PDF")
	command.Flags().Var(&paper, "paper", "PDF paper size (A4 or Letter)")
	return command
}

func validatePeriod(year, month int) error {
	if month < 0 || month > 12 {
		return fmt.Errorf("--month must be between 1 and 12")
	}
	if month != 0 && year == 0 {
		return fmt.Errorf("--month requires --year")
	}
	return nil
}
