package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/eiken/internal/config"
	"github.com/at-ishikawa/eiken/internal/datasync"
	"github.com/at-ishikawa/eiken/internal/result"
)

func newResultsSyncCommand() *cobra.Command {
	var (
		from, to StoreFlag
		dryRun   bool
	)
	command := &cobra.Command{
		Use:   "sync",
		Short: "Copy completed sets from one result store into another",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" || to == "" {
				return fmt.Errorf("both --from and --to are required")
			}
			if from == to {
				return fmt.Errorf("--from and --to must be different stores")
			}

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			ctx := cmd.Context()

			source, closeSource, err := openStore(cmd, cfg, from)
			if err != nil {
				return err
			}
			defer closeStore(closeSource)
			destination, closeDestination, err := openStore(cmd, cfg, to)
			if err != nil {
				return err
			}
			defer closeStore(closeDestination)

			out := cmd.OutOrStdout()
			importer := datasync.NewImporter(source, destination, out)
			importResult, err := importer.Import(ctx, datasync.ImportOptions{DryRun: dryRun})
			if err != nil {
				return fmt.Errorf("importer.Import() > %w", err)
			}

			_, _ = fmt.Fprintln(out, "\nSync Summary:")
			if dryRun {
				_, _ = fmt.Fprintln(out, "  (dry-run mode, no changes made)")
			}
			_, _ = fmt.Fprintf(out, "  Sets:     %d new, %d skipped\n", importResult.BatchesNew, importResult.BatchesSkipped)
			_, _ = fmt.Fprintf(out, "  Answers:  %d new\n", importResult.AnswersNew)
			return nil
		},
	}
	command.Flags().Var(&from, "from", "store to read (yaml, sqlite or mysql)")
	command.Flags().Var(&to, "to", "store to write (yaml, sqlite or mysql)")
	command.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be copied without writing")
	return command
}

func newResultsExportCommand(store *StoreFlag) *cobra.Command {
	var asJSON bool
	command := &cobra.Command{
		Use:   "export",
		Short: "Print every completed set as YAML or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, store, func(_ *config.Config, repository result.Repository) error {
				data, err := datasync.NewExporter(repository).Export(cmd.Context())
				if err != nil {
					return fmt.Errorf("exporter.Export() > %w", err)
				}
				batches := data.Batches
				if batches == nil {
					batches = []result.BatchResult{}
				}

				if asJSON {
					encoder := json.NewEncoder(cmd.OutOrStdout())
					encoder.SetIndent("", "  ")
					return encoder.Encode(batches)
				}
				encoder := yaml.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent(2)
				if err := encoder.Encode(batches); err != nil {
					return fmt.Errorf("yaml.Encode() > %w", err)
				}
				return encoder.Close()
			})
		},
	}
	command.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of YAML")
	return command
}

func openStore(cmd *cobra.Command, cfg *config.Config, store StoreFlag) (result.Repository, func() error, error) {
	storeCfg := *cfg
	store.apply(&storeCfg)
	repository, closeRepository, err := result.Open(cmd.Context(), &storeCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("result.Open(%s) > %w", store, err)
	}
	return repository, closeRepository, nil
}

func closeStore(closeRepository func() error) {
	if err := closeRepository(); err != nil {
		slog.Default().Warn("failed to close the result store", slog.Any("error", err))
	}
}
