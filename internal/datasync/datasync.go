// Package datasync copies the result log between stores, e.g. from YAML files into a database.
package datasync

import (
	"context"
	"fmt"
	"io"

	"github.com/at-ishikawa/eiken/internal/result"
)

// ImportResult tracks counts for an import.
type ImportResult struct {
	BatchesNew     int
	BatchesSkipped int
	AnswersNew     int
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun bool
}

// Importer copies batch results that the destination does not have yet.
type Importer struct {
	source      result.Repository
	destination result.Repository
	writer      io.Writer
}

// NewImporter creates a new Importer.
func NewImporter(source, destination result.Repository, writer io.Writer) *Importer {
	return &Importer{
		source:      source,
		destination: destination,
		writer:      writer,
	}
}

// Import copies every batch whose ID is missing from the destination, oldest first.
func (imp *Importer) Import(ctx context.Context, opts ImportOptions) (*ImportResult, error) {
	batches, err := imp.source.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("source.FindAll() > %w", err)
	}
	existing, err := imp.destination.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("destination.FindAll() > %w", err)
	}
	existingIDs := make(map[string]bool, len(existing))
	for _, b := range existing {
		existingIDs[b.ID] = true
	}

	var importResult ImportResult
	for _, batch := range batches {
		label := fmt.Sprintf("%s set %d (%d/%d)", batch.CompletedAt.Format("2006-01-02 15:04"), batch.BatchNumber, batch.Score, batch.Total)
		if existingIDs[batch.ID] {
			_, _ = fmt.Fprintf(imp.writer, "  [SKIP]  %s\n", label)
			importResult.BatchesSkipped++
			continue
		}

		if !opts.DryRun {
			if err := imp.destination.Save(ctx, batch); err != nil {
				return nil, fmt.Errorf("destination.Save(%s) > %w", batch.ID, err)
			}
		}
		existingIDs[batch.ID] = true
		_, _ = fmt.Fprintf(imp.writer, "  [NEW]  %s\n", label)
		importResult.BatchesNew++
		importResult.AnswersNew += len(batch.Answers)
	}
	return &importResult, nil
}

// ExportData holds every batch read from a store.
type ExportData struct {
	Batches []result.BatchResult
}

// Exporter reads a store and returns its batches.
type Exporter struct {
	repository result.Repository
}

// NewExporter creates a new Exporter.
func NewExporter(repository result.Repository) *Exporter {
	return &Exporter{repository: repository}
}

// Export reads all batches from the store.
func (e *Exporter) Export(ctx context.Context) (*ExportData, error) {
	batches, err := e.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository.FindAll() > %w", err)
	}
	return &ExportData{Batches: batches}, nil
}
