package ledger

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Exporter writes run records to a stream.
type Exporter interface {
	Export(ctx context.Context, records []*Record, w io.Writer) error
}

// JSONExporter exports run records as a JSON array.
type JSONExporter struct {
	// Pretty enables indented output.
	Pretty bool
}

// Export implements Exporter.
func (e *JSONExporter) Export(ctx context.Context, records []*Record, w io.Writer) error {
	if records == nil {
		records = []*Record{}
	}

	var (
		data []byte
		err  error
	)
	if e.Pretty {
		data, err = json.MarshalIndent(records, "", "  ")
	} else {
		data, err = json.Marshal(records)
	}
	if err != nil {
		return fmt.Errorf("encoding %d run records: %w", len(records), err)
	}

	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}

// CSVExporter exports run records as CSV rows.
type CSVExporter struct {
	// IncludeHeader writes a column name row first.
	IncludeHeader bool
}

// Export implements Exporter.
func (e *CSVExporter) Export(ctx context.Context, records []*Record, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		header := []string{
			"id", "job", "started_at", "duration_s",
			"number", "title", "provider", "model", "attempts",
			"status", "error",
		}
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for _, r := range records {
		row := []string{
			r.ID,
			r.Job,
			r.StartedAt.Format(time.RFC3339),
			fmt.Sprintf("%.1f", r.Duration.Seconds()),
			fmt.Sprintf("%d", r.Number),
			r.Title,
			r.Provider,
			r.Model,
			fmt.Sprintf("%d", r.Attempts),
			r.Status,
			r.Error,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing record %s: %w", r.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
