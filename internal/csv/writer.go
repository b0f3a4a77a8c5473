package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"tripletuploader/internal/models"
)

// DefaultExportName is the fixed filename offered for the result download.
const DefaultExportName = "result.csv"

// StatusColumn is appended after the business columns on export.
const StatusColumn = "Status"

// WriteDataset serializes the dataset as CSV: the header row plus one line
// per record, with the status appended as the last column. encoding/csv
// handles quoting of embedded commas, quotes and newlines.
func WriteDataset(w io.Writer, ds *models.Dataset) error {
	writer := csv.NewWriter(w)

	header := append(append([]string{}, ds.Headers...), StatusColumn)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	row := make([]string, len(ds.Headers)+1)
	for _, rec := range ds.Records {
		for i, h := range ds.Headers {
			row[i] = rec.Fields[h]
		}
		row[len(ds.Headers)] = string(rec.Status)
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportFile writes the result CSV to path, creating parent directories as
// needed. The partially written file is removed on error.
func ExportFile(path string, ds *models.Dataset) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create result file: %w", err)
	}
	defer file.Close()

	if err := WriteDataset(file, ds); err != nil {
		os.Remove(path)
		return fmt.Errorf("export failed: %w", err)
	}

	return nil
}
