package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tripletuploader/internal/models"

	"github.com/jszwec/csvutil"
)

// Import-stage errors surfaced verbatim to the user.
var (
	ErrNotCSV    = errors.New("please input a csv file")
	ErrEmptyFile = errors.New("empty file")
)

// MissingHeadersError names the required columns absent from the header row.
type MissingHeadersError struct {
	Missing []string
}

func (e *MissingHeadersError) Error() string {
	return fmt.Sprintf("missing required headers: %s", strings.Join(e.Missing, ", "))
}

type Parser struct {
	filename string
}

func NewParser(filename string) *Parser {
	return &Parser{filename: filename}
}

// ParseDataset reads the CSV file into a dataset. Every record starts at
// Not Started. A short row is padded against the header; a long row has its
// extra cells dropped.
func (p *Parser) ParseDataset() (*models.Dataset, error) {
	if !strings.EqualFold(filepath.Ext(p.filename), ".csv") {
		return nil, ErrNotCSV
	}

	file, err := os.Open(p.filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return ReadDataset(file)
}

// ReadDataset decodes CSV content from r. Split out of ParseDataset so the
// HTTP upload handler can share the header validation.
func ReadDataset(r io.Reader) (*models.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	if missing := missingHeaders(headers); len(missing) > 0 {
		return nil, &MissingHeadersError{Missing: missing}
	}

	var records []*models.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		fields := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				fields[h] = row[i]
			} else {
				fields[h] = ""
			}
		}
		records = append(records, models.NewRecord(fields))
	}

	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	return models.NewDataset(headers, records), nil
}

// ParseTriplets decodes only the three required columns into the typed row
// struct via csvutil. Used by the check command.
func (p *Parser) ParseTriplets() ([]models.TripletRow, error) {
	if !strings.EqualFold(filepath.Ext(p.filename), ".csv") {
		return nil, ErrNotCSV
	}

	file, err := os.Open(p.filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	headers, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	if missing := missingHeaders(headers); len(missing) > 0 {
		return nil, &MissingHeadersError{Missing: missing}
	}

	decoder, err := csvutil.NewDecoder(reader, headers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV decoder: %w", err)
	}

	var rows []models.TripletRow
	if err := decoder.Decode(&rows); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	return rows, nil
}

func missingHeaders(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var missing []string
	for _, required := range models.RequiredHeaders {
		if !present[required] {
			missing = append(missing, required)
		}
	}
	return missing
}
