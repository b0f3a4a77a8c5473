package csv

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"tripletuploader/internal/models"

	"github.com/stretchr/testify/assert"
)

func buildDataset(t *testing.T) *models.Dataset {
	t.Helper()
	headers := []string{"Triplet Id", "Asset Id", "Asset Type"}
	records := []*models.Record{
		models.NewRecord(map[string]string{"Triplet Id": "1", "Asset Id": "101", "Asset Type": "SYSTEM"}),
		models.NewRecord(map[string]string{"Triplet Id": "2", "Asset Id": "102", "Asset Type": "DATABASE"}),
	}
	records[0].Status = models.StatusSuccess
	records[1].Status = models.StatusFailed
	return models.NewDataset(headers, records)
}

func TestWriteDataset(t *testing.T) {
	ds := buildDataset(t)

	var buf bytes.Buffer
	assert.NoError(t, WriteDataset(&buf, ds))

	rows, err := csv.NewReader(&buf).ReadAll()
	assert.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Triplet Id", "Asset Id", "Asset Type", "Status"},
		{"1", "101", "SYSTEM", "Success"},
		{"2", "102", "DATABASE", "Failed"},
	}, rows)
}

func TestWriteDatasetEscapesSpecialCharacters(t *testing.T) {
	headers := []string{"Triplet Id", "Asset Id", "Asset Type"}
	rec := models.NewRecord(map[string]string{
		"Triplet Id": `a,b`,
		"Asset Id":   `say "hi"`,
		"Asset Type": "SYSTEM",
	})
	ds := models.NewDataset(headers, []*models.Record{rec})

	var buf bytes.Buffer
	assert.NoError(t, WriteDataset(&buf, ds))

	// Round-trips through a CSV reader without corruption.
	rows, err := csv.NewReader(&buf).ReadAll()
	assert.NoError(t, err)
	assert.Equal(t, `a,b`, rows[1][0])
	assert.Equal(t, `say "hi"`, rows[1][1])
}

func TestExportFile(t *testing.T) {
	ds := buildDataset(t)
	path := filepath.Join(t.TempDir(), "out", "result.csv")

	assert.NoError(t, ExportFile(path, ds))

	content, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Contains(t, string(content), "Status")
	assert.Contains(t, string(content), "Success")
}
