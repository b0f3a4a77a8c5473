package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Status is the submission-lifecycle tag attached to each record. The
// string values are user-facing: they show up in the review table and in
// the exported result CSV.
type Status string

const (
	StatusNotStarted    Status = "Not Started"
	StatusInProgress    Status = "In Progress"
	StatusSuccess       Status = "Success"
	StatusFailed        Status = "Failed"
	StatusDataIncorrect Status = "Data Incorrect"
)

// Terminal reports whether a record in this status will never change again
// within the current import.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusDataIncorrect
}

// RequiredHeaders are the columns every imported CSV must declare.
var RequiredHeaders = []string{"Triplet Id", "Asset Id", "Asset Type"}

// AllowedAssetTypes is the fixed set of accepted values for the
// "Asset Type" column.
var AllowedAssetTypes = []string{"SYSTEM", "APPLICATION", "DATABASE", "NETWORK", "STORAGE"}

func IsAllowedAssetType(value string) bool {
	for _, t := range AllowedAssetTypes {
		if value == t {
			return true
		}
	}
	return false
}

// Record is one parsed CSV row plus its status. Fields is keyed by column
// name; column order lives on the owning Dataset.
type Record struct {
	Fields map[string]string
	Status Status
}

func NewRecord(fields map[string]string) *Record {
	return &Record{
		Fields: fields,
		Status: StatusNotStarted,
	}
}

// Get returns the cell value for a column, or "" when absent.
func (r *Record) Get(column string) string {
	return r.Fields[column]
}

// Validate checks the record locally, before any network call: the three
// required fields must be non-empty and the asset type must be one of the
// allowed values.
func (r *Record) Validate() error {
	for _, h := range RequiredHeaders {
		if strings.TrimSpace(r.Fields[h]) == "" {
			return fmt.Errorf("required field %q is empty", h)
		}
	}
	if t := r.Fields["Asset Type"]; !IsAllowedAssetType(t) {
		return fmt.Errorf("asset type %q is not one of %s", t, strings.Join(AllowedAssetTypes, ", "))
	}
	return nil
}

// Dataset is the full in-memory collection of records for the current
// import. It is replaced wholesale on the next successful import and never
// persisted across runs.
type Dataset struct {
	ID      string
	Headers []string
	Records []*Record
}

func NewDataset(headers []string, records []*Record) *Dataset {
	return &Dataset{
		ID:      uuid.NewString(),
		Headers: headers,
		Records: records,
	}
}

func (d *Dataset) Empty() bool {
	return d == nil || len(d.Records) == 0
}

// HasColumn reports whether a column exists in the dataset's header row.
func (d *Dataset) HasColumn(column string) bool {
	for _, h := range d.Headers {
		if h == column {
			return true
		}
	}
	return false
}

// SetCell overwrites a single cell. It is the only mutation the review
// stage performs.
func (d *Dataset) SetCell(row int, column, value string) error {
	if row < 0 || row >= len(d.Records) {
		return fmt.Errorf("row %d out of range (dataset has %d rows)", row, len(d.Records))
	}
	if !d.HasColumn(column) {
		return fmt.Errorf("unknown column %q", column)
	}
	d.Records[row].Fields[column] = value
	return nil
}

// Tally counts records per status.
func (d *Dataset) Tally() map[Status]int {
	counts := make(map[Status]int)
	for _, r := range d.Records {
		counts[r.Status]++
	}
	return counts
}

// Settled reports whether every record has reached a terminal status.
func (d *Dataset) Settled() bool {
	for _, r := range d.Records {
		if !r.Status.Terminal() {
			return false
		}
	}
	return true
}

// TripletRow is the typed view of the three required columns, used by the
// check command for quick structural validation of an import candidate.
type TripletRow struct {
	TripletID string `csv:"Triplet Id" json:"triplet_id"`
	AssetID   string `csv:"Asset Id" json:"asset_id"`
	AssetType string `csv:"Asset Type" json:"asset_type"`
}
