package uploader

import (
	"context"
	"log"

	"tripletuploader/internal/models"
)

// SubmitResult tallies the terminal statuses after a full pass over the
// dataset.
type SubmitResult struct {
	TotalRows     int
	Succeeded     int
	Failed        int
	DataIncorrect int
}

// Progress describes one status transition during submission.
type Progress struct {
	Index  int
	Total  int
	Status models.Status
}

// Submitter drives the per-row state machine:
//
//	Not Started -> In Progress -> {Success, Failed}
//	Not Started -> Data Incorrect (local validation, no network call)
//
// Rows are processed strictly sequentially, one in-flight request at a
// time, and a failed row never stops the remaining rows.
type Submitter struct {
	client *Client
}

func NewSubmitter(client *Client) *Submitter {
	return &Submitter{client: client}
}

// SubmitDataset runs every record through the state machine. notify, when
// non-nil, is called after each status transition (including the transient
// In Progress) so callers can render progress.
func (s *Submitter) SubmitDataset(ctx context.Context, ds *models.Dataset, notify func(Progress)) SubmitResult {
	result := SubmitResult{TotalRows: len(ds.Records)}

	report := func(i int, status models.Status) {
		if notify != nil {
			notify(Progress{Index: i, Total: len(ds.Records), Status: status})
		}
	}

	for i, rec := range ds.Records {
		if err := rec.Validate(); err != nil {
			rec.Status = models.StatusDataIncorrect
			result.DataIncorrect++
			log.Printf("Row %d not submitted: %v", i+1, err)
			report(i, rec.Status)
			continue
		}

		rec.Status = models.StatusInProgress
		report(i, rec.Status)

		if err := s.client.SubmitRow(ctx, rec, ds.Headers); err != nil {
			rec.Status = models.StatusFailed
			result.Failed++
			log.Printf("Row %d failed: %v", i+1, err)
		} else {
			rec.Status = models.StatusSuccess
			result.Succeeded++
		}
		report(i, rec.Status)
	}

	return result
}

// ValidateDataset runs only the local validation pass, marking invalid rows
// Data Incorrect without touching the network. Used by dry runs and the
// check command.
func ValidateDataset(ds *models.Dataset, notify func(Progress)) SubmitResult {
	result := SubmitResult{TotalRows: len(ds.Records)}

	for i, rec := range ds.Records {
		if err := rec.Validate(); err != nil {
			rec.Status = models.StatusDataIncorrect
			result.DataIncorrect++
			log.Printf("Row %d invalid: %v", i+1, err)
			if notify != nil {
				notify(Progress{Index: i, Total: len(ds.Records), Status: rec.Status})
			}
		}
	}

	return result
}
