package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"tripletuploader/internal/csv"
	"tripletuploader/internal/models"
	"tripletuploader/internal/uploader"

	"github.com/spf13/cobra"
)

var (
	csvFile        string
	endpointURL    string
	outputFile     string
	nestKeys       bool
	timeoutSeconds int
	dryRun         bool
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a CSV of asset triplets to the ingest endpoint",
	Long: `Submit parses the CSV, validates every row locally, posts each valid
row to the endpoint one at a time, and writes the result CSV with a status
column appended.`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVarP(&csvFile, "csv", "c", "", "CSV file to submit (required)")
	submitCmd.Flags().StringVarP(&endpointURL, "endpoint", "e", uploader.DefaultEndpoint, "Ingest endpoint URL")
	submitCmd.Flags().StringVarP(&outputFile, "output", "o", csv.DefaultExportName, "Result CSV file")
	submitCmd.Flags().BoolVar(&nestKeys, "nest-keys", false, "Fold underscore-delimited keys into nested JSON objects")
	submitCmd.Flags().IntVar(&timeoutSeconds, "timeout", 30, "Per-row request timeout in seconds")
	submitCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate rows locally without posting anything")

	submitCmd.MarkFlagRequired("csv")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	parser := csv.NewParser(csvFile)
	ds, err := parser.ParseDataset()
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	log.Printf("Parsed %d rows from %s", len(ds.Records), csvFile)

	var result uploader.SubmitResult
	if dryRun {
		result = uploader.ValidateDataset(ds, nil)
		log.Printf("Dry run: %d/%d rows would be rejected locally", result.DataIncorrect, result.TotalRows)
	} else {
		client := uploader.NewClient(endpointURL, time.Duration(timeoutSeconds)*time.Second, nestKeys)
		submitter := uploader.NewSubmitter(client)

		done := 0
		result = submitter.SubmitDataset(context.Background(), ds, func(p uploader.Progress) {
			if p.Status.Terminal() {
				done++
				if done%100 == 0 {
					log.Printf("Submitted %d/%d rows...", done, p.Total)
				}
			}
		})

		log.Printf("Submission finished: %d %s, %d %s, %d %s",
			result.Succeeded, models.StatusSuccess,
			result.Failed, models.StatusFailed,
			result.DataIncorrect, models.StatusDataIncorrect)
	}

	if err := csv.ExportFile(outputFile, ds); err != nil {
		return fmt.Errorf("failed to write result CSV: %w", err)
	}
	log.Printf("Result written to %s", outputFile)

	return nil
}
