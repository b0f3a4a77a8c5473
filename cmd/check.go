package cmd

import (
	"fmt"
	"log"
	"strings"

	"tripletuploader/internal/csv"
	"tripletuploader/internal/models"

	"github.com/spf13/cobra"
)

var checkFile string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a CSV locally without submitting anything",
	Long: `Check parses the CSV, verifies the required headers are present, and
reports which rows would be rejected as Data Incorrect before any network
call is made.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkFile, "csv", "c", "", "CSV file to check (required)")
	checkCmd.MarkFlagRequired("csv")
}

func runCheck(cmd *cobra.Command, args []string) error {
	parser := csv.NewParser(checkFile)

	triplets, err := parser.ParseTriplets()
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	invalid := 0
	for i, row := range triplets {
		var problems []string
		if strings.TrimSpace(row.TripletID) == "" {
			problems = append(problems, "empty Triplet Id")
		}
		if strings.TrimSpace(row.AssetID) == "" {
			problems = append(problems, "empty Asset Id")
		}
		if strings.TrimSpace(row.AssetType) == "" {
			problems = append(problems, "empty Asset Type")
		} else if !models.IsAllowedAssetType(row.AssetType) {
			problems = append(problems, fmt.Sprintf("asset type %q not in {%s}", row.AssetType, strings.Join(models.AllowedAssetTypes, ", ")))
		}

		if len(problems) > 0 {
			invalid++
			log.Printf("Row %d would be %s: %s", i+1, models.StatusDataIncorrect, strings.Join(problems, "; "))
		}
	}

	log.Printf("Checked %d rows: %d valid, %d would be %s",
		len(triplets), len(triplets)-invalid, invalid, models.StatusDataIncorrect)

	return nil
}
