package cmd

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "triplet-uploader",
	Short: "A CLI tool for submitting asset triplet CSVs to an ingest endpoint",
	Long: `Triplet Uploader imports a CSV of asset triplets, lets you review and
edit the rows, submits each row to an HTTP ingest endpoint while tracking
per-row status, and exports the resulting table back to CSV.

Running without a subcommand starts the interactive TUI.`,
	RunE: runTUI,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tuiCmd)
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading it: %v", err)
	}

	if os.Getenv("UPLOADER_ENDPOINT") != "" {
		endpointURL = os.Getenv("UPLOADER_ENDPOINT")
	}
	if os.Getenv("UPLOADER_OUTPUT") != "" {
		outputFile = os.Getenv("UPLOADER_OUTPUT")
	}
	if os.Getenv("UPLOADER_NEST_KEYS") != "" {
		if v, err := strconv.ParseBool(os.Getenv("UPLOADER_NEST_KEYS")); err == nil {
			nestKeys = v
		}
	}
	if os.Getenv("UPLOADER_TIMEOUT") != "" {
		if v, err := strconv.Atoi(os.Getenv("UPLOADER_TIMEOUT")); err == nil {
			timeoutSeconds = v
		}
	}
}
