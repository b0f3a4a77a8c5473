package cmd

import (
	"log"
	"time"

	"tripletuploader/internal/csv"
	"tripletuploader/internal/tui"
	"tripletuploader/internal/uploader"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive TUI (same as running without a command)",
	Long: `Start the Terminal User Interface: import a CSV, review and edit the
rows in a table, submit them one at a time while watching per-row status,
and export the result CSV.

Note: This is the same as running the program without any commands.`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVarP(&endpointURL, "endpoint", "e", uploader.DefaultEndpoint, "Ingest endpoint URL")
	tuiCmd.Flags().StringVarP(&outputFile, "output", "o", csv.DefaultExportName, "Result CSV file")
	tuiCmd.Flags().BoolVar(&nestKeys, "nest-keys", false, "Fold underscore-delimited keys into nested JSON objects")
	tuiCmd.Flags().IntVar(&timeoutSeconds, "timeout", 30, "Per-row request timeout in seconds")
}

func runTUI(cmd *cobra.Command, args []string) error {
	if endpointURL == "" {
		endpointURL = uploader.DefaultEndpoint
	}
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}

	model := tui.NewModel(tui.Config{
		Endpoint: endpointURL,
		Output:   outputFile,
		NestKeys: nestKeys,
		Timeout:  time.Duration(timeoutSeconds) * time.Second,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running TUI: %v", err)
	}

	return nil
}
