package cmd

import (
	"fmt"
	"time"

	"tripletuploader/internal/server"
	"tripletuploader/internal/uploader"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serveAddr string
	serveEnv  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the import/submit/export pipeline over HTTP",
	Long: `Serve starts an HTTP service with the same pipeline as the CLI:
upload a CSV, review and edit rows, submit them to the ingest endpoint,
and download the result CSV.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", ":8090", "Listen address")
	serveCmd.Flags().StringVar(&serveEnv, "env", "development", "Environment: development or production")
	serveCmd.Flags().StringVarP(&endpointURL, "endpoint", "e", uploader.DefaultEndpoint, "Ingest endpoint URL")
	serveCmd.Flags().BoolVar(&nestKeys, "nest-keys", false, "Fold underscore-delimited keys into nested JSON objects")
	serveCmd.Flags().IntVar(&timeoutSeconds, "timeout", 30, "Per-row request timeout in seconds")
}

func runServe(cmd *cobra.Command, args []string) error {
	var logger *zap.Logger
	var err error
	if serveEnv == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	client := uploader.NewClient(endpointURL, time.Duration(timeoutSeconds)*time.Second, nestKeys)
	submitter := uploader.NewSubmitter(client)

	srv := server.New(logger, submitter)
	if err := srv.Run(serveAddr); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}
