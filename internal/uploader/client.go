package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tripletuploader/internal/models"

	"github.com/hashicorp/go-retryablehttp"
)

// DefaultEndpoint is where rows are posted when no endpoint is configured.
const DefaultEndpoint = "http://localhost:8080/api/triplets"

// DefaultTimeout bounds a single row submission.
const DefaultTimeout = 30 * time.Second

// Client posts one row at a time to the ingest endpoint. Retries are
// disabled: a failed row stays failed and the pipeline moves on.
type Client struct {
	httpClient *retryablehttp.Client
	endpoint   string
	nestKeys   bool
}

func NewClient(endpoint string, timeout time.Duration, nestKeys bool) *Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 0
	c.Logger = nil
	c.HTTPClient.Timeout = timeout

	return &Client{
		httpClient: c,
		endpoint:   endpoint,
		nestKeys:   nestKeys,
	}
}

// SubmitRow posts a single record's business fields as JSON. Any non-2xx
// response or transport error is returned as an error; the caller maps it
// to the Failed status.
func (c *Client) SubmitRow(ctx context.Context, rec *models.Record, headers []string) error {
	payload := BuildPayload(rec, headers, c.nestKeys)
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}

	req, err := retryablehttp.NewRequest(http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to post row: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return ensureSuccessStatusCode(resp)
}

func ensureSuccessStatusCode(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("endpoint responded %s", resp.Status)
	}
	return nil
}
