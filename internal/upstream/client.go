package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"curie-dashboard/pkg"
)

// Client fetches raw patient records from an external record service
// exposing GET {base}/api/patient/{id}. Any transport, status or decode
// problem is reported as a fetch failure; partial field absence inside a
// well-formed record is legal and handled by the normalizer.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient builds a record client with a bounded request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// FetchRecord retrieves and decodes the record for one patient.
func (c *Client) FetchRecord(ctx context.Context, patientID string) (*pkg.PatientRecord, error) {
	url := c.BaseURL + "/api/patient/" + patientID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("patient record request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("patient record error: status %d, body: %s", resp.StatusCode, excerpt(body))
	}

	var record pkg.PatientRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &record, nil
}

// excerpt truncates a response body for error messages.
func excerpt(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
