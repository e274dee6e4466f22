// Package bioclient calls a remote bio proxy over HTTP. It implements
// biostate.BioGenerator so profile sessions can run against a proxy deployed
// elsewhere.
package bioclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"crimson-crm-be/pkg/biostate"
)

const generatePath = "/api/generate-bio"

type Client struct {
	baseURL string
	client  *http.Client
}

// New returns a client for the proxy at baseURL. timeout bounds the whole call
// and should sit a little above the proxy's own upstream timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Name       string `json:"name"`
	Occupation string `json:"occupation,omitempty"`
	Employer   string `json:"employer,omitempty"`
	Location   string `json:"location,omitempty"`
	Email      string `json:"email,omitempty"`
	Industry   string `json:"industry,omitempty"`
}

type generateResponse struct {
	Success   bool                `json:"success"`
	Headlines []string            `json:"headlines"`
	Citations []biostate.Citation `json:"citations"`
	Model     string              `json:"model"`
	Error     string              `json:"error"`
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("bio proxy returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("bio proxy returned status %d: %s", e.StatusCode, e.Message)
}

func (c *Client) GenerateBio(ctx context.Context, donor biostate.Donor) (*biostate.GeneratedBio, error) {
	body, err := json.Marshal(generateRequest{
		Name:       donor.Name,
		Occupation: donor.Occupation,
		Employer:   donor.Employer,
		Location:   donor.Location,
		Email:      donor.Email,
		Industry:   donor.Industry,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out generateResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: out.Error}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if !out.Success {
		return nil, fmt.Errorf("bio proxy reported failure: %s", out.Error)
	}

	return &biostate.GeneratedBio{
		Headlines: out.Headlines,
		Citations: out.Citations,
		Model:     out.Model,
	}, nil
}
