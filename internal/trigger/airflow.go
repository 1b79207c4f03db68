// Package trigger starts retraining runs through the workflow scheduler's
// REST API when the drift pipeline detects distribution shift.
package trigger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/moseskim1027/visionops-defect-detection/internal/drift"
	"github.com/moseskim1027/visionops-defect-detection/internal/httputil"
	"github.com/moseskim1027/visionops-defect-detection/internal/monitoring"
)

// DefaultDagID is the training DAG fired on drift.
const DefaultDagID = "training_pipeline"

// Client triggers DAG runs against the Airflow stable REST API.
type Client struct {
	HTTPClient httputil.Doer
	BaseURL    string
	DagID      string
	Username   string
	Password   string
}

// NewClient creates a trigger client. httpClient may be nil, in which case
// a default client with a request timeout is used. dagID may be empty to
// use DefaultDagID.
func NewClient(httpClient httputil.Doer, baseURL, dagID string) *Client {
	if httpClient == nil {
		httpClient = httputil.DefaultClient()
	}
	if dagID == "" {
		dagID = DefaultDagID
	}
	return &Client{
		HTTPClient: httpClient,
		BaseURL:    baseURL,
		DagID:      dagID,
	}
}

// dagRunRequest is the POST body for /api/v1/dags/{dag_id}/dagRuns.
type dagRunRequest struct {
	DagRunID string                 `json:"dag_run_id"`
	Conf     map[string]interface{} `json:"conf,omitempty"`
}

type dagRunResponse struct {
	DagRunID string `json:"dag_run_id"`
	State    string `json:"state"`
}

// TriggerRetraining queues exactly one training run for the given report.
// The DAG run ID is derived from the report's run ID, so retrying with the
// same report cannot queue a second run: the scheduler answers 409 for a
// duplicate, which is treated as success. Any other failure is returned so
// callers can distinguish "trigger failed" from "no retraining needed".
func (c *Client) TriggerRetraining(ctx context.Context, report *drift.Report) (string, error) {
	dagRunID := "drift-" + report.RunID

	body, err := json.Marshal(dagRunRequest{
		DagRunID: dagRunID,
		Conf: map[string]interface{}{
			"reason":           "drift",
			"drift_share":      report.DriftShare,
			"drifted_features": report.DriftedFeatures,
			"report_run_id":    report.RunID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encoding dag run request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/dags/%s/dagRuns", c.BaseURL, c.DagID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating dag run request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Username != "" {
		req.SetBasicAuth(c.Username, c.Password)
	}

	monitoring.Logf("trigger: queueing %s run %s", c.DagID, dagRunID)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling scheduler: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		// The run already exists; an earlier attempt for this report won.
		monitoring.Logf("trigger: run %s already queued", dagRunID)
		return dagRunID, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("scheduler returned %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	var parsed dagRunResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		// The run was accepted; a malformed body only costs us the echo.
		monitoring.Logf("trigger: could not decode scheduler response: %v", err)
		return dagRunID, nil
	}
	if parsed.DagRunID == "" {
		return dagRunID, nil
	}
	return parsed.DagRunID, nil
}
