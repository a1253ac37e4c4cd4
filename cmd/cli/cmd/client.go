package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"maintplane/pkg/api"
)

// MaintClient handles API calls to the maintplane controller.
type MaintClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewMaintClient creates a new client with the given base URL and token.
func NewMaintClient(baseURL, token string) *MaintClient {
	return &MaintClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
	Kind       string
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("API error (%d, %s): %s", e.StatusCode, e.Kind, e.Message)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

func newAPIError(status int, body []byte) *APIError {
	var resp api.ErrorResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error != "" {
		return &APIError{StatusCode: status, Message: resp.Error, Kind: resp.Kind}
	}
	return &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
}

// do sends an authenticated request and decodes a 200 response into out.
func (c *MaintClient) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.Token))
	httpReq.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return newAPIError(resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Generate sends POST /maintenance/generate to run eligibility as of asOf (empty for today).
func (c *MaintClient) Generate(asOf string) (*api.RunReportResponse, error) {
	var result api.RunReportResponse
	if err := c.do(http.MethodPost, "/maintenance/generate", api.GenerateRequest{AsOf: asOf}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Preview sends GET /maintenance/preview.
func (c *MaintClient) Preview(asOf string) (*api.PreviewResponse, error) {
	path := "/maintenance/preview"
	if asOf != "" {
		path += "?as_of=" + url.QueryEscape(asOf)
	}
	var result api.PreviewResponse
	if err := c.do(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetWorkflow sends GET /workflows/{id}.
func (c *MaintClient) GetWorkflow(workflowID string) (*api.WorkflowResponse, error) {
	var result api.WorkflowResponse
	if err := c.do(http.MethodGet, "/workflows/"+url.PathEscape(workflowID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// History sends GET /workflows/{id}/history.
func (c *MaintClient) History(workflowID string) ([]api.WorkflowEventResponse, error) {
	var result api.HistoryResponse
	if err := c.do(http.MethodGet, "/workflows/"+url.PathEscape(workflowID)+"/history", nil, &result); err != nil {
		return nil, err
	}
	return result.Events, nil
}

// Approve sends POST /workflows/{id}/approve.
func (c *MaintClient) Approve(workflowID string, req api.ApproveRequest) (*api.DecisionResponse, error) {
	var result api.DecisionResponse
	if err := c.do(http.MethodPost, "/workflows/"+url.PathEscape(workflowID)+"/approve", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reject sends POST /workflows/{id}/reject.
func (c *MaintClient) Reject(workflowID string, req api.RejectRequest) (*api.DecisionResponse, error) {
	var result api.DecisionResponse
	if err := c.do(http.MethodPost, "/workflows/"+url.PathEscape(workflowID)+"/reject", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Notifications sends GET /notifications. all requires an administrator key.
func (c *MaintClient) Notifications(all bool) ([]api.NotificationResponse, error) {
	path := "/notifications"
	if all {
		path += "?all=true"
	}
	var result api.NotificationsResponse
	if err := c.do(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Notifications, nil
}

// CompleteSchedule sends POST /schedules/{id}/complete.
func (c *MaintClient) CompleteSchedule(scheduleID string, req api.CompleteScheduleRequest) (*api.DirectScheduleResponse, error) {
	var result api.DirectScheduleResponse
	if err := c.do(http.MethodPost, "/schedules/"+url.PathEscape(scheduleID)+"/complete", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelSchedule sends POST /schedules/{id}/cancel.
func (c *MaintClient) CancelSchedule(scheduleID string, req api.CancelScheduleRequest) (*api.DirectScheduleResponse, error) {
	var result api.DirectScheduleResponse
	if err := c.do(http.MethodPost, "/schedules/"+url.PathEscape(scheduleID)+"/cancel", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
