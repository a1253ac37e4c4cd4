package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"maintplane/pkg/api"

	"github.com/spf13/viper"
)

func TestScheduleCompleteCommand(t *testing.T) {
	resetViper()

	var got api.CompleteScheduleRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/schedules/ds-1/complete" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(api.DirectScheduleResponse{ID: "ds-1", AssetID: "asset-1", PlannedDate: "2024-07-01", Status: "COMPLETED"})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "test-token")

	output := execute(t, "schedule", "complete", "ds-1", "--actual-date", "2024-06-30")

	if got.ActualDate != "2024-06-30" {
		t.Errorf("actual_date = %q", got.ActualDate)
	}
	if !strings.Contains(output, "Direct Schedule") || !strings.Contains(output, "COMPLETED") {
		t.Errorf("unexpected output: %s", output)
	}
}

func TestScheduleCancelCommand(t *testing.T) {
	resetViper()

	var got api.CancelScheduleRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/schedules/ds-1/cancel" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(api.DirectScheduleResponse{ID: "ds-1", Status: "CANCELLED"})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "test-token")

	output := execute(t, "schedule", "cancel", "ds-1", "--reason", "sold")

	if got.Reason != "sold" {
		t.Errorf("reason = %q", got.Reason)
	}
	if !strings.Contains(output, "CANCELLED") {
		t.Errorf("unexpected output: %s", output)
	}
}

func TestScheduleCommand_Conflict(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(api.ErrorResponse{Error: "invalid transition: direct schedule is CANCELLED", Code: "409", Kind: "invalid_transition"})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "test-token")

	output := execute(t, "schedule", "complete", "ds-1")
	if !strings.Contains(output, "Error (409)") {
		t.Errorf("expected conflict error, got: %s", output)
	}
}
