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

func TestGenerateCommand_Success(t *testing.T) {
	resetViper()

	var got api.GenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/maintenance/generate" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("expected Bearer token, got: %s", r.Header.Get("Authorization"))
		}
		json.NewDecoder(r.Body).Decode(&got)

		assetID := "asset-9"
		json.NewEncoder(w).Encode(api.RunReportResponse{
			RunID:            "run-1",
			AsOf:             "2024-06-21",
			WorkflowsCreated: 2,
			Skipped:          5,
			SkipReasons:      map[string]int{"not_due": 4, "open_cycle": 1},
			Failed:           1,
			Failures:         []api.ItemFailure{{AssetTypeID: "type-1", AssetID: &assetID, Error: "boom"}},
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "test-token")

	output := execute(t, "generate", "--as-of", "2024-06-21")

	if got.AsOf != "2024-06-21" {
		t.Errorf("as_of = %q, want 2024-06-21", got.AsOf)
	}
	for _, want := range []string{"run-1", "Workflows created", "not_due: 4", "open_cycle: 1", "asset-9", "boom"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestGenerateCommand_MissingToken(t *testing.T) {
	resetViper()

	viper.Set("url", "http://localhost:6161")
	viper.Set("token", "")

	output := execute(t, "generate")
	if !strings.Contains(output, "API token not found") {
		t.Errorf("expected token error message, got: %s", output)
	}
}

func TestGenerateCommand_Forbidden(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(api.ErrorResponse{Error: "Administrator role required", Code: "403"})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "test-token")

	output := execute(t, "generate")
	if !strings.Contains(output, "Error (403)") || !strings.Contains(output, "Administrator role required") {
		t.Errorf("expected forbidden error in output, got: %s", output)
	}
}

func TestPreviewCommand(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/maintenance/preview" || r.URL.Query().Get("as_of") != "2024-06-01" {
			t.Errorf("unexpected request: %s", r.URL.String())
		}
		planned := "2024-07-01"
		json.NewEncoder(w).Encode(api.PreviewResponse{
			AsOf: "2024-06-01",
			Results: []api.EligibilityResponse{
				{AssetID: "asset-1", MaintenanceTypeID: "pm", Reason: "not_due", PlannedDate: &planned, DaysRemaining: 20},
				{AssetID: "asset-2", MaintenanceTypeID: "pm", Reason: "no_purchase_date"},
			},
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "test-token")

	output := execute(t, "preview", "--as-of", "2024-06-01")
	if !strings.Contains(output, "window opens in 20 days") {
		t.Errorf("expected days remaining in output, got: %s", output)
	}
	if !strings.Contains(output, "no_purchase_date") {
		t.Errorf("expected skip reason in output, got: %s", output)
	}
}
