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

func TestNotificationsCommand(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		expectedQuery string
		expectedOut   []string
	}{
		{
			name:          "Own Items",
			args:          []string{"notifications"},
			expectedQuery: "",
			expectedOut:   []string{"wf-1 step 1 (technician)", "due 2024-07-01, 10 days"},
		},
		{
			name:          "All Items",
			args:          []string{"notifications", "--all"},
			expectedQuery: "all=true",
			expectedOut:   []string{"for user user-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()

			var gotQuery string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.RawQuery
				json.NewEncoder(w).Encode(api.NotificationsResponse{Notifications: []api.NotificationResponse{
					{
						UserID:            "user-1",
						WorkflowID:        "wf-1",
						AssetID:           "asset-1",
						MaintenanceTypeID: "pm",
						SequenceNo:        1,
						JobRoleID:         "technician",
						PlannedDate:       "2024-07-01",
						DaysUntilDue:      10,
						Urgent:            true,
					},
				}})
			}))
			defer server.Close()

			viper.Set("url", server.URL)
			viper.Set("token", "test-token")

			output := execute(t, tt.args...)

			if gotQuery != tt.expectedQuery {
				t.Errorf("query = %q, want %q", gotQuery, tt.expectedQuery)
			}
			for _, want := range tt.expectedOut {
				if !strings.Contains(output, want) {
					t.Errorf("expected %q in output, got: %s", want, output)
				}
			}
		})
	}
}

func TestNotificationsCommand_Empty(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"notifications":[]}`))
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "test-token")

	output := execute(t, "notifications")
	if !strings.Contains(output, "Nothing is waiting on you.") {
		t.Errorf("expected empty message, got: %s", output)
	}
}
