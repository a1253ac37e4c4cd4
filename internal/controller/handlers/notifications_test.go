package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"maintplane/internal/maintenance"
	"maintplane/internal/store"
	"maintplane/pkg/api"

	"github.com/google/uuid"
)

func TestNotifications_OwnItems(t *testing.T) {
	user := &store.User{ID: uuid.New()}
	svc := &mockService{notifyResp: []maintenance.Notification{
		{
			UserID:          user.ID,
			WorkflowID:      uuid.New(),
			AssetID:         uuid.New(),
			StepID:          uuid.New(),
			SequenceNo:      1,
			JobRoleID:       "technician",
			PlannedDate:     time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
			DaysUntilDue:    10,
			DaysUntilCutoff: 0,
			Urgent:          true,
		},
	}}
	h := New(svc, &mockStore{}, nil)

	req := withUser(httptest.NewRequest(http.MethodGet, "/notifications", nil), user)
	rr := httptest.NewRecorder()
	h.Notifications(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if svc.capturedFilter == nil || *svc.capturedFilter != user.ID {
		t.Errorf("filter = %v, want %s", svc.capturedFilter, user.ID)
	}
	var resp api.NotificationsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Notifications) != 1 || !resp.Notifications[0].Urgent || resp.Notifications[0].PlannedDate != "2024-07-01" {
		t.Errorf("unexpected notifications: %+v", resp.Notifications)
	}
}

func TestNotifications_All(t *testing.T) {
	tests := []struct {
		name           string
		user           *store.User
		expectedStatus int
		expectCall     bool
	}{
		{name: "Admin", user: &store.User{ID: uuid.New(), IsAdmin: true}, expectedStatus: http.StatusOK, expectCall: true},
		{name: "Non Admin", user: &store.User{ID: uuid.New()}, expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			h := New(svc, &mockStore{}, nil)

			req := withUser(httptest.NewRequest(http.MethodGet, "/notifications?all=true", nil), tt.user)
			rr := httptest.NewRecorder()
			h.Notifications(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.expectedStatus)
			}
			if svc.notifyCalled != tt.expectCall {
				t.Errorf("service called = %v, want %v", svc.notifyCalled, tt.expectCall)
			}
			if tt.expectCall && svc.capturedFilter != nil {
				t.Errorf("filter = %v, want nil", svc.capturedFilter)
			}
		})
	}
}

func TestNotifications_EmptyListIsArray(t *testing.T) {
	user := &store.User{ID: uuid.New()}
	h := New(&mockService{}, &mockStore{}, nil)

	req := withUser(httptest.NewRequest(http.MethodGet, "/notifications", nil), user)
	rr := httptest.NewRecorder()
	h.Notifications(rr, req)

	if got := rr.Body.String(); got != "{\"notifications\":[]}\n" {
		t.Errorf("body = %q", got)
	}
}
