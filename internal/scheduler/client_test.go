package scheduler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"maintplane/internal/logger"
	"maintplane/pkg/api"
)

func TestClient_Generate(t *testing.T) {
	var gotAuth, gotRequestID, gotPath, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotPath = r.URL.Path
		gotMethod = r.Method
		json.NewEncoder(w).Encode(api.RunReportResponse{RunID: "run-7", AsOf: "2024-06-21", WorkflowsCreated: 2})
	}))
	defer server.Close()

	c := NewClient(server.URL+"/", "secret", time.Second)
	ctx := logger.WithRequestID(context.Background(), "req-1")

	report, err := c.Generate(ctx)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if report.RunID != "run-7" || report.WorkflowsCreated != 2 {
		t.Errorf("report = %+v", report)
	}
	if gotMethod != http.MethodPost || gotPath != "/internal/maintenance/generate" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotRequestID != "req-1" {
		t.Errorf("X-Request-ID = %q, want req-1", gotRequestID)
	}
}

func TestClient_Generate_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Invalid authorization token", http.StatusUnauthorized)
	}))
	defer server.Close()

	c := NewClient(server.URL, "wrong", time.Second)
	_, err := c.Generate(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "Invalid authorization token") {
		t.Errorf("error = %v", err)
	}
}

func TestClient_Generate_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	c := NewClient(server.URL, "secret", time.Second)
	if _, err := c.Generate(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}
