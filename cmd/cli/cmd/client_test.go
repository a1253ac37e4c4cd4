package cmd

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMaintClient_APIErrorParsesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"maintenance configuration missing","code":"422","kind":"configuration_missing"}`))
	}))
	defer server.Close()

	c := NewMaintClient(server.URL+"/", "token")
	_, err := c.GetWorkflow("wf-1")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity || apiErr.Kind != "configuration_missing" {
		t.Errorf("unexpected error: %+v", apiErr)
	}
	if apiErr.Message != "maintenance configuration missing" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestMaintClient_APIErrorPlainText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Invalid authorization token", http.StatusUnauthorized)
	}))
	defer server.Close()

	c := NewMaintClient(server.URL, "token")
	_, err := c.Notifications(false)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Message != "Invalid authorization token" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if apiErr.Error() != "API error (401): Invalid authorization token" {
		t.Errorf("Error() = %q", apiErr.Error())
	}
}

func TestMaintClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	c := NewMaintClient(server.URL, "token")
	if _, err := c.Generate(""); err == nil {
		t.Fatal("expected parse error")
	}
}
