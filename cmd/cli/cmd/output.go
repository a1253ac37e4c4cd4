package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func statusIcon(status string) string {
	switch status {
	case "COMPLETED", "APPROVED":
		return colorGreen + "✓" + colorReset
	case "CANCELLED", "REJECTED":
		return colorRed + "✗" + colorReset
	case "IN_PROGRESS", "ACTIVE":
		return colorYellow + "⏳" + colorReset
	case "PENDING", "QUEUED":
		return colorCyan + "◯" + colorReset
	default:
		return "•"
	}
}

func colorizeStatus(status string) string {
	icon := statusIcon(status)
	switch status {
	case "COMPLETED", "APPROVED":
		return icon + " " + colorGreen + status + colorReset
	case "CANCELLED", "REJECTED":
		return icon + " " + colorRed + status + colorReset
	case "IN_PROGRESS", "ACTIVE":
		return icon + " " + colorYellow + status + colorReset
	case "PENDING", "QUEUED":
		return icon + " " + colorCyan + status + colorReset
	default:
		return status
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("Mon, 02 Jan 2006 15:04:05 MST")
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

// printAPIError prints err, highlighting API errors.
func printAPIError(cmd *cobra.Command, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		cmd.Printf("%sError (%d):%s %s\n", colorRed, apiErr.StatusCode, colorReset, apiErr.Message)
		return
	}
	cmd.Printf("Error: %v\n", err)
}
