package google

import (
	"context"
	"strings"
	"testing"
	"time"

	"pondo/internal/core"
	ports "pondo/internal/sheets"
)

func TestNewFromEnvRequiresSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatalf("expected error without spreadsheet id")
	}
	if !strings.Contains(err.Error(), "GOOGLE_SPREADSHEET_ID") {
		t.Fatalf("error should name the missing variable, got %v", err)
	}
}

func TestNewFromEnvRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "sheet-id")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatalf("expected error without credentials")
	}
	if !strings.Contains(err.Error(), "service account") {
		t.Fatalf("error should mention credentials, got %v", err)
	}
}

func TestAppendWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "x", activitySheet: "Activity"}
	row := ports.ActivityRow{
		Timestamp: time.Now(),
		Op:        "create",
		Kind:      core.KindExpense,
		ID:        1,
		Username:  "ana",
	}
	if _, err := c.Append(context.Background(), row); err == nil {
		t.Fatalf("expected error when service is not initialized")
	}
}
