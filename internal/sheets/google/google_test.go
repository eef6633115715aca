package google

import (
	"context"
	"os"
	"strings"
	"testing"

	"studiodesk/internal/core"
)

// clearCredentialEnv unsets every credential source and returns a restore func.
func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GOOGLE_SERVICE_ACCOUNT_JSON",
		"GOOGLE_SERVICE_ACCOUNT_FILE",
		"GOOGLE_APPLICATION_CREDENTIALS",
	} {
		old, had := os.LookupEnv(key)
		os.Unsetenv(key)
		t.Cleanup(func() {
			if had {
				os.Setenv(key, old)
			}
		})
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	clearCredentialEnv(t)

	_, err := New(context.Background(), "   ", "Ledger")
	if err == nil {
		t.Fatal("expected error for missing spreadsheet ID")
	}
	if err.Error() != "missing spreadsheet ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	clearCredentialEnv(t)

	_, err := New(context.Background(), "sheet-id", "Ledger")
	if err == nil {
		t.Fatal("expected error when no credential source is set")
	}
	if !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("expected missing credentials error, got: %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	clearCredentialEnv(t)
	os.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "/nonexistent/service-account.json")

	_, err := New(context.Background(), "sheet-id", "Ledger")
	if err == nil {
		t.Fatal("expected error for unreadable credentials file")
	}
	if !strings.Contains(err.Error(), "read service account file") {
		t.Errorf("expected read error, got: %v", err)
	}
}

func TestNew_InvalidCredentialsJSON(t *testing.T) {
	// Verifies that malformed credentials fail at construction rather than
	// on the first append.
	clearCredentialEnv(t)
	os.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "not-json")

	_, err := New(context.Background(), "sheet-id", "Ledger")
	if err == nil {
		t.Fatal("expected error with invalid credentials JSON")
	}
	if !strings.Contains(err.Error(), "create sheets service") {
		t.Errorf("expected sheets service error, got: %v", err)
	}
}

func TestAppend_WithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "sheet-id", sheetName: "Ledger"}

	_, err := c.Append(context.Background(), core.Transaction{ID: 1, CustomerName: "Ada"})
	if err == nil {
		t.Fatal("expected error when service is not initialized")
	}
	if !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("unexpected error: %v", err)
	}
}
