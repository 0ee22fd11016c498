package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/kirillkom/loan-workbench/internal/core/domain"
)

func TestNewWritesJSONWithService(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "worker", "info")

	logger.Debug("hidden")
	logger.Info("checklist_refreshed", "missing", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected debug to be filtered, got %d lines", len(lines))
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["service"] != "worker" || entry["msg"] != "checklist_refreshed" || entry["missing"] != float64(2) {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestForEventAddsEventAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := ForEvent(New(&buf, "worker", "debug"), domain.LoanEvent{
		ID:     "evt-1",
		LoanID: "loan-1",
		Action: domain.ActionLoanUpdated,
	})

	logger.Info("refresh")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["event_id"] != "evt-1" || entry["loan_id"] != "loan-1" || entry["action"] != "loan.updated" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if _, ok := entry["document_id"]; ok {
		t.Fatalf("document_id must be omitted for loan-level events")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
