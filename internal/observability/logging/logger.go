package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/kirillkom/loan-workbench/internal/core/domain"
)

func NewJSONLogger(service, level string) *slog.Logger {
	return New(os.Stdout, service, level)
}

// New builds a JSON logger writing to w, tagged with the service name.
func New(w io.Writer, service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With("service", service)
}

// ForEvent scopes a logger to one loan event.
func ForEvent(logger *slog.Logger, event domain.LoanEvent) *slog.Logger {
	attrs := []any{
		"event_id", event.ID,
		"loan_id", event.LoanID,
		"action", string(event.Action),
	}
	if event.DocumentID != "" {
		attrs = append(attrs, "document_id", event.DocumentID)
	}
	return logger.With(attrs...)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
