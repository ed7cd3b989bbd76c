// Package testutil holds fixtures shared by the service and storage tests.
package testutil

import (
	"io"
	"log/slog"
)

// NopLogger returns a logger that drops every record.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
