package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// WorkerLogger is a lightweight, per-worker structured logger used by the
// parallel driver (internal/driver) to report block progress and
// cancellation without going through the heavier zap core used at the
// engine's call boundary (see logger.go). It is deliberately cheap to
// construct: the driver creates one for every block it runs, tagged with
// the id of the worker running that block.
type WorkerLogger struct {
	logger zerolog.Logger
}

// NewWorkerLogger creates a WorkerLogger tagged with the given component
// name (e.g. "build", "query", "diversify") and worker index.
func NewWorkerLogger(component string, worker int) WorkerLogger {
	return WorkerLogger{
		logger: zerolog.New(os.Stdout).With().
			Timestamp().
			Str("component", component).
			Int("worker", worker).
			Logger(),
	}
}

// Debug logs a debug-level message with optional structured fields.
func (l WorkerLogger) Debug(msg string, fields map[string]any) {
	l.event(l.logger.Debug(), fields).Msg(msg)
}

// Info logs an info-level message with optional structured fields.
func (l WorkerLogger) Info(msg string, fields map[string]any) {
	l.event(l.logger.Info(), fields).Msg(msg)
}

// Warn logs a warn-level message with optional structured fields.
func (l WorkerLogger) Warn(msg string, fields map[string]any) {
	l.event(l.logger.Warn(), fields).Msg(msg)
}

// Error logs an error-level message with optional structured fields.
func (l WorkerLogger) Error(msg string, fields map[string]any) {
	l.event(l.logger.Error(), fields).Msg(msg)
}

func (l WorkerLogger) event(e *zerolog.Event, fields map[string]any) *zerolog.Event {
	if len(fields) > 0 {
		e = e.Fields(fields)
	}
	return e
}
