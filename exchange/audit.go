package exchange

import "log/slog"

// Event identifies the type of exchange action being logged.
type Event string

const (
	EventAuthSuccess     Event = "auth_success"
	EventAuthFailure     Event = "auth_failure"
	EventSessionRejected Event = "session_rejected"
	EventFileStored      Event = "file_stored"
	EventImportAck       Event = "import_ack"
	EventStorageFault    Event = "storage_fault"
)

// auditLogger wraps slog.Logger for structured exchange event logging.
type auditLogger struct {
	logger *slog.Logger
}

func newAuditLogger(logger *slog.Logger) *auditLogger {
	return &auditLogger{logger: logger.With("component", "exchange")}
}

func (al *auditLogger) event(event Event, attrs ...slog.Attr) {
	args := make([]any, 0, len(attrs)+1)
	args = append(args, slog.String("event", string(event)))
	for _, a := range attrs {
		args = append(args, a)
	}
	al.logger.Info("exchange", args...)
}

func (al *auditLogger) fault(event Event, err error, attrs ...slog.Attr) {
	args := make([]any, 0, len(attrs)+2)
	args = append(args, slog.String("event", string(event)), slog.Any("error", err))
	for _, a := range attrs {
		args = append(args, a)
	}
	al.logger.Error("exchange", args...)
}
