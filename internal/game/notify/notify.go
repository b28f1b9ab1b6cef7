// Package notify carries user-facing notifications out of the simulation
// core. The core treats the sink as fire-and-forget.
package notify

import "go.uber.org/zap"

// Severity classifies a notification for presentation.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier receives one-way notification events. Group keys let the
// presentation layer collapse repeats of the same event.
type Notifier interface {
	Notify(message string, severity Severity, group string)
}

// Func adapts a plain function to the Notifier interface.
type Func func(message string, severity Severity, group string)

func (f Func) Notify(message string, severity Severity, group string) {
	f(message, severity, group)
}

// Nop discards every notification.
func Nop() Notifier {
	return Func(func(string, Severity, string) {})
}

// Logger forwards notifications to a zap logger.
type Logger struct {
	log *zap.Logger
}

// NewLogger builds a Notifier that writes notifications to log.
func NewLogger(log *zap.Logger) *Logger {
	return &Logger{log: log}
}

func (l *Logger) Notify(message string, severity Severity, group string) {
	fields := []zap.Field{zap.String("severity", string(severity))}
	if group != "" {
		fields = append(fields, zap.String("group", group))
	}
	switch severity {
	case SeverityWarning:
		l.log.Warn(message, fields...)
	case SeverityError:
		l.log.Error(message, fields...)
	default:
		l.log.Info(message, fields...)
	}
}

// Recorder remembers notifications for assertions in tests.
type Recorder struct {
	Events []Event
}

// Event is one recorded notification.
type Event struct {
	Message  string
	Severity Severity
	Group    string
}

func (r *Recorder) Notify(message string, severity Severity, group string) {
	r.Events = append(r.Events, Event{Message: message, Severity: severity, Group: group})
}
