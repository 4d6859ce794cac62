package notify

import (
	"openhab_updater/internal/logger"
)

// Notifier delivers fire-and-forget user-visible feedback about update
// attempts. Delivery is best-effort and never awaited; failures to notify do
// not influence outcome reporting.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Success(message string) {
	if n.log != nil {
		n.log.Infow("update_notice", "message", message)
	}
}

func (n *LogNotifier) Error(message string) {
	if n.log != nil {
		n.log.Warnw("update_notice_error", "message", message)
	}
}

// Multi fans one notification out to several sinks.
type Multi []Notifier

func (m Multi) Success(message string) {
	for _, n := range m {
		n.Success(message)
	}
}

func (m Multi) Error(message string) {
	for _, n := range m {
		n.Error(message)
	}
}

// Nop discards notifications; used in tests and when feedback is disabled.
type Nop struct{}

func (Nop) Success(string) {}
func (Nop) Error(string)   {}
