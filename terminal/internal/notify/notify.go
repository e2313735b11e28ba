// Package notify is the channel user facing messages go through.
package notify

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhamir14/restaurant/internal/log"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

type Notifier interface {
	Notify(c context.Context, message string, severity Severity)
}

// LogNotifier prints notifications through a zerolog console writer.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(w io.Writer) *LogNotifier {
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	return &LogNotifier{logger: zerolog.New(output).With().Timestamp().Logger()}
}

func (n *LogNotifier) Notify(c context.Context, message string, severity Severity) {
	event := n.logger.Info()
	if severity == SeverityError {
		event = n.logger.Error()
	}
	event.Ctx(c).Str(log.KeySeverity, string(severity)).Msg(message)
}

type Notification struct {
	Message  string
	Severity Severity
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
}

func (r *Recorder) Notify(_ context.Context, message string, severity Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, Notification{Message: message, Severity: severity})
}

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification{}, r.notifications...)
}

func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notifications) == 0 {
		return Notification{}, false
	}
	return r.notifications[len(r.notifications)-1], true
}
