package core

import (
	"sync"

	"go.uber.org/zap"
)

// Level classifies a notification for display.
type Level string

// Notification levels.
const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notification is a transient user-facing message raised by the service.
type Notification struct {
	Level   Level  `json:"type"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
}

// Notifier receives notifications. Implementations must be safe for concurrent
// use because save failures arrive from the saver goroutine.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notification) { f(n) }

// LogNotifier writes notifications to a zap logger.
type LogNotifier struct {
	Logger *zap.Logger
}

// Notify logs n at a level matching its kind.
func (l LogNotifier) Notify(n Notification) {
	logger := l.Logger
	if logger == nil {
		return
	}
	fields := []zap.Field{zap.String("type", string(n.Level))}
	if n.Title != "" {
		fields = append(fields, zap.String("title", n.Title))
	}
	if n.Level == LevelError {
		logger.Error(n.Message, fields...)
		return
	}
	logger.Info(n.Message, fields...)
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu   sync.Mutex
	seen []Notification
}

// Notify appends n.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, n)
}

// Notifications returns a copy of everything recorded so far.
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.seen...)
}

type multiNotifier []Notifier

func (m multiNotifier) Notify(n Notification) {
	for _, target := range m {
		target.Notify(n)
	}
}
