package notifier

import (
	"log/slog"
	"sync"
)

// Notifier is the notification port injected into services in place of a
// UI toast layer: recoverable failures surface through it instead of
// propagating as errors.
type Notifier interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// SlogNotifier forwards notifications to the structured log.
type SlogNotifier struct {
	log *slog.Logger
}

func NewSlog(log *slog.Logger) *SlogNotifier {
	return &SlogNotifier{log: log}
}

func (n *SlogNotifier) Info(msg string)  { n.log.Info(msg, slog.String("channel", "notify")) }
func (n *SlogNotifier) Warn(msg string)  { n.log.Warn(msg, slog.String("channel", "notify")) }
func (n *SlogNotifier) Error(msg string) { n.log.Error(msg, slog.String("channel", "notify")) }

// Recorder captures notifications for tests.
type Recorder struct {
	mu       sync.Mutex
	Infos    []string
	Warnings []string
	Errors   []string
}

func (r *Recorder) Info(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Infos = append(r.Infos, msg)
}

func (r *Recorder) Warn(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, msg)
}

func (r *Recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, msg)
}
