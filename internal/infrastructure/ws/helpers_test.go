package ws

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dkozyar/parlor/internal/infrastructure/logging"
	"github.com/dkozyar/parlor/internal/infrastructure/metrics"
)

// fakeTransport records everything enqueued on it. Setting full simulates a
// consumer whose send buffer no longer accepts frames.
type fakeTransport struct {
	mu     sync.Mutex
	frames []*Message
	full   bool
	closed bool
}

func (f *fakeTransport) Enqueue(msg *Message) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return false
	}
	f.frames = append(f.frames, msg)
	return true
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) sent() []*Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Message, len(f.frames))
	copy(out, f.frames)
	return out
}

func (f *fakeTransport) byType(msgType string) []*Message {
	var out []*Message
	for _, m := range f.sent() {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

type nopLogger struct{}

func (nopLogger) Init() {}

func (nopLogger) Debug(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Debugf(string, ...any)                                                         {}
func (nopLogger) Info(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any)  {}
func (nopLogger) Infof(string, ...any)                                                          {}
func (nopLogger) Warn(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any)  {}
func (nopLogger) Warnf(string, ...any)                                                          {}
func (nopLogger) Error(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Errorf(string, ...any)                                                         {}
func (nopLogger) Fatal(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Fatalf(string, ...any)                                                         {}

func newTestMetrics() *metrics.Signaling {
	return metrics.NewSignaling(prometheus.NewRegistry())
}
