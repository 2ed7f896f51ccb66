package testing

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// TestContext returns a context with a reasonable timeout for tests.
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// RecordingLogger collects Printf output. It is safe for concurrent use.
type RecordingLogger struct {
	mu    sync.Mutex
	Lines []string
}

// Printf records the formatted message.
func (l *RecordingLogger) Printf(format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Lines = append(l.Lines, fmt.Sprintf(format, v...))
}

// Snapshot returns a copy of the recorded lines.
func (l *RecordingLogger) Snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.Lines...)
}
