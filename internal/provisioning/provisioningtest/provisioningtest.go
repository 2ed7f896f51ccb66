// Package provisioningtest provides helpers for testing run phases.
package provisioningtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/imamik/cephrig/internal/cluster"
	"github.com/imamik/cephrig/internal/config"
	"github.com/imamik/cephrig/internal/provisioning"
)

// Observer records messages and events. It is safe for concurrent use.
type Observer struct {
	mu       sync.Mutex
	messages []string
	events   []provisioning.Event
}

// NewObserver returns an empty recording observer.
func NewObserver() *Observer {
	return &Observer{}
}

// Printf implements provisioning.Logger.
func (o *Observer) Printf(format string, v ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, fmt.Sprintf(format, v...))
}

// Event implements provisioning.Observer.
func (o *Observer) Event(event provisioning.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

// Progress implements provisioning.Observer.
func (o *Observer) Progress(phase string, current, total int) {
	o.Event(provisioning.Event{
		Type:    provisioning.EventProgress,
		Phase:   phase,
		Message: fmt.Sprintf("%d/%d", current, total),
	})
}

// WithFields implements provisioning.Observer. Records land in the parent.
func (o *Observer) WithFields(map[string]string) provisioning.Observer {
	return o
}

// Messages returns the formatted Printf output.
func (o *Observer) Messages() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.messages...)
}

// Events returns the recorded events of type t, or all events when t is
// empty.
func (o *Observer) Events(t provisioning.EventType) []provisioning.Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []provisioning.Event
	for _, e := range o.events {
		if t == "" || e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// NewContext returns a run context recording into a fresh Observer.
func NewContext(ctx context.Context, cfg *config.Config, c *cluster.Cluster) (*provisioning.Context, *Observer) {
	observer := NewObserver()
	pctx := provisioning.NewContext(ctx, cfg, c).WithObserver(observer)
	return pctx, observer
}
