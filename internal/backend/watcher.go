package backend

import (
	"context"
	"sync"
	"time"

	"github.com/atomicstack/tab-mirror/internal/host"
)

// Kind represents the type of data emitted by the backend watcher.
type Kind int

const (
	// KindHost carries one host event.
	KindHost Kind = iota
	// KindResync asks for a full refresh as a drift backstop.
	KindResync
)

// Event conveys a host event or a resync tick.
type Event struct {
	Kind Kind
	Host host.Event
	Err  error
}

// Watcher forwards host events and, when configured, periodic resync ticks
// onto a single channel.
type Watcher struct {
	api      host.API
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup
}

// NewWatcher starts forwarding events from api. A resync interval of zero
// disables resync ticks.
func NewWatcher(api host.API, resync time.Duration) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		api:      api,
		interval: resync,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, 16),
	}

	w.startHostPump()
	if resync > 0 {
		w.startResyncTicker()
	}

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w
}

// Events returns a channel of backend events. It is closed once the host
// stream ends or the watcher is stopped.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop cancels the watcher.
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until all goroutines have exited and the events channel is
// closed. Call after Stop when a clean shutdown is required.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) startHostPump() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		// The resync ticker has no reason to outlive the host stream.
		defer w.cancel()
		src := w.api.Events()
		for {
			select {
			case <-w.ctx.Done():
				return
			case evt, ok := <-src:
				if !ok {
					return
				}
				if !w.emit(Event{Kind: KindHost, Host: evt}) {
					return
				}
			}
		}
	}()
}

func (w *Watcher) startResyncTicker() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				if !w.emit(Event{Kind: KindResync}) {
					return
				}
			}
		}
	}()
}

func (w *Watcher) emit(evt Event) bool {
	select {
	case <-w.ctx.Done():
		return false
	case w.events <- evt:
		return true
	}
}
