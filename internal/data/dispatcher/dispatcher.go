package dispatcher

import (
	"context"

	"github.com/atomicstack/tab-mirror/internal/backend"
	"github.com/atomicstack/tab-mirror/internal/host"
	"github.com/atomicstack/tab-mirror/internal/mirror"
)

// Result reports what one event changed.
type Result struct {
	WindowsUpdated   bool
	FocusChanged     bool
	RefreshRequested bool
	// Refreshed is set when the request fetched right away.
	Refreshed bool
	Err       error
}

type Dispatcher struct {
	mirror *mirror.Mirror
}

func New(m *mirror.Mirror) *Dispatcher {
	return &Dispatcher{mirror: m}
}

// Handle applies evt to the mirror. Partial events patch the snapshot in
// place; structural ones and resync ticks request a full refresh.
func (d *Dispatcher) Handle(ctx context.Context, evt backend.Event) Result {
	var res Result
	if evt.Err != nil {
		res.Err = evt.Err
		return res
	}
	switch evt.Kind {
	case backend.KindResync:
		return d.refresh(ctx, "resync")
	case backend.KindHost:
	default:
		return res
	}

	store := d.mirror.Store()
	he := evt.Host
	if he.Kind.Structural() {
		return d.refresh(ctx, he.Kind.String())
	}
	switch he.Kind {
	case host.FocusChanged:
		res.FocusChanged = store.OnFocusChanged(he.WindowID)
	case host.TabCreated:
		store.OnCreated(he.Tab)
		res.WindowsUpdated = true
	case host.TabUpdated:
		res.WindowsUpdated = store.OnUpdated(he.TabID, he.Patch)
	case host.TabActivated:
		res.WindowsUpdated = store.OnActivated(he.TabID, he.WindowID)
		res.FocusChanged = true
	case host.TabRemoved:
		res.WindowsUpdated = store.OnRemoved(he.TabID, he.WindowID)
	}
	return res
}

func (d *Dispatcher) refresh(ctx context.Context, reason string) Result {
	decision, err := d.mirror.RequestFullRefresh(ctx, reason)
	res := Result{RefreshRequested: true, Err: err}
	if decision == backend.RefreshNow && err == nil {
		res.Refreshed = true
		res.WindowsUpdated = true
	}
	return res
}
