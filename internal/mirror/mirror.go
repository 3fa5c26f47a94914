// Package mirror is the window/tab store facade. It composes the snapshot,
// the bulk and drag selections, the refresh scheduler and the host API, and
// exposes the queries and commands the UI consumes.
//
// A Mirror is not safe for concurrent use. Every call, including event
// handling, must come from the goroutine that owns it.
package mirror

import (
	"context"
	"fmt"
	"time"

	"github.com/atomicstack/tab-mirror/internal/backend"
	"github.com/atomicstack/tab-mirror/internal/browser"
	"github.com/atomicstack/tab-mirror/internal/host"
	"github.com/atomicstack/tab-mirror/internal/logging/events"
	"github.com/atomicstack/tab-mirror/internal/reorder"
	"github.com/atomicstack/tab-mirror/internal/state"
)

// DefaultDebounce is the refresh coalescing window.
const DefaultDebounce = time.Second

// Mirror keeps a local copy of the host's windows and tabs in sync.
type Mirror struct {
	api     host.API
	store   *state.Store
	bulk    *state.Selection
	drag    *reorder.Coordinator
	refresh *backend.RefreshScheduler
	now     func() time.Time

	debounce  time.Duration
	storeOpts []state.Option
}

// Option configures a Mirror.
type Option func(*Mirror)

// WithClock replaces time.Now for the refresh scheduler.
func WithClock(now func() time.Time) Option {
	return func(m *Mirror) {
		if now != nil {
			m.now = now
		}
	}
}

// WithDebounce sets the refresh coalescing window.
func WithDebounce(d time.Duration) Option {
	return func(m *Mirror) {
		m.debounce = d
	}
}

// WithStoreOptions passes options through to the snapshot store.
func WithStoreOptions(opts ...state.Option) Option {
	return func(m *Mirror) {
		m.storeOpts = append(m.storeOpts, opts...)
	}
}

// New returns a mirror over api. Nothing is fetched until Refresh.
func New(api host.API, opts ...Option) *Mirror {
	m := &Mirror{api: api, now: time.Now, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(m)
	}
	storeOpts := append([]state.Option{state.WithSelfCheck(api.IsSelf)}, m.storeOpts...)
	m.store = state.NewStore(storeOpts...)
	m.bulk = state.NewSelection("tabs")
	m.store.Track(m.bulk)
	m.drag = reorder.New(m.store, api)
	m.refresh = backend.NewRefreshScheduler(m.debounce)
	return m
}

// Store returns the snapshot. Callers must not mutate windows or tabs.
func (m *Mirror) Store() *state.Store { return m.store }

// Selection returns the bulk-action selection.
func (m *Mirror) Selection() *state.Selection { return m.bulk }

// Reorder returns the drag coordinator.
func (m *Mirror) Reorder() *reorder.Coordinator { return m.drag }

// Scheduler returns the refresh scheduler.
func (m *Mirror) Scheduler() *backend.RefreshScheduler { return m.refresh }

func (m *Mirror) Windows() []*browser.Window { return m.store.Windows() }

func (m *Mirror) Tabs() []*browser.Tab { return m.store.Tabs() }

func (m *Mirror) TabCount() int { return m.store.TabCount() }

func (m *Mirror) Columns() []*browser.Column { return m.store.Columns() }

func (m *Mirror) LastFocusedWindow() *browser.Window { return m.store.LastFocusedWindow() }

// DuplicatedTabs returns every tab whose url is shown more than once.
func (m *Mirror) DuplicatedTabs() []*browser.Tab {
	return state.DuplicatedTabs(m.store.Tabs())
}

// URLCounts maps each url to its tab count.
func (m *Mirror) URLCounts() map[string]int {
	return state.URLCounts(m.store.Tabs())
}

// Refresh fetches the complete topology and replaces the snapshot.
func (m *Mirror) Refresh(ctx context.Context) error {
	windows, err := m.api.Windows(ctx)
	if err != nil {
		events.Refresh.Error(err)
		return fmt.Errorf("fetch windows: %w", err)
	}
	focused, err := m.api.LastFocusedWindowID(ctx)
	if err != nil {
		events.Refresh.Error(err)
		return fmt.Errorf("fetch focused window: %w", err)
	}
	m.store.Replace(windows, focused)
	return nil
}

// RequestFullRefresh asks for a debounced refresh. It fetches right away when
// the scheduler says so and otherwise leaves the refresh pending until
// FireDue.
func (m *Mirror) RequestFullRefresh(ctx context.Context, reason string) (backend.Decision, error) {
	decision := m.refresh.Request(m.now())
	events.Refresh.Request(reason, decision.String())
	if decision != backend.RefreshNow {
		return decision, nil
	}
	return decision, m.Refresh(ctx)
}

// RefreshDeadline returns when a deferred refresh becomes due.
func (m *Mirror) RefreshDeadline() (time.Time, bool) {
	return m.refresh.Deadline()
}

// FireDue runs the deferred refresh if its deadline has passed. It reports
// whether a refresh ran.
func (m *Mirror) FireDue(ctx context.Context) (bool, error) {
	if !m.refresh.Due(m.now()) {
		return false, nil
	}
	return true, m.Refresh(ctx)
}

// Suspend holds refreshes while a batch of local mutations is applied.
func (m *Mirror) Suspend() {
	m.refresh.Suspend()
	events.Refresh.Suspend()
}

// Resume cancels anything pending and refreshes once.
func (m *Mirror) Resume(ctx context.Context) error {
	m.refresh.Resume()
	events.Refresh.Resume()
	return m.Refresh(ctx)
}

// Resize changes the available rendering height.
func (m *Mirror) Resize(height int) bool {
	return m.store.Resize(height)
}

// hostFailed records err and asks for a refresh to repair any drift left by
// optimistic mutations.
func (m *Mirror) hostFailed(ctx context.Context, op string, err error) error {
	events.Action.Error(err)
	if _, rerr := m.RequestFullRefresh(ctx, "error"); rerr != nil {
		events.Refresh.Error(rerr)
	}
	return fmt.Errorf("%s: %w", op, err)
}
