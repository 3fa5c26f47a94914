// Package memory implements host.API as an in-process simulated browser. It
// keeps its own windows and tabs, applies commands to them and reports every
// change on the event stream the way a real browser would.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/atomicstack/tab-mirror/internal/browser"
	"github.com/atomicstack/tab-mirror/internal/host"
)

var (
	ErrNoTab    = errors.New("memory: no such tab")
	ErrNoWindow = errors.New("memory: no such window")
)

const eventBuffer = 1024

// Browser is a simulated host browser. It is safe for concurrent use.
type Browser struct {
	mu         sync.Mutex
	windows    []*browser.Window
	nextTab    int
	nextWindow int
	focused    int
	self       int
	closed     bool
	failures   map[string]error

	events  chan host.Event
	dropped int
	fetches int
}

// New returns an empty simulated browser.
func New() *Browser {
	return &Browser{
		nextTab:    1,
		nextWindow: 1,
		focused:    host.NoWindow,
		self:       host.NoWindow,
		failures:   map[string]error{},
		events:     make(chan host.Event, eventBuffer),
	}
}

var _ host.API = (*Browser)(nil)

// Events implements host.API.
func (b *Browser) Events() <-chan host.Event {
	return b.events
}

// Close stops event delivery. Further commands return host.ErrClosed.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	close(b.events)
	return nil
}

// Fail makes every later call of op return err until cleared with a nil err.
// Ops are the API method names, e.g. "MoveTabs".
func (b *Browser) Fail(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.failures, op)
		return
	}
	b.failures[op] = err
}

// Fetches reports how many times Windows has been called.
func (b *Browser) Fetches() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fetches
}

// Dropped reports how many events were discarded because nobody drained the
// stream.
func (b *Browser) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// SetSelf marks windowID as this process's own window.
func (b *Browser) SetSelf(windowID int) {
	b.mu.Lock()
	b.self = windowID
	b.mu.Unlock()
}

// IsSelf implements host.API.
func (b *Browser) IsSelf(windowID int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return windowID != host.NoWindow && windowID == b.self
}

// Windows implements host.API.
func (b *Browser) Windows(ctx context.Context) ([]browser.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(ctx, "Windows"); err != nil {
		return nil, err
	}
	b.fetches++
	out := make([]browser.Window, 0, len(b.windows))
	for _, w := range b.windows {
		dup := w.Clone()
		dup.Focused = w.ID == b.focused
		out = append(out, *dup)
	}
	return out, nil
}

// Tab implements host.API.
func (b *Browser) Tab(ctx context.Context, id int) (browser.Tab, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(ctx, "Tab"); err != nil {
		return browser.Tab{}, err
	}
	_, tab := b.findTab(id)
	if tab == nil {
		return browser.Tab{}, fmt.Errorf("tab %d: %w", id, ErrNoTab)
	}
	return *tab, nil
}

// LastFocusedWindowID implements host.API.
func (b *Browser) LastFocusedWindowID(ctx context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(ctx, "LastFocusedWindowID"); err != nil {
		return host.NoWindow, err
	}
	return b.focused, nil
}

// ActivateTab implements host.API.
func (b *Browser) ActivateTab(ctx context.Context, id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(ctx, "ActivateTab"); err != nil {
		return err
	}
	win, tab := b.findTab(id)
	if tab == nil {
		return fmt.Errorf("tab %d: %w", id, ErrNoTab)
	}
	win.SetActive(id)
	b.emit(host.Event{Kind: host.TabActivated, TabID: id, WindowID: win.ID})
	return nil
}

// SetPinned implements host.API.
func (b *Browser) SetPinned(ctx context.Context, id int, pinned bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(ctx, "SetPinned"); err != nil {
		return err
	}
	_, tab := b.findTab(id)
	if tab == nil {
		return fmt.Errorf("tab %d: %w", id, ErrNoTab)
	}
	tab.Pinned = pinned
	b.emit(host.Event{Kind: host.TabUpdated, TabID: id, WindowID: tab.WindowID, Patch: browser.TabPatch{Pinned: &pinned}})
	return nil
}

// RemoveTabs implements host.API.
func (b *Browser) RemoveTabs(ctx context.Context, ids []int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(ctx, "RemoveTabs"); err != nil {
		return err
	}
	for _, id := range ids {
		if win, _ := b.findTab(id); win == nil {
			return fmt.Errorf("tab %d: %w", id, ErrNoTab)
		}
	}
	for _, id := range ids {
		win, _ := b.findTab(id)
		win.Remove(id)
		closing := win.Length() == 0
		b.emit(host.Event{Kind: host.TabRemoved, TabID: id, WindowID: win.ID, WindowClosing: closing})
		if closing {
			b.dropWindow(win.ID)
		}
	}
	return nil
}

// FocusWindow implements host.API.
func (b *Browser) FocusWindow(ctx context.Context, windowID int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(ctx, "FocusWindow"); err != nil {
		return err
	}
	if b.findWindow(windowID) == nil {
		return fmt.Errorf("window %d: %w", windowID, ErrNoWindow)
	}
	b.focus(windowID)
	return nil
}

// MoveTabs implements host.API.
func (b *Browser) MoveTabs(ctx context.Context, ids []int, windowID, index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(ctx, "MoveTabs"); err != nil {
		return err
	}
	target := b.findWindow(windowID)
	if target == nil {
		return fmt.Errorf("window %d: %w", windowID, ErrNoWindow)
	}
	for i, id := range ids {
		pos := -1
		if index != -1 {
			pos = index + i
		}
		if err := b.moveTab(id, target, pos); err != nil {
			return err
		}
	}
	return nil
}

// CreateWindow implements host.API.
func (b *Browser) CreateWindow(ctx context.Context, tabs []host.TabRef) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(ctx, "CreateWindow"); err != nil {
		return err
	}
	if len(tabs) == 0 {
		return nil
	}
	win := b.newWindow(browser.WindowTypeNormal)
	for _, ref := range tabs {
		if err := b.moveTab(ref.ID, win, -1); err != nil {
			return err
		}
		if tab := win.Find(ref.ID); tab != nil && tab.Pinned != ref.Pinned {
			pinned := ref.Pinned
			tab.Pinned = pinned
			b.emit(host.Event{Kind: host.TabUpdated, TabID: tab.ID, WindowID: win.ID, Patch: browser.TabPatch{Pinned: &pinned}})
		}
	}
	if win.Length() == 0 {
		b.dropWindow(win.ID)
		return nil
	}
	b.focus(win.ID)
	return nil
}

// OpenWindow creates a window holding one tab per url and returns its id.
func (b *Browser) OpenWindow(urls ...string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	win := b.newWindow(browser.WindowTypeNormal)
	for _, u := range urls {
		b.openTab(win, u, u, -1)
	}
	return win.ID
}

// OpenTab creates a tab in windowID at index (-1 appends) and returns it.
func (b *Browser) OpenTab(windowID int, url, title string, index int) (browser.Tab, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	win := b.findWindow(windowID)
	if win == nil {
		return browser.Tab{}, fmt.Errorf("window %d: %w", windowID, ErrNoWindow)
	}
	return *b.openTab(win, url, title, index), nil
}

// Navigate changes a tab's url and title and reports the update.
func (b *Browser) Navigate(id int, url, title string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, tab := b.findTab(id)
	if tab == nil {
		return fmt.Errorf("tab %d: %w", id, ErrNoTab)
	}
	tab.URL = url
	tab.Title = title
	tab.SetURLIcon()
	b.emit(host.Event{Kind: host.TabUpdated, TabID: id, WindowID: tab.WindowID, Patch: browser.TabPatch{URL: &url, Title: &title}})
	return nil
}

// Replace swaps the tab for a fresh id in the same position, as happens on
// prerender, and returns the new id.
func (b *Browser) Replace(id int) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	win, tab := b.findTab(id)
	if tab == nil {
		return 0, fmt.Errorf("tab %d: %w", id, ErrNoTab)
	}
	tab.ID = b.nextTab
	b.nextTab++
	b.emit(host.Event{Kind: host.TabReplaced, TabID: tab.ID, WindowID: win.ID})
	return tab.ID, nil
}

func (b *Browser) check(ctx context.Context, op string) error {
	if b.closed {
		return host.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := b.failures[op]; ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (b *Browser) emit(evt host.Event) {
	if b.closed {
		return
	}
	select {
	case b.events <- evt:
	default:
		b.dropped++
	}
}

func (b *Browser) focus(windowID int) {
	b.focused = windowID
	b.emit(host.Event{Kind: host.FocusChanged, WindowID: windowID})
}

func (b *Browser) newWindow(kind string) *browser.Window {
	win := &browser.Window{ID: b.nextWindow, Type: kind}
	b.nextWindow++
	b.windows = append(b.windows, win)
	if b.focused == host.NoWindow {
		b.focused = win.ID
	}
	return win
}

func (b *Browser) openTab(win *browser.Window, url, title string, index int) *browser.Tab {
	tab := &browser.Tab{ID: b.nextTab, URL: url, Title: title}
	b.nextTab++
	tab.SetURLIcon()
	if win.Length() == 0 {
		tab.Active = true
	}
	win.Add(tab, index)
	b.emit(host.Event{Kind: host.TabCreated, TabID: tab.ID, WindowID: win.ID, Tab: *tab})
	return tab
}

func (b *Browser) moveTab(id int, target *browser.Window, pos int) error {
	source, tab := b.findTab(id)
	if tab == nil {
		return fmt.Errorf("tab %d: %w", id, ErrNoTab)
	}
	source.Remove(id)
	if source.ID == target.ID {
		target.Add(tab, pos)
		b.emit(host.Event{Kind: host.TabMoved, TabID: id, WindowID: target.ID})
		return nil
	}
	tab.Active = false
	b.emit(host.Event{Kind: host.TabDetached, TabID: id, WindowID: source.ID})
	target.Add(tab, pos)
	b.emit(host.Event{Kind: host.TabAttached, TabID: id, WindowID: target.ID})
	if source.Length() == 0 {
		b.dropWindow(source.ID)
	}
	return nil
}

func (b *Browser) dropWindow(id int) {
	for i, w := range b.windows {
		if w.ID == id {
			b.windows = append(b.windows[:i], b.windows[i+1:]...)
			break
		}
	}
	if b.focused == id {
		b.focused = host.NoWindow
		if len(b.windows) > 0 {
			b.focused = b.windows[len(b.windows)-1].ID
		}
		b.emit(host.Event{Kind: host.FocusChanged, WindowID: b.focused})
	}
}

func (b *Browser) findWindow(id int) *browser.Window {
	for _, w := range b.windows {
		if w.ID == id {
			return w
		}
	}
	return nil
}

func (b *Browser) findTab(id int) (*browser.Window, *browser.Tab) {
	for _, w := range b.windows {
		if tab := w.Find(id); tab != nil {
			return w, tab
		}
	}
	return nil, nil
}
