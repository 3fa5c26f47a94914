// Package cdp implements host.API against a running Chromium over the
// DevTools protocol. Page targets are tabs and their browser windows are
// windows. The protocol has no tab strip order, pinning or tab moves, so
// indices follow discovery order and those commands report
// host.ErrUnsupported.
package cdp

import (
	"context"
	"fmt"
	"sync"

	"github.com/atomicstack/tab-mirror/internal/browser"
	"github.com/atomicstack/tab-mirror/internal/host"
	"github.com/atomicstack/tab-mirror/internal/logging"
	cdpbrowser "github.com/chromedp/cdproto/browser"
	cdpproto "github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"golang.org/x/sync/errgroup"
)

const (
	eventBuffer = 256
	pageType    = "page"
)

// Browser is a host.API backed by chromedp.
type Browser struct {
	mu      sync.Mutex
	ids     *idMap
	tabs    map[int]*tabEntry
	focused int
	self    target.ID
	closed  bool

	base     context.Context
	executor cdpproto.Executor
	cancel   context.CancelFunc
	windowOf func(ctx context.Context, tid target.ID) (int, error)

	// raw carries protocol events from listen and host events from command
	// methods; pump is the only writer of events.
	raw    chan interface{}
	events chan host.Event
	done   chan struct{}
}

type tabEntry struct {
	tab browser.Tab
}

var _ host.API = (*Browser)(nil)

// Dial connects to the DevTools endpoint at url. The page chromedp opens for
// its own session is hidden from every listing.
func Dial(url string) (*Browser, error) {
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.Background(), url)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	cancel := func() {
		tabCancel()
		allocCancel()
	}
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("connect %s: %w", url, err)
	}
	c := chromedp.FromContext(tabCtx)

	b := newBrowser(c.Browser, cancel, windowForTarget)
	b.base = tabCtx
	b.self = c.Target.TargetID
	chromedp.ListenBrowser(tabCtx, b.listen)
	if err := target.SetDiscoverTargets(true).Do(b.execWith(tabCtx)); err != nil {
		cancel()
		return nil, fmt.Errorf("discover targets: %w", err)
	}
	go b.pump()
	return b, nil
}

func newBrowser(executor cdpproto.Executor, cancel context.CancelFunc, windowOf func(context.Context, target.ID) (int, error)) *Browser {
	return &Browser{
		ids:      newIDMap(),
		tabs:     make(map[int]*tabEntry),
		focused:  host.NoWindow,
		base:     context.Background(),
		executor: executor,
		cancel:   cancel,
		windowOf: windowOf,
		raw:      make(chan interface{}, eventBuffer),
		events:   make(chan host.Event, eventBuffer),
		done:     make(chan struct{}),
	}
}

func windowForTarget(ctx context.Context, tid target.ID) (int, error) {
	windowID, _, err := cdpbrowser.GetWindowForTarget().WithTargetID(tid).Do(ctx)
	if err != nil {
		return 0, err
	}
	return int(windowID), nil
}

// listen runs on chromedp's event goroutine and must not block or issue
// commands; translation happens in pump.
func (b *Browser) listen(ev interface{}) {
	switch ev.(type) {
	case *target.EventTargetCreated, *target.EventTargetInfoChanged, *target.EventTargetDestroyed:
	default:
		return
	}
	select {
	case b.raw <- ev:
	case <-b.done:
	default:
		logging.Error(fmt.Errorf("cdp: event buffer full, dropping %T", ev))
	}
}

func (b *Browser) pump() {
	defer close(b.events)
	for {
		select {
		case <-b.done:
			return
		case ev := <-b.raw:
			for _, evt := range b.translate(b.execWith(b.base), ev) {
				select {
				case b.events <- evt:
				case <-b.done:
					return
				}
			}
		}
	}
}

// translate folds one protocol event into the tab table and returns the
// host events it implies.
func (b *Browser) translate(ctx context.Context, ev interface{}) []host.Event {
	switch e := ev.(type) {
	case host.Event:
		return []host.Event{e}

	case *target.EventTargetCreated:
		info := e.TargetInfo
		if !b.tracked(info) {
			return nil
		}
		windowID, err := b.windowOf(ctx, info.TargetID)
		if err != nil {
			logging.Error(fmt.Errorf("cdp: window for %s: %w", info.TargetID, err))
			return nil
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		id := b.ids.intern(info.TargetID)
		if _, ok := b.tabs[id]; ok {
			return nil
		}
		tab := b.addLocked(id, windowID, info)
		return []host.Event{{Kind: host.TabCreated, TabID: id, WindowID: windowID, Tab: tab}}

	case *target.EventTargetInfoChanged:
		info := e.TargetInfo
		if !b.tracked(info) {
			return nil
		}
		windowID, err := b.windowOf(ctx, info.TargetID)
		if err != nil {
			return nil
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		id, ok := b.ids.lookup(info.TargetID)
		if !ok {
			return nil
		}
		entry, ok := b.tabs[id]
		if !ok {
			return nil
		}
		if entry.tab.WindowID != windowID {
			from := entry.tab.WindowID
			entry.tab.WindowID = windowID
			b.reindexLocked(from)
			b.reindexLocked(windowID)
			return []host.Event{
				{Kind: host.TabDetached, TabID: id, WindowID: from},
				{Kind: host.TabAttached, TabID: id, WindowID: windowID},
			}
		}
		url, title := info.URL, info.Title
		if url == entry.tab.URL && title == entry.tab.Title {
			return nil
		}
		entry.tab.URL, entry.tab.Title = url, title
		entry.tab.SetURLIcon()
		return []host.Event{{Kind: host.TabUpdated, TabID: id, WindowID: windowID, Patch: browser.TabPatch{URL: &url, Title: &title}}}

	case *target.EventTargetDestroyed:
		b.mu.Lock()
		defer b.mu.Unlock()
		id, ok := b.ids.lookup(e.TargetID)
		if !ok {
			return nil
		}
		b.ids.forget(e.TargetID)
		entry, ok := b.tabs[id]
		if !ok {
			return nil
		}
		delete(b.tabs, id)
		windowID := entry.tab.WindowID
		closing := b.reindexLocked(windowID) == 0
		return []host.Event{{Kind: host.TabRemoved, TabID: id, WindowID: windowID, WindowClosing: closing}}
	}
	return nil
}

func (b *Browser) tracked(info *target.Info) bool {
	return info != nil && info.Type == pageType && info.TargetID != b.self
}

func (b *Browser) addLocked(id, windowID int, info *target.Info) browser.Tab {
	entry := &tabEntry{tab: browser.Tab{ID: id, WindowID: windowID, URL: info.URL, Title: info.Title}}
	entry.tab.SetURLIcon()
	b.tabs[id] = entry
	b.reindexLocked(windowID)
	if b.focused == host.NoWindow {
		b.focused = windowID
	}
	return entry.tab
}

// reindexLocked renumbers the tabs of windowID in discovery order and
// returns how many it holds.
func (b *Browser) reindexLocked(windowID int) int {
	tabs := b.windowTabsLocked(windowID)
	for i, entry := range tabs {
		entry.tab.Index = i
	}
	return len(tabs)
}

func (b *Browser) windowTabsLocked(windowID int) []*tabEntry {
	var out []*tabEntry
	for _, entry := range b.tabs {
		if entry.tab.WindowID == windowID {
			out = append(out, entry)
		}
	}
	sortEntries(out)
	return out
}

// Windows implements host.API. It lists page targets and resolves their
// windows concurrently.
func (b *Browser) Windows(ctx context.Context) ([]browser.Window, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	infos, err := target.GetTargets().Do(b.execWith(ctx))
	if err != nil {
		return nil, fmt.Errorf("get targets: %w", err)
	}
	var pages []*target.Info
	for _, info := range infos {
		if b.tracked(info) {
			pages = append(pages, info)
		}
	}
	windowIDs := make([]int, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	for i, info := range pages {
		g.Go(func() error {
			id, err := b.windowOf(b.execWith(gctx), info.TargetID)
			if err != nil {
				return fmt.Errorf("window for %s: %w", info.TargetID, err)
			}
			windowIDs[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	live := make(map[int]struct{}, len(pages))
	for i, info := range pages {
		id := b.ids.intern(info.TargetID)
		live[id] = struct{}{}
		if entry, ok := b.tabs[id]; ok {
			entry.tab.WindowID = windowIDs[i]
			entry.tab.URL, entry.tab.Title = info.URL, info.Title
			entry.tab.SetURLIcon()
			continue
		}
		b.addLocked(id, windowIDs[i], info)
	}
	for id, entry := range b.tabs {
		if _, ok := live[id]; !ok {
			delete(b.tabs, id)
			if tid, ok := b.ids.byID[entry.tab.ID]; ok {
				b.ids.forget(tid)
			}
		}
	}
	return b.snapshotLocked(), nil
}

func (b *Browser) snapshotLocked() []browser.Window {
	var order []int
	seen := map[int]bool{}
	all := make([]*tabEntry, 0, len(b.tabs))
	for _, entry := range b.tabs {
		all = append(all, entry)
	}
	sortEntries(all)
	for _, entry := range all {
		if !seen[entry.tab.WindowID] {
			seen[entry.tab.WindowID] = true
			order = append(order, entry.tab.WindowID)
		}
	}
	out := make([]browser.Window, 0, len(order))
	for _, windowID := range order {
		win := browser.Window{ID: windowID, Type: browser.WindowTypeNormal, Focused: windowID == b.focused}
		for _, entry := range b.windowTabsLocked(windowID) {
			tab := entry.tab
			win.Add(&tab, -1)
		}
		out = append(out, win)
	}
	return out
}

// Tab implements host.API.
func (b *Browser) Tab(ctx context.Context, id int) (browser.Tab, error) {
	if err := b.check(); err != nil {
		return browser.Tab{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	entry, ok := b.tabs[id]
	if !ok {
		return browser.Tab{}, fmt.Errorf("tab %d: not found", id)
	}
	return entry.tab, nil
}

// LastFocusedWindowID implements host.API. The protocol does not report OS
// focus, so this is the window of the last tab activated through this host
// or the first window discovered.
func (b *Browser) LastFocusedWindowID(ctx context.Context) (int, error) {
	if err := b.check(); err != nil {
		return host.NoWindow, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.focused, nil
}

// ActivateTab implements host.API.
func (b *Browser) ActivateTab(ctx context.Context, id int) error {
	tid, windowID, err := b.resolve(id)
	if err != nil {
		return err
	}
	if err := target.ActivateTarget(tid).Do(b.execWith(ctx)); err != nil {
		return fmt.Errorf("activate %s: %w", tid, err)
	}
	b.mu.Lock()
	b.focused = windowID
	for _, entry := range b.tabs {
		if entry.tab.WindowID == windowID {
			entry.tab.Active = entry.tab.ID == id
		}
	}
	b.mu.Unlock()
	b.emit(host.Event{Kind: host.TabActivated, TabID: id, WindowID: windowID})
	return nil
}

// FocusWindow implements host.API by activating the window's active tab.
func (b *Browser) FocusWindow(ctx context.Context, windowID int) error {
	if err := b.check(); err != nil {
		return err
	}
	b.mu.Lock()
	tabs := b.windowTabsLocked(windowID)
	var pick int
	for _, entry := range tabs {
		if pick == 0 || entry.tab.Active {
			pick = entry.tab.ID
		}
	}
	b.mu.Unlock()
	if pick == 0 {
		return fmt.Errorf("window %d: not found", windowID)
	}
	tid, _, err := b.resolve(pick)
	if err != nil {
		return err
	}
	if err := target.ActivateTarget(tid).Do(b.execWith(ctx)); err != nil {
		return fmt.Errorf("focus window %d: %w", windowID, err)
	}
	b.mu.Lock()
	b.focused = windowID
	b.mu.Unlock()
	b.emit(host.Event{Kind: host.FocusChanged, WindowID: windowID})
	return nil
}

// RemoveTabs implements host.API. Removal events arrive from the target
// stream.
func (b *Browser) RemoveTabs(ctx context.Context, ids []int) error {
	for _, id := range ids {
		tid, _, err := b.resolve(id)
		if err != nil {
			return err
		}
		if err := cdpproto.Execute(b.execWith(ctx), target.CommandCloseTarget, target.CloseTarget(tid), nil); err != nil {
			return fmt.Errorf("close %s: %w", tid, err)
		}
	}
	return nil
}

// SetPinned implements host.API.
func (b *Browser) SetPinned(ctx context.Context, id int, pinned bool) error {
	return fmt.Errorf("set pinned: %w", host.ErrUnsupported)
}

// MoveTabs implements host.API.
func (b *Browser) MoveTabs(ctx context.Context, ids []int, windowID, index int) error {
	return fmt.Errorf("move tabs: %w", host.ErrUnsupported)
}

// CreateWindow implements host.API.
func (b *Browser) CreateWindow(ctx context.Context, tabs []host.TabRef) error {
	return fmt.Errorf("create window: %w", host.ErrUnsupported)
}

// IsSelf implements host.API. The session's own page is filtered from every
// listing, so no window is ever this process's.
func (b *Browser) IsSelf(windowID int) bool {
	return false
}

// Events implements host.API.
func (b *Browser) Events() <-chan host.Event {
	return b.events
}

// Close implements host.API.
func (b *Browser) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()
	close(b.done)
	if b.cancel != nil {
		b.cancel()
	}
	return nil
}

func (b *Browser) check() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return host.ErrClosed
	}
	return nil
}

func (b *Browser) resolve(id int) (target.ID, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return "", 0, host.ErrClosed
	}
	tid, ok := b.ids.byID[id]
	if !ok {
		return "", 0, fmt.Errorf("tab %d: not found", id)
	}
	windowID := host.NoWindow
	if entry, ok := b.tabs[id]; ok {
		windowID = entry.tab.WindowID
	}
	return tid, windowID, nil
}

// execWith carries the browser executor on ctx so callers' deadlines apply.
func (b *Browser) execWith(ctx context.Context) context.Context {
	if b.executor == nil {
		return ctx
	}
	return cdpproto.WithExecutor(ctx, b.executor)
}

func (b *Browser) emit(evt host.Event) {
	select {
	case b.raw <- evt:
	case <-b.done:
	default:
		logging.Error(fmt.Errorf("cdp: event stream full, dropping %s", evt.Kind))
	}
}
