package state

import (
	"errors"
	"fmt"
	"sort"

	"github.com/atomicstack/tab-mirror/internal/browser"
	"github.com/atomicstack/tab-mirror/internal/logging/events"
)

// ErrUnknownWindow is returned when an operation names a window the snapshot
// does not hold. It signals a consistency bug in the caller.
var ErrUnknownWindow = errors.New("unknown window")

const (
	// noFocus marks the absence of a last-focused window.
	noFocus = -1
	// provisionalBase numbers locally created windows below any host id.
	provisionalBase = -2
)

// Store owns the authoritative window/tab snapshot. Host events and local
// optimistic mutations both go through its methods; nothing else writes
// Window or Tab fields. It is not safe for concurrent use: all calls must come
// from the single goroutine driving the mirror.
type Store struct {
	windows     []*browser.Window
	columns     []*browser.Column
	lastFocused int
	loading     bool

	height    int
	rowHeight float64
	overscan  float64

	isSelf      func(windowID int) bool
	selections  []*Selection
	provisional int

	query   string
	focused int
}

// Option configures a Store.
type Option func(*Store)

// WithLayout overrides the row height and overscan factor used to size
// columns.
func WithLayout(rowHeight, overscan float64) Option {
	return func(s *Store) {
		if rowHeight > 0 {
			s.rowHeight = rowHeight
		}
		if overscan > 0 {
			s.overscan = overscan
		}
	}
}

// WithHeight sets the initial available height.
func WithHeight(height int) Option {
	return func(s *Store) {
		if height > 0 {
			s.height = height
		}
	}
}

// WithSelfCheck installs the predicate identifying this process's own
// window, which is never mirrored nor recorded as focused.
func WithSelfCheck(fn func(windowID int) bool) Option {
	return func(s *Store) {
		s.isSelf = fn
	}
}

// NewStore returns an empty store in the initial-loading state.
func NewStore(opts ...Option) *Store {
	s := &Store{
		lastFocused: noFocus,
		loading:     true,
		height:      DefaultHeight,
		rowHeight:   DefaultRowHeight,
		overscan:    DefaultOverscan,
		isSelf:      func(int) bool { return false },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Track registers a selection so removed ids are pruned from it.
func (s *Store) Track(sel *Selection) {
	if sel == nil {
		return
	}
	s.selections = append(s.selections, sel)
}

// Windows returns the ordered windows. The slice is a copy; the windows are
// live and must be treated as read-only.
func (s *Store) Windows() []*browser.Window {
	out := make([]*browser.Window, len(s.windows))
	copy(out, s.windows)
	return out
}

// Columns returns the current column partition.
func (s *Store) Columns() []*browser.Column {
	out := make([]*browser.Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Tabs returns every tab in window order.
func (s *Store) Tabs() []*browser.Tab {
	out := make([]*browser.Tab, 0, s.TabCount())
	for _, w := range s.windows {
		out = append(out, w.Tabs...)
	}
	return out
}

// TabCount returns the total number of tabs.
func (s *Store) TabCount() int {
	total := 0
	for _, w := range s.windows {
		total += w.Length()
	}
	return total
}

// InitialLoading reports whether no full refresh has landed yet.
func (s *Store) InitialLoading() bool {
	return s.loading
}

// Height returns the available rendering height.
func (s *Store) Height() int {
	return s.height
}

// Capacity returns the current tabs-per-column capacity.
func (s *Store) Capacity() int {
	return Capacity(s.height, s.rowHeight, s.overscan)
}

// LastFocusedWindowID returns the last focused window id, or -1.
func (s *Store) LastFocusedWindowID() int {
	return s.lastFocused
}

// LastFocusedWindow returns the last focused window if it is mirrored.
func (s *Store) LastFocusedWindow() *browser.Window {
	for _, w := range s.windows {
		if w.LastFocused {
			return w
		}
	}
	return nil
}

// Window returns the window with the given id, or nil.
func (s *Store) Window(id int) *browser.Window {
	for _, w := range s.windows {
		if w.ID == id {
			return w
		}
	}
	return nil
}

// TargetWindow is Window for callers that require the window to exist.
func (s *Store) TargetWindow(id int) (*browser.Window, error) {
	if w := s.Window(id); w != nil {
		return w, nil
	}
	return nil, fmt.Errorf("window %d: %w", id, ErrUnknownWindow)
}

// Tab returns the tab with the given id, or nil.
func (s *Store) Tab(id int) *browser.Tab {
	for _, w := range s.windows {
		if tab := w.Find(id); tab != nil {
			return tab
		}
	}
	return nil
}

// OnCreated inserts tab at its reported index, creating its window when the
// window is not mirrored yet.
func (s *Store) OnCreated(tab browser.Tab) {
	if s.isSelf(tab.WindowID) {
		return
	}
	if s.Tab(tab.ID) != nil {
		// Already picked up by a refresh.
		s.OnUpdated(tab.ID, browser.PatchFromTab(tab))
		return
	}
	created := tab
	created.SetURLIcon()
	win := s.Window(tab.WindowID)
	if win == nil {
		win = &browser.Window{ID: tab.WindowID, Type: browser.WindowTypeNormal, ShowTabs: !s.loading}
		win.LastFocused = win.ID == s.lastFocused
		s.windows = append(s.windows, win)
	}
	if created.Active {
		for _, other := range win.Tabs {
			other.Active = false
		}
	}
	win.Add(&created, tab.Index)
	events.Tab.Created(created.ID, win.ID, created.Index)
	s.relayout()
}

// OnUpdated merges patch into the tab in place. Unknown ids are ignored.
func (s *Store) OnUpdated(tabID int, patch browser.TabPatch) bool {
	tab := s.Tab(tabID)
	if tab == nil {
		events.Tab.Stale("updated", tabID)
		return false
	}
	if patch.Active != nil && *patch.Active {
		if win := s.Window(tab.WindowID); win != nil {
			win.SetActive(tab.ID)
		}
	}
	tab.Apply(patch)
	events.Tab.Updated(tabID)
	return true
}

// OnActivated makes tabID the only active tab of windowID and records the
// window as focused.
func (s *Store) OnActivated(tabID, windowID int) bool {
	s.setLastFocused(windowID)
	win := s.Window(windowID)
	if win == nil {
		events.Tab.Stale("activated", tabID)
		return false
	}
	found := win.SetActive(tabID)
	events.Tab.Activated(tabID, windowID)
	return found
}

// OnRemoved drops the tab, any window it leaves empty, and the id from every
// tracked selection.
func (s *Store) OnRemoved(tabID, windowID int) bool {
	removed := s.removeTabs(map[int]struct{}{tabID: {}})
	if removed == 0 {
		events.Tab.Stale("removed", tabID)
		return false
	}
	events.Tab.Removed(tabID, windowID)
	return true
}

// OnFocusChanged records windowID as last focused unless it is not a real
// window or is this process's own window.
func (s *Store) OnFocusChanged(windowID int) bool {
	if windowID <= 0 || s.isSelf(windowID) {
		return false
	}
	s.setLastFocused(windowID)
	events.Window.Focus(windowID)
	return true
}

// Replace swaps in a freshly fetched topology. ShowTabs is carried over from
// windows already mirrored; new windows are shown immediately unless the
// initial load is still in progress. Self windows are filtered out and the
// rest are ordered normal-first, then by id.
func (s *Store) Replace(windows []browser.Window, lastFocused int) {
	prev := make(map[int]*browser.Window, len(s.windows))
	for _, w := range s.windows {
		prev[w.ID] = w
	}
	if lastFocused > 0 && !s.isSelf(lastFocused) {
		s.lastFocused = lastFocused
	}
	next := make([]*browser.Window, 0, len(windows))
	for i := range windows {
		src := windows[i]
		if s.isSelf(src.ID) || len(src.Tabs) == 0 {
			continue
		}
		win := src.Clone()
		if old, ok := prev[win.ID]; ok {
			win.ShowTabs = old.ShowTabs
		} else {
			win.ShowTabs = !s.loading
		}
		win.LastFocused = win.ID == s.lastFocused
		win.Renumber()
		for _, tab := range win.Tabs {
			tab.SetURLIcon()
		}
		next = append(next, win)
	}
	sort.SliceStable(next, func(i, j int) bool {
		ni, nj := isNormal(next[i]), isNormal(next[j])
		if ni != nj {
			return ni
		}
		return next[i].ID < next[j].ID
	})
	s.windows = next
	for _, sel := range s.selections {
		sel.Reconcile(s.Tab)
	}
	if s.focused != 0 && s.Tab(s.focused) == nil {
		s.focused = 0
	}
	if s.loading {
		s.loading = false
		s.WindowMounted()
	}
	s.relayout()
	events.Refresh.Run(len(s.windows), s.TabCount())
}

// RemoveTabs drops ids from the snapshot ahead of host confirmation.
func (s *Store) RemoveTabs(ids []int) int {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return s.removeTabs(set)
}

// MoveTabs moves tabs, in order, into windowID starting at from. With from
// equal to -1 every tab is appended. Both the destination and each source
// window must be mirrored.
func (s *Store) MoveTabs(tabs []*browser.Tab, windowID, from int) error {
	target, err := s.TargetWindow(windowID)
	if err != nil {
		return err
	}
	type move struct {
		tab    *browser.Tab
		source *browser.Window
	}
	moves := make([]move, 0, len(tabs))
	for _, tab := range tabs {
		if live := s.Tab(tab.ID); live != nil {
			moves = append(moves, move{tab: live, source: s.Window(live.WindowID)})
			continue
		}
		source, err := s.TargetWindow(tab.WindowID)
		if err != nil {
			return err
		}
		moves = append(moves, move{tab: tab.Clone(), source: source})
	}
	ids := make([]int, 0, len(moves))
	for i, mv := range moves {
		index := from
		if from != -1 {
			index = from + i
		}
		mv.source.Remove(mv.tab.ID)
		if mv.source != target {
			mv.tab.Active = false
		}
		target.Add(mv.tab, index)
		ids = append(ids, mv.tab.ID)
	}
	events.Window.Move(ids, windowID, from)
	s.dropEmpty()
	s.relayout()
	return nil
}

// AddProvisionalWindow moves tabs out of their windows into a new window that
// stands in until the host reports the real one. It returns the new window.
func (s *Store) AddProvisionalWindow(tabs []*browser.Tab) *browser.Window {
	ids := make(map[int]struct{}, len(tabs))
	for _, tab := range tabs {
		ids[tab.ID] = struct{}{}
	}
	win := &browser.Window{ID: provisionalBase - s.provisional, Type: browser.WindowTypeNormal, ShowTabs: true}
	s.provisional++
	live := make([]*browser.Tab, 0, len(tabs))
	for _, tab := range tabs {
		if found := s.Tab(tab.ID); found != nil {
			live = append(live, found)
			continue
		}
		live = append(live, tab)
	}
	// The tabs still exist, so selections and focus keep them.
	for _, w := range s.windows {
		w.RemoveTabs(ids)
	}
	s.dropEmpty()
	active := 0
	for _, tab := range live {
		if tab.Active && active == 0 {
			active = tab.ID
		}
		win.Add(tab, -1)
	}
	if active != 0 {
		win.SetActive(active)
	}
	if win.Length() > 0 {
		s.windows = append(s.windows, win)
	}
	s.relayout()
	return win
}

// Resize updates the available height and re-lays out columns when it
// changed.
func (s *Store) Resize(height int) bool {
	if height == s.height {
		return false
	}
	s.height = height
	s.relayout()
	return true
}

// RowHeight returns the height of one tab row in layout units.
func (s *Store) RowHeight() float64 {
	return s.rowHeight
}

// SetLayout changes the row height and overscan factor.
func (s *Store) SetLayout(rowHeight, overscan float64) {
	WithLayout(rowHeight, overscan)(s)
	s.relayout()
}

// WindowMounted shows the first window whose tabs are not shown yet. The
// renderer calls it until it returns false.
func (s *Store) WindowMounted() bool {
	for _, w := range s.windows {
		if !w.ShowTabs {
			w.ShowTabs = true
			events.Window.Mounted(w.ID)
			return true
		}
	}
	return false
}

func (s *Store) setLastFocused(windowID int) {
	s.lastFocused = windowID
	for _, w := range s.windows {
		w.LastFocused = w.ID == windowID
	}
}

func (s *Store) removeTabs(ids map[int]struct{}) int {
	removed := 0
	for _, w := range s.windows {
		removed += w.RemoveTabs(ids)
	}
	if removed == 0 {
		return 0
	}
	for id := range ids {
		for _, sel := range s.selections {
			sel.Delete(id)
		}
		if s.focused == id {
			s.focused = 0
		}
	}
	s.dropEmpty()
	s.relayout()
	return removed
}

func (s *Store) dropEmpty() {
	kept := s.windows[:0]
	for _, w := range s.windows {
		if w.Length() == 0 {
			events.Window.Dropped(w.ID)
			continue
		}
		kept = append(kept, w)
	}
	for i := len(kept); i < len(s.windows); i++ {
		s.windows[i] = nil
	}
	s.windows = kept
}

func (s *Store) relayout() {
	capacity := s.Capacity()
	s.columns = Columns(s.windows, capacity)
	events.Window.Layout(len(s.columns), capacity, s.height)
}

func isNormal(w *browser.Window) bool {
	return w.Type == "" || w.Type == browser.WindowTypeNormal
}
