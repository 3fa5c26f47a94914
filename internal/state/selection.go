package state

import (
	"sort"

	"github.com/atomicstack/tab-mirror/internal/browser"
	"github.com/atomicstack/tab-mirror/internal/logging/events"
)

// Selection is a toggle set of tabs keyed by id. Stored tabs may go stale;
// membership is what counts and callers re-resolve against the snapshot
// before acting.
type Selection struct {
	name  string
	items map[int]*browser.Tab
}

// NewSelection returns an empty selection. name only labels trace output.
func NewSelection(name string) *Selection {
	return &Selection{name: name, items: make(map[int]*browser.Tab)}
}

// Name returns the selection label.
func (s *Selection) Name() string {
	return s.name
}

// Select toggles membership of tab.
func (s *Selection) Select(tab *browser.Tab) {
	if tab == nil {
		return
	}
	if _, ok := s.items[tab.ID]; ok {
		delete(s.items, tab.ID)
		events.Selection.Toggle(s.name, tab.ID, false)
		return
	}
	s.items[tab.ID] = tab
	events.Selection.Toggle(s.name, tab.ID, true)
}

// Add ensures tab is selected.
func (s *Selection) Add(tab *browser.Tab) {
	if tab == nil {
		return
	}
	s.items[tab.ID] = tab
}

// SelectAll adds every tab.
func (s *Selection) SelectAll(tabs []*browser.Tab) {
	for _, tab := range tabs {
		s.Add(tab)
	}
	events.Selection.All(s.name, len(s.items))
}

// UnselectAll clears the selection.
func (s *Selection) UnselectAll() {
	if len(s.items) == 0 {
		return
	}
	for id := range s.items {
		delete(s.items, id)
	}
	events.Selection.Clear(s.name)
}

// Delete drops id if present.
func (s *Selection) Delete(id int) bool {
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	return true
}

// Has reports whether id is selected.
func (s *Selection) Has(id int) bool {
	_, ok := s.items[id]
	return ok
}

// Len returns the number of selected tabs.
func (s *Selection) Len() int {
	return len(s.items)
}

// IDs returns the selected ids in ascending order.
func (s *Selection) IDs() []int {
	ids := make([]int, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Reconcile re-resolves every member through lookup, replacing stale tab
// values and dropping ids lookup no longer knows. It returns the dropped ids.
func (s *Selection) Reconcile(lookup func(id int) *browser.Tab) []int {
	var dropped []int
	for id := range s.items {
		live := lookup(id)
		if live == nil {
			delete(s.items, id)
			dropped = append(dropped, id)
			continue
		}
		s.items[id] = live
	}
	if len(dropped) > 0 {
		sort.Ints(dropped)
		events.Selection.Prune(s.name, dropped)
	}
	return dropped
}

// Sources returns the selected tabs in on-screen order: by window id, then
// by index. Bulk operations rely on this order to keep indices valid while
// they apply one host call at a time.
func (s *Selection) Sources() []*browser.Tab {
	out := make([]*browser.Tab, 0, len(s.items))
	for _, tab := range s.items {
		out = append(out, tab)
	}
	SortTabs(out)
	return out
}

// SortTabs orders tabs by (window id, index).
func SortTabs(tabs []*browser.Tab) {
	sort.SliceStable(tabs, func(i, j int) bool {
		if tabs[i].WindowID == tabs[j].WindowID {
			return tabs[i].Index < tabs[j].Index
		}
		return tabs[i].WindowID < tabs[j].WindowID
	})
}
