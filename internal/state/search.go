package state

import (
	"strings"

	"github.com/atomicstack/tab-mirror/internal/browser"
	"github.com/atomicstack/tab-mirror/internal/logging/events"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// SetQuery filters MatchedTabs by a fuzzy query over title and url.
func (s *Store) SetQuery(query string) {
	s.query = strings.TrimSpace(query)
	if s.focused != 0 && !s.matches(s.Tab(s.focused)) {
		s.focused = 0
	}
}

// Query returns the active search query.
func (s *Store) Query() string {
	return s.query
}

// MatchedTabs returns the tabs matching the query in window order. An empty
// query matches every tab.
func (s *Store) MatchedTabs() []*browser.Tab {
	all := s.Tabs()
	if s.query == "" {
		return all
	}
	out := make([]*browser.Tab, 0, len(all))
	for _, tab := range all {
		if s.matches(tab) {
			out = append(out, tab)
		}
	}
	return out
}

func (s *Store) matches(tab *browser.Tab) bool {
	if tab == nil {
		return false
	}
	if s.query == "" {
		return true
	}
	return fuzzy.MatchFold(s.query, tab.Title) || fuzzy.MatchFold(s.query, tab.URL)
}

// FocusedTab returns the tab under the keyboard focus cursor.
func (s *Store) FocusedTab() *browser.Tab {
	if s.focused == 0 {
		return nil
	}
	return s.Tab(s.focused)
}

// Focus moves the focus cursor onto tab id.
func (s *Store) Focus(id int) bool {
	if s.Tab(id) == nil {
		return false
	}
	s.focused = id
	events.Tab.Focus(id)
	return true
}

// Defocus clears the focus cursor.
func (s *Store) Defocus() {
	s.focused = 0
}

// FocusNext moves focus to the next matched tab, wrapping at the end. It
// reports whether the focused tab changed.
func (s *Store) FocusNext() bool {
	return s.step(1)
}

// FocusPrev moves focus to the previous matched tab, wrapping at the start.
func (s *Store) FocusPrev() bool {
	return s.step(-1)
}

func (s *Store) step(delta int) bool {
	tabs := s.MatchedTabs()
	if len(tabs) == 0 {
		changed := s.focused != 0
		s.focused = 0
		return changed
	}
	pos := -1
	for i, tab := range tabs {
		if tab.ID == s.focused {
			pos = i
			break
		}
	}
	var next int
	switch {
	case pos == -1 && delta > 0:
		next = 0
	case pos == -1:
		next = len(tabs) - 1
	default:
		next = (pos + delta + len(tabs)) % len(tabs)
	}
	if tabs[next].ID == s.focused {
		return false
	}
	return s.Focus(tabs[next].ID)
}
