package state

import "github.com/atomicstack/tab-mirror/internal/browser"

// URLCounts maps each url to the number of tabs showing it.
func URLCounts(tabs []*browser.Tab) map[string]int {
	counts := make(map[string]int, len(tabs))
	for _, tab := range tabs {
		counts[tab.URL]++
	}
	return counts
}

// DuplicatedTabs returns, in snapshot order, every tab whose url appears more
// than once.
func DuplicatedTabs(tabs []*browser.Tab) []*browser.Tab {
	counts := URLCounts(tabs)
	var out []*browser.Tab
	for _, tab := range tabs {
		if counts[tab.URL] > 1 {
			out = append(out, tab)
		}
	}
	return out
}

// DuplicateExtras returns the ids of every duplicated tab except the first
// occurrence of each url.
func DuplicateExtras(tabs []*browser.Tab) []int {
	seen := make(map[string]bool)
	var ids []int
	for _, tab := range DuplicatedTabs(tabs) {
		if seen[tab.URL] {
			ids = append(ids, tab.ID)
			continue
		}
		seen[tab.URL] = true
	}
	return ids
}

// SameURLOthers returns the ids of every tab sharing keep's url, except keep.
func SameURLOthers(tabs []*browser.Tab, keep *browser.Tab) []int {
	if keep == nil {
		return nil
	}
	var ids []int
	for _, tab := range tabs {
		if tab.URL == keep.URL && tab.ID != keep.ID {
			ids = append(ids, tab.ID)
		}
	}
	return ids
}
