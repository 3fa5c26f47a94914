package browser

// Window mirrors a host window and owns its ordered tabs.
type Window struct {
	ID          int
	Type        string
	Focused     bool
	Tabs        []*Tab
	LastFocused bool
	// ShowTabs reports whether the window's tabs have been mounted by the
	// renderer.
	ShowTabs bool
}

// Length returns the number of tabs in the window.
func (w *Window) Length() int {
	if w == nil {
		return 0
	}
	return len(w.Tabs)
}

// Find returns the tab with the given id, or nil.
func (w *Window) Find(id int) *Tab {
	if w == nil {
		return nil
	}
	for _, tab := range w.Tabs {
		if tab.ID == id {
			return tab
		}
	}
	return nil
}

// Add inserts tab at index and renumbers. A negative index or one past the
// end appends.
func (w *Window) Add(tab *Tab, index int) {
	if tab == nil {
		return
	}
	if index < 0 || index > len(w.Tabs) {
		index = len(w.Tabs)
	}
	tab.WindowID = w.ID
	w.Tabs = append(w.Tabs, nil)
	copy(w.Tabs[index+1:], w.Tabs[index:])
	w.Tabs[index] = tab
	w.Renumber()
}

// Remove drops the tab with the given id and renumbers the remaining tabs.
func (w *Window) Remove(id int) bool {
	for i, tab := range w.Tabs {
		if tab.ID == id {
			w.Tabs = append(w.Tabs[:i], w.Tabs[i+1:]...)
			w.Renumber()
			return true
		}
	}
	return false
}

// RemoveTabs drops every tab whose id is in ids and returns how many were
// removed.
func (w *Window) RemoveTabs(ids map[int]struct{}) int {
	if len(ids) == 0 {
		return 0
	}
	kept := w.Tabs[:0]
	removed := 0
	for _, tab := range w.Tabs {
		if _, ok := ids[tab.ID]; ok {
			removed++
			continue
		}
		kept = append(kept, tab)
	}
	for i := len(kept); i < len(w.Tabs); i++ {
		w.Tabs[i] = nil
	}
	w.Tabs = kept
	if removed > 0 {
		w.Renumber()
	}
	return removed
}

// Renumber rewrites tab indices so they run 0..n-1 in slice order.
func (w *Window) Renumber() {
	for i, tab := range w.Tabs {
		tab.Index = i
		tab.WindowID = w.ID
	}
}

// SetActive marks id as the only active tab. It reports whether id was found.
func (w *Window) SetActive(id int) bool {
	found := false
	for _, tab := range w.Tabs {
		if tab.ID == id {
			tab.Active = true
			found = true
			continue
		}
		tab.Active = false
	}
	return found
}

// Clone returns a deep copy of the window and its tabs.
func (w *Window) Clone() *Window {
	if w == nil {
		return nil
	}
	dup := *w
	dup.Tabs = make([]*Tab, len(w.Tabs))
	for i, tab := range w.Tabs {
		dup.Tabs[i] = tab.Clone()
	}
	return &dup
}

// Column groups whole windows for rendering. It never owns window content.
type Column struct {
	Windows []*Window
}

// Length returns the number of tabs across the column's windows.
func (c *Column) Length() int {
	total := 0
	for _, w := range c.Windows {
		total += w.Length()
	}
	return total
}

// Add appends a window to the column.
func (c *Column) Add(w *Window) {
	c.Windows = append(c.Windows, w)
}
