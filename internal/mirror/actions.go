package mirror

import (
	"context"
	"fmt"

	"github.com/atomicstack/tab-mirror/internal/browser"
	"github.com/atomicstack/tab-mirror/internal/host"
	"github.com/atomicstack/tab-mirror/internal/logging/events"
	"github.com/atomicstack/tab-mirror/internal/reorder"
	"github.com/atomicstack/tab-mirror/internal/state"
)

// Select toggles tab in the bulk selection.
func (m *Mirror) Select(tab *browser.Tab) {
	m.bulk.Select(tab)
}

// SelectAll selects every tab matching the current query.
func (m *Mirror) SelectAll() {
	m.bulk.SelectAll(m.store.MatchedTabs())
}

// UnselectAll clears the bulk selection.
func (m *Mirror) UnselectAll() {
	m.bulk.UnselectAll()
}

// AllTabSelected reports whether every matched tab is selected.
func (m *Mirror) AllTabSelected() bool {
	matched := m.store.MatchedTabs()
	if len(matched) == 0 {
		return false
	}
	for _, tab := range matched {
		if !m.bulk.Has(tab.ID) {
			return false
		}
	}
	return true
}

// ToggleSelectAll selects every matched tab, or clears the selection when
// they are all selected already.
func (m *Mirror) ToggleSelectAll() {
	if m.AllTabSelected() {
		m.UnselectAll()
		return
	}
	m.SelectAll()
}

// CloseTitle labels the remove command for the current selection.
func (m *Mirror) CloseTitle() string {
	switch m.bulk.Len() {
	case 0:
		return "Close focused tab"
	case 1:
		return "Close selected tab"
	}
	return "Close selected tabs"
}

// Activate selects tab in its window and focuses that window.
func (m *Mirror) Activate(ctx context.Context, tab *browser.Tab) error {
	if tab == nil {
		return nil
	}
	if err := m.api.ActivateTab(ctx, tab.ID); err != nil {
		return m.hostFailed(ctx, "activate tab", err)
	}
	if err := m.api.FocusWindow(ctx, tab.WindowID); err != nil {
		return m.hostFailed(ctx, "focus window", err)
	}
	m.store.OnActivated(tab.ID, tab.WindowID)
	return nil
}

// RemoveSelected closes the bulk selection, or the focused tab when nothing
// is selected. Focus first moves off the tabs being closed; when no other
// matched tab is left it is cleared. The selection is cleared once the host
// has removed the tabs.
func (m *Mirror) RemoveSelected(ctx context.Context) error {
	var ids []int
	if m.bulk.Len() > 0 {
		m.moveFocusOffSelection()
		ids = m.bulk.IDs()
	} else {
		focused := m.store.FocusedTab()
		if focused == nil {
			return nil
		}
		ids = []int{focused.ID}
		if !m.store.FocusNext() {
			m.store.Defocus()
		}
	}
	events.Tab.Close(ids)
	if err := m.api.RemoveTabs(ctx, ids); err != nil {
		return m.hostFailed(ctx, "remove tabs", err)
	}
	m.store.RemoveTabs(ids)
	m.bulk.UnselectAll()
	return nil
}

func (m *Mirror) moveFocusOffSelection() {
	limit := len(m.store.MatchedTabs())
	for i := 0; i < limit; i++ {
		focused := m.store.FocusedTab()
		if focused == nil || !m.bulk.Has(focused.ID) {
			return
		}
		if !m.store.FocusNext() {
			break
		}
	}
	if focused := m.store.FocusedTab(); focused != nil && m.bulk.Has(focused.ID) {
		m.store.Defocus()
	}
}

// TogglePin pins every target when any of them is unpinned, and unpins them
// all otherwise. Targets are the bulk selection, or the focused tab. The
// selection is cleared afterwards.
func (m *Mirror) TogglePin(ctx context.Context) error {
	targets := m.bulk.Sources()
	fromSelection := len(targets) > 0
	if !fromSelection {
		focused := m.store.FocusedTab()
		if focused == nil {
			return nil
		}
		targets = []*browser.Tab{focused}
	}
	pinned := false
	for _, tab := range targets {
		if live := m.store.Tab(tab.ID); live != nil && !live.Pinned {
			pinned = true
			break
		}
	}
	ids := make([]int, 0, len(targets))
	for _, tab := range targets {
		ids = append(ids, tab.ID)
	}
	events.Tab.Pin(ids, pinned)
	for _, id := range ids {
		if err := m.api.SetPinned(ctx, id, pinned); err != nil {
			return m.hostFailed(ctx, "set pinned", err)
		}
		value := pinned
		m.store.OnUpdated(id, browser.TabPatch{Pinned: &value})
	}
	if fromSelection {
		m.bulk.UnselectAll()
	}
	return nil
}

// CreateWindow moves tabs into a new window. Refreshes are held while the
// tabs are moved into a provisional local window and the host builds the
// real one; the final refresh replaces the provisional window.
func (m *Mirror) CreateWindow(ctx context.Context, tabs []*browser.Tab) error {
	if len(tabs) == 0 {
		return nil
	}
	m.Suspend()
	refs := make([]host.TabRef, 0, len(tabs))
	ids := make([]int, 0, len(tabs))
	for _, tab := range tabs {
		live := tab
		if found := m.store.Tab(tab.ID); found != nil {
			live = found
		}
		refs = append(refs, host.TabRef{ID: live.ID, Pinned: live.Pinned})
		ids = append(ids, live.ID)
	}
	events.Window.Create(ids)
	m.store.AddProvisionalWindow(tabs)
	createErr := m.api.CreateWindow(ctx, refs)
	resumeErr := m.Resume(ctx)
	if createErr != nil {
		events.Action.Error(createErr)
		return fmt.Errorf("create window: %w", createErr)
	}
	return resumeErr
}

// MoveTabs moves tabs, in order, into windowID from index (-1 appends).
func (m *Mirror) MoveTabs(ctx context.Context, tabs []*browser.Tab, windowID, index int) error {
	if err := m.store.MoveTabs(tabs, windowID, index); err != nil {
		return err
	}
	ids := make([]int, len(tabs))
	for i, tab := range tabs {
		ids[i] = tab.ID
	}
	if err := m.api.MoveTabs(ctx, ids, windowID, index); err != nil {
		return m.hostFailed(ctx, "move tabs", err)
	}
	return nil
}

// Drop moves the drag selection next to target and clears it. before picks
// the side of target the tabs land on.
func (m *Mirror) Drop(ctx context.Context, target *browser.Tab, before bool) (reorder.Plan, error) {
	if target == nil {
		return reorder.Plan{}, fmt.Errorf("drop: no target")
	}
	m.drag.SetDropTarget(target.ID, before)
	plan, err := m.drag.Drop(ctx, target)
	m.drag.Clear()
	if err != nil {
		return plan, m.hostFailed(ctx, "drop", err)
	}
	return plan, nil
}

// DropAtEnd appends the drag selection to windowID and clears it.
func (m *Mirror) DropAtEnd(ctx context.Context, windowID int) (reorder.Plan, error) {
	plan, err := m.drag.DropAtEnd(ctx, windowID)
	m.drag.Clear()
	if err != nil {
		return plan, m.hostFailed(ctx, "drop", err)
	}
	return plan, nil
}

// CloseDuplicatedTab closes every other tab showing tab's url.
func (m *Mirror) CloseDuplicatedTab(ctx context.Context, tab *browser.Tab) error {
	return m.closeTabs(ctx, state.SameURLOthers(m.store.Tabs(), tab))
}

// CleanDuplicatedTabs keeps the first tab of each duplicated url and closes
// the rest.
func (m *Mirror) CleanDuplicatedTabs(ctx context.Context) error {
	return m.closeTabs(ctx, state.DuplicateExtras(m.store.Tabs()))
}

func (m *Mirror) closeTabs(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	events.Tab.Close(ids)
	if err := m.api.RemoveTabs(ctx, ids); err != nil {
		return m.hostFailed(ctx, "remove tabs", err)
	}
	m.store.RemoveTabs(ids)
	return nil
}
