package reorder

import (
	"context"
	"errors"
	"testing"

	"github.com/atomicstack/tab-mirror/internal/browser"
	"github.com/atomicstack/tab-mirror/internal/host/memory"
	"github.com/atomicstack/tab-mirror/internal/state"
	"github.com/stretchr/testify/require"
)

func tabIDs(tabs []*browser.Tab) []int {
	out := make([]int, len(tabs))
	for i, tab := range tabs {
		out[i] = tab.ID
	}
	return out
}

func setup(t *testing.T, windows ...[]string) (*memory.Browser, *state.Store) {
	t.Helper()
	b := memory.New()
	for _, urls := range windows {
		b.OpenWindow(urls...)
	}
	snapshot, err := b.Windows(context.Background())
	require.NoError(t, err)
	s := state.NewStore()
	s.Replace(snapshot, 1)
	return b, s
}

func hostOrder(t *testing.T, b *memory.Browser, windowID int) []int {
	t.Helper()
	windows, err := b.Windows(context.Background())
	require.NoError(t, err)
	for _, w := range windows {
		if w.ID == windowID {
			return tabIDs(w.Tabs)
		}
	}
	return nil
}

func TestPlanDropCompactsBeforeInsert(t *testing.T) {
	win := &browser.Window{ID: 1}
	for id := 1; id <= 4; id++ {
		win.Add(&browser.Tab{ID: id}, -1)
	}
	b, d := win.Tabs[1], win.Tabs[3]
	plan := PlanDrop(win, []*browser.Tab{b, d}, win.Tabs[2], true)
	require.Equal(t, 2, plan.Raw)
	require.Equal(t, 1, plan.Adjusted)
	require.Len(t, plan.Steps, 2)
	require.Equal(t, []int{1, 3}, plan.Steps[0].IDs())
	require.Equal(t, 0, plan.Steps[0].Index)
	require.Equal(t, []int{2, 4}, plan.Steps[1].IDs())
	require.Equal(t, 1, plan.Steps[1].Index)
}

func TestPlanDropWithoutDisplacementSkipsCompaction(t *testing.T) {
	win := &browser.Window{ID: 1}
	for id := 1; id <= 4; id++ {
		win.Add(&browser.Tab{ID: id}, -1)
	}
	plan := PlanDrop(win, []*browser.Tab{win.Tabs[3]}, win.Tabs[0], false)
	require.Equal(t, 1, plan.Raw)
	require.Equal(t, 1, plan.Adjusted)
	require.Len(t, plan.Steps, 1)
}

func TestPlanDropAfterLastTabClampsToEnd(t *testing.T) {
	win := &browser.Window{ID: 1}
	for id := 1; id <= 3; id++ {
		win.Add(&browser.Tab{ID: id}, -1)
	}
	plan := PlanDrop(win, []*browser.Tab{win.Tabs[0]}, win.Tabs[2], false)
	require.Equal(t, 3, plan.Raw)
	require.Equal(t, 2, plan.Adjusted)
}

func TestDropReordersStoreAndHost(t *testing.T) {
	b, s := setup(t, []string{"https://a", "https://b", "https://c", "https://d"})
	c := New(s, b)
	c.Selection().Select(s.Tab(2))
	c.Selection().Select(s.Tab(4))
	c.SetDropTarget(3, true)

	plan, err := c.Drop(context.Background(), s.Tab(3))
	require.NoError(t, err)
	require.Equal(t, 1, plan.Adjusted)
	require.Equal(t, []int{1, 2, 4, 3}, tabIDs(s.Window(1).Tabs))
	require.Equal(t, []int{1, 2, 4, 3}, hostOrder(t, b, 1))
	for i, tab := range s.Window(1).Tabs {
		require.Equal(t, i, tab.Index)
	}
}

func TestDropAcrossWindows(t *testing.T) {
	b, s := setup(t, []string{"https://a", "https://b"}, []string{"https://c"})
	c := New(s, b)
	c.DragStart(s.Tab(3))
	c.SetDropTarget(1, false)

	_, err := c.Drop(context.Background(), s.Tab(1))
	require.NoError(t, err)
	require.Equal(t, []int{1, 3, 2}, tabIDs(s.Window(1).Tabs))
	require.Nil(t, s.Window(2))
	require.Equal(t, []int{1, 3, 2}, hostOrder(t, b, 1))
}

func TestDropAtEndAppends(t *testing.T) {
	b, s := setup(t, []string{"https://a", "https://b"}, []string{"https://c"})
	c := New(s, b)
	c.DragStart(s.Tab(1))
	_, err := c.DropAtEnd(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, []int{3, 1}, tabIDs(s.Window(2).Tabs))
	require.Equal(t, []int{3, 1}, hostOrder(t, b, 2))

	_, err = c.DropAtEnd(context.Background(), 99)
	require.ErrorIs(t, err, state.ErrUnknownWindow)
}

func TestDropHostFailureKeepsOptimisticState(t *testing.T) {
	b, s := setup(t, []string{"https://a", "https://b", "https://c"})
	boom := errors.New("boom")
	b.Fail("MoveTabs", boom)
	c := New(s, b)
	c.DragStart(s.Tab(3))
	c.SetDropTarget(1, true)

	_, err := c.Drop(context.Background(), s.Tab(1))
	require.ErrorIs(t, err, boom)
	require.Equal(t, []int{3, 1, 2}, tabIDs(s.Window(1).Tabs))
	require.Equal(t, []int{1, 2, 3}, hostOrder(t, b, 1))
}

func TestClearResetsDragState(t *testing.T) {
	_, s := setup(t, []string{"https://a"})
	c := New(s, nil)
	c.DragStart(s.Tab(1))
	c.DragStart(s.Tab(1))
	require.Len(t, c.Sources(), 1)
	c.SetDropTarget(1, false)
	c.Clear()
	require.Empty(t, c.Sources())
	id, before := c.DropTarget()
	require.Zero(t, id)
	require.True(t, before)
}

func TestRemovedTabPrunedFromDragSelection(t *testing.T) {
	_, s := setup(t, []string{"https://a", "https://b"})
	c := New(s, nil)
	c.DragStart(s.Tab(2))
	s.OnRemoved(2, 1)
	require.Empty(t, c.Sources())
}
