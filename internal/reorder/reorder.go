// Package reorder coordinates drag-to-reorder: it tracks the dragged tab set
// and the hovered drop target, turns a drop into a sequence of moves, and
// applies each move to the store before issuing it to the host.
package reorder

import (
	"context"
	"fmt"

	"github.com/atomicstack/tab-mirror/internal/browser"
	"github.com/atomicstack/tab-mirror/internal/logging/events"
	"github.com/atomicstack/tab-mirror/internal/state"
)

// Mover is the host command a drop issues.
type Mover interface {
	MoveTabs(ctx context.Context, ids []int, windowID, index int) error
}

// Step moves Tabs, in order, into WindowID starting at Index.
type Step struct {
	Tabs     []*browser.Tab
	WindowID int
	Index    int
}

// IDs returns the ids of the tabs the step moves.
func (s Step) IDs() []int {
	ids := make([]int, len(s.Tabs))
	for i, tab := range s.Tabs {
		ids[i] = tab.ID
	}
	return ids
}

// Plan is the resolved form of one drop.
type Plan struct {
	WindowID int
	// Raw is the insertion index relative to the window as it is now.
	Raw int
	// Adjusted is Raw minus the selected tabs in front of it.
	Adjusted int
	Steps    []Step
}

// PlanDrop computes the moves that place sources next to target in win.
// When selected tabs sit in front of the drop point the window's unselected
// tabs are first compacted to the front so Adjusted addresses the right slot.
func PlanDrop(win *browser.Window, sources []*browser.Tab, target *browser.Tab, before bool) Plan {
	raw := target.Index
	if !before {
		raw++
	}
	if raw > win.Length() {
		raw = win.Length()
	}
	if raw < 0 {
		raw = 0
	}
	selected := make(map[int]struct{}, len(sources))
	for _, tab := range sources {
		selected[tab.ID] = struct{}{}
	}
	unselected := func(tabs []*browser.Tab) []*browser.Tab {
		out := make([]*browser.Tab, 0, len(tabs))
		for _, tab := range tabs {
			if _, ok := selected[tab.ID]; !ok {
				out = append(out, tab)
			}
		}
		return out
	}

	plan := Plan{WindowID: win.ID, Raw: raw}
	plan.Adjusted = len(unselected(win.Tabs[:raw]))
	if plan.Adjusted != raw {
		if rest := unselected(win.Tabs); len(rest) > 0 {
			plan.Steps = append(plan.Steps, Step{Tabs: rest, WindowID: win.ID, Index: 0})
		}
	}
	if len(sources) > 0 {
		plan.Steps = append(plan.Steps, Step{Tabs: sources, WindowID: win.ID, Index: plan.Adjusted})
	}
	return plan
}

// Coordinator owns the drag selection and drop target.
type Coordinator struct {
	store  *state.Store
	host   Mover
	drag   *state.Selection
	target int
	before bool
}

// New returns a coordinator whose drag selection is tracked by store so
// removed tabs are pruned from it.
func New(store *state.Store, host Mover) *Coordinator {
	drag := state.NewSelection("drag")
	store.Track(drag)
	return &Coordinator{store: store, host: host, drag: drag, before: true}
}

// Selection exposes the drag selection for toggling from the UI.
func (c *Coordinator) Selection() *state.Selection {
	return c.drag
}

// Sources returns the dragged tabs in on-screen order.
func (c *Coordinator) Sources() []*browser.Tab {
	return c.drag.Sources()
}

// DragStart seeds the drag selection with tab unless it is already part of
// a multi-selection.
func (c *Coordinator) DragStart(tab *browser.Tab) {
	if tab == nil {
		return
	}
	c.drag.Add(tab)
	events.Drag.Start(tab.ID)
}

// SetDropTarget records the hovered tab and which side of it the drop lands.
func (c *Coordinator) SetDropTarget(id int, before bool) {
	c.target = id
	c.before = before
	events.Drag.Target(id, before)
}

// DropTarget returns the recorded target id and side; id is 0 when unset.
func (c *Coordinator) DropTarget() (int, bool) {
	return c.target, c.before
}

// Clear resets the drag selection and the drop target.
func (c *Coordinator) Clear() {
	c.drag.UnselectAll()
	c.target = 0
	c.before = true
	events.Drag.Clear()
}

// Drop moves the drag selection next to target using the recorded side.
// Each step is applied to the store first and then sent to the host; a host
// failure stops the remaining steps and is returned.
func (c *Coordinator) Drop(ctx context.Context, target *browser.Tab) (Plan, error) {
	if target == nil {
		return Plan{}, fmt.Errorf("drop: no target")
	}
	live := c.store.Tab(target.ID)
	if live == nil {
		live = target
	}
	win, err := c.store.TargetWindow(live.WindowID)
	if err != nil {
		return Plan{}, fmt.Errorf("drop: %w", err)
	}
	c.drag.Reconcile(c.store.Tab)
	plan := PlanDrop(win, c.drag.Sources(), live, c.before)
	events.Drag.Drop(live.ID, plan.WindowID, plan.Raw, plan.Adjusted)
	return plan, c.apply(ctx, plan.Steps)
}

// DropAtEnd appends the drag selection to windowID.
func (c *Coordinator) DropAtEnd(ctx context.Context, windowID int) (Plan, error) {
	if _, err := c.store.TargetWindow(windowID); err != nil {
		return Plan{}, fmt.Errorf("drop: %w", err)
	}
	c.drag.Reconcile(c.store.Tab)
	sources := c.drag.Sources()
	plan := Plan{WindowID: windowID, Raw: -1, Adjusted: -1}
	if len(sources) > 0 {
		plan.Steps = []Step{{Tabs: sources, WindowID: windowID, Index: -1}}
	}
	events.Drag.Drop(0, windowID, -1, -1)
	return plan, c.apply(ctx, plan.Steps)
}

func (c *Coordinator) apply(ctx context.Context, steps []Step) error {
	for _, step := range steps {
		if err := c.store.MoveTabs(step.Tabs, step.WindowID, step.Index); err != nil {
			return fmt.Errorf("move tabs: %w", err)
		}
		if c.host == nil {
			continue
		}
		if err := c.host.MoveTabs(ctx, step.IDs(), step.WindowID, step.Index); err != nil {
			events.Action.Error(err)
			return fmt.Errorf("host move tabs: %w", err)
		}
	}
	return nil
}
