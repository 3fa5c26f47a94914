package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/atomicstack/tab-mirror/internal/backend"
	"github.com/atomicstack/tab-mirror/internal/host/memory"
	"github.com/atomicstack/tab-mirror/internal/mirror"
	tea "github.com/charmbracelet/bubbletea"
)

const testSeed = `
windows:
  - focused: true
    tabs:
      - {url: "https://a.test/", title: "Alpha"}
      - {url: "https://b.test/", title: "Beta"}
      - {url: "https://c.test/", title: "Gamma"}
      - {url: "https://d.test/", title: "Delta"}
  - tabs:
      - {url: "https://e.test/", title: "Echo"}
`

func newHarness(t *testing.T, verbose bool) (*Harness, *memory.Browser) {
	t.Helper()
	seed, err := memory.ParseSeed([]byte(testSeed))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	b := memory.NewFromSeed(seed)
	h := NewHarness(NewModel(mirror.New(b), nil, 0, verbose))
	h.Init()
	return h, b
}

func windowTabs(h *Harness, windowID int) []int {
	win := h.Model().mirror.Store().Window(windowID)
	if win == nil {
		return nil
	}
	ids := make([]int, 0, win.Length())
	for _, tab := range win.Tabs {
		ids = append(ids, tab.ID)
	}
	return ids
}

func TestInitLoadsAndMountsEveryWindow(t *testing.T) {
	h, _ := newHarness(t, false)
	store := h.Model().mirror.Store()
	if store.InitialLoading() {
		t.Fatalf("expected initial load to finish")
	}
	for _, win := range store.Windows() {
		if !win.ShowTabs {
			t.Fatalf("window %d not mounted", win.ID)
		}
	}
	view := h.View()
	for _, want := range []string{"5 tabs", "2 windows", "Window 1", "Alpha", "Echo"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestCloseFocusedTab(t *testing.T) {
	h, b := newHarness(t, false)
	h.Keys("j", "d")
	if _, err := b.Tab(context.Background(), 1); err == nil {
		t.Fatalf("expected tab 1 closed on the host")
	}
	store := h.Model().mirror.Store()
	if store.Tab(1) != nil {
		t.Fatalf("expected tab 1 removed from the snapshot")
	}
	if focused := store.FocusedTab(); focused == nil || focused.ID != 2 {
		t.Fatalf("expected focus on tab 2, got %+v", focused)
	}
}

func TestSelectionMovesToNewWindow(t *testing.T) {
	h, _ := newHarness(t, false)
	h.Keys("j", " ", "n")
	m := h.Model().mirror
	if m.Selection().Len() != 0 {
		t.Fatalf("expected selection cleared after new window")
	}
	windows := m.Windows()
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}
	last := windows[len(windows)-1]
	if last.Length() != 1 || last.Tabs[0].ID != 1 {
		t.Fatalf("expected tab 1 alone in the new window, got %+v", last.Tabs)
	}
}

func TestMarkAndDropReorders(t *testing.T) {
	h, b := newHarness(t, false)
	h.Keys("j", "j", "m", "j", "j", "m", "k", "[")
	if got := windowTabs(h, 1); len(got) != 4 || got[0] != 1 || got[1] != 2 || got[2] != 4 || got[3] != 3 {
		t.Fatalf("unexpected order %v", got)
	}
	windows, err := b.Windows(context.Background())
	if err != nil {
		t.Fatalf("host windows: %v", err)
	}
	if windows[0].Tabs[2].ID != 4 {
		t.Fatalf("host not reordered: %+v", windows[0].Tabs)
	}
	if h.Model().mirror.Reorder().Selection().Len() != 0 {
		t.Fatalf("expected drag selection cleared")
	}
}

func TestDropWithoutMarkIsInfo(t *testing.T) {
	h, _ := newHarness(t, false)
	h.Keys("j", "]")
	if !strings.Contains(h.View(), "Nothing marked") {
		t.Fatalf("expected hint in view:\n%s", h.View())
	}
}

func TestSearchFiltersAndEscClears(t *testing.T) {
	h, _ := newHarness(t, false)
	h.Keys("/", "g", "a", "m", "enter")
	store := h.Model().mirror.Store()
	if store.Query() != "gam" {
		t.Fatalf("expected query gam, got %q", store.Query())
	}
	view := h.View()
	if !strings.Contains(view, "Gamma") || strings.Contains(view, "Beta") {
		t.Fatalf("unexpected filtered view:\n%s", view)
	}
	if !strings.Contains(view, "1 matched") {
		t.Fatalf("expected match count in view:\n%s", view)
	}
	h.Keys("esc")
	if store.Query() != "" {
		t.Fatalf("expected esc to clear the query, got %q", store.Query())
	}
}

func TestActionErrorIsShown(t *testing.T) {
	h, b := newHarness(t, false)
	b.Fail("RemoveTabs", errors.New("boom"))
	h.Keys("j", "d")
	if !strings.Contains(h.View(), "boom") {
		t.Fatalf("expected error in view:\n%s", h.View())
	}
	if h.Model().mirror.Store().Tab(1) == nil {
		t.Fatalf("failed close must keep the tab")
	}
}

func TestVerboseShowsInfo(t *testing.T) {
	h, _ := newHarness(t, true)
	h.Keys("j", "p")
	if !strings.Contains(h.View(), "Toggled pin") {
		t.Fatalf("expected info in view:\n%s", h.View())
	}
	if !h.Model().mirror.Store().Tab(1).Pinned {
		t.Fatalf("expected tab 1 pinned")
	}
}

func TestBackendEventPatchesSnapshot(t *testing.T) {
	h, b := newHarness(t, false)
	if _, err := b.OpenTab(2, "https://f.test/", "Foxtrot", -1); err != nil {
		t.Fatalf("open tab: %v", err)
	}
	h.Send(backendEventMsg{event: backend.Event{Kind: backend.KindHost, Host: <-b.Events()}})
	if got := h.Model().mirror.TabCount(); got != 6 {
		t.Fatalf("expected 6 tabs, got %d", got)
	}
	if !strings.Contains(h.View(), "Foxtrot") {
		t.Fatalf("expected new tab in view:\n%s", h.View())
	}
}

func TestWindowSizeAndLayoutResizeStore(t *testing.T) {
	h, _ := newHarness(t, false)
	store := h.Model().mirror.Store()
	h.Send(tea.WindowSizeMsg{Width: 100, Height: 13})
	if store.Height() != 350 {
		t.Fatalf("expected height 350, got %d", store.Height())
	}
	h.Send(LayoutMsg{RowHeight: 10, Overscan: 1})
	if store.RowHeight() != 10 || store.Height() != 100 {
		t.Fatalf("expected relayout at row height 10, got %g/%d", store.RowHeight(), store.Height())
	}
}

func TestFixedHeightIgnoresTerminal(t *testing.T) {
	b := memory.New()
	b.OpenWindow("https://a.test/")
	model := NewModel(mirror.New(b), nil, 20, false)
	store := model.mirror.Store()
	if store.Height() != 17*35 {
		t.Fatalf("expected fixed height, got %d", store.Height())
	}
	model.Update(tea.WindowSizeMsg{Width: 80, Height: 50})
	if store.Height() != 17*35 {
		t.Fatalf("terminal resize must not change a fixed height, got %d", store.Height())
	}
}

func TestClipKeepsFocusVisible(t *testing.T) {
	lines := []string{"0", "1", "2", "3", "4", "5"}
	got := clip(lines, 3, 4)
	if strings.Join(got, "") != "234" {
		t.Fatalf("unexpected clip %v", got)
	}
	if got := clip(lines, 3, 1); strings.Join(got, "") != "012" {
		t.Fatalf("unexpected clip %v", got)
	}
}
