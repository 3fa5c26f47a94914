package ui

import (
	"fmt"
	"strings"

	"github.com/atomicstack/tab-mirror/internal/browser"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"
)

const (
	minColumnWidth     = 24
	defaultColumnWidth = 40
	// header, search/status, footer
	chromeLines = 3
)

// View implements tea.Model.
func (m *Model) View() string {
	store := m.mirror.Store()
	lines := []string{styles.Header.Render(m.headerText())}
	if store.InitialLoading() {
		lines = append(lines, styles.Loading.Render("Loading windows…"))
	} else {
		lines = append(lines, m.viewColumns()...)
	}
	lines = append(lines, m.statusLine(), m.footerLine())
	return strings.Join(lines, "\n")
}

func (m *Model) headerText() string {
	store := m.mirror.Store()
	parts := []string{
		"tab-mirror",
		plural(store.TabCount(), "tab"),
		plural(len(store.Windows()), "window"),
	}
	if n := m.mirror.Selection().Len(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	if n := m.mirror.Reorder().Selection().Len(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d marked", n))
	}
	if n := len(m.mirror.DuplicatedTabs()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d duplicated", n))
	}
	header := strings.Join(parts, " · ")
	if m.width > 0 {
		header = truncate.StringWithTail(header, uint(m.width), "…")
	}
	return header
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func (m *Model) columnWidth(columns int) int {
	if m.width <= 0 || columns == 0 {
		return defaultColumnWidth
	}
	w := m.width / columns
	if w < minColumnWidth {
		w = minColumnWidth
	}
	return w
}

// bodyLines is the number of terminal rows available to the columns.
func (m *Model) bodyLines() int {
	if m.height <= 0 {
		return 0
	}
	if n := m.height - chromeLines; n > 0 {
		return n
	}
	return 1
}

// resizeLayout converts the body height into layout units for the store.
func (m *Model) resizeLayout() {
	lines := m.bodyLines()
	if lines <= 0 {
		return
	}
	m.mirror.Resize(int(float64(lines) * m.mirror.Store().RowHeight()))
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	m.width = resize.Width
	m.search.Width = resize.Width - 2
	m.help.Width = resize.Width
	if !m.fixedHeight {
		m.height = resize.Height
		m.resizeLayout()
	}
	return nil
}

// viewColumns renders the column partition side by side, scrolled so the
// focused tab stays visible.
func (m *Model) viewColumns() []string {
	store := m.mirror.Store()
	columns := store.Columns()
	if len(columns) == 0 {
		return []string{styles.Info.Render("(no windows)")}
	}
	matched := map[int]bool{}
	for _, tab := range store.MatchedTabs() {
		matched[tab.ID] = true
	}
	width := m.columnWidth(len(columns))
	rendered := make([]string, 0, len(columns))
	focusLine := -1
	for _, col := range columns {
		lines, focus := m.renderColumn(col, width, matched)
		if focus >= 0 {
			focusLine = focus
		}
		rendered = append(rendered, styles.Column.Width(width).Render(strings.Join(lines, "\n")))
	}
	body := strings.Split(lipgloss.JoinHorizontal(lipgloss.Top, rendered...), "\n")
	if m.width > 0 {
		for i, line := range body {
			body[i] = ansi.Truncate(line, m.width, "")
		}
	}
	return clip(body, m.bodyLines(), focusLine)
}

func clip(lines []string, height, focus int) []string {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	offset := 0
	if focus >= height {
		offset = focus - height + 1
	}
	return lines[offset : offset+height]
}

func (m *Model) renderColumn(col *browser.Column, width int, matched map[int]bool) ([]string, int) {
	store := m.mirror.Store()
	focused := 0
	if tab := store.FocusedTab(); tab != nil {
		focused = tab.ID
	}
	counts := m.mirror.URLCounts()
	lines := make([]string, 0, col.Length()+len(col.Windows))
	focusLine := -1
	for _, win := range col.Windows {
		lines = append(lines, m.renderWindowTitle(win, width))
		if !win.ShowTabs {
			lines = append(lines, styles.Loading.Render("  …"))
			continue
		}
		for _, tab := range win.Tabs {
			if !matched[tab.ID] {
				continue
			}
			if tab.ID == focused {
				focusLine = len(lines)
			}
			lines = append(lines, m.renderTab(tab, width, tab.ID == focused, counts[tab.URL]))
		}
	}
	return lines, focusLine
}

func (m *Model) renderWindowTitle(win *browser.Window, width int) string {
	title := fmt.Sprintf("Window %d · %s", win.ID, plural(win.Length(), "tab"))
	style := styles.WindowTitle
	if win.ID == m.mirror.Store().LastFocusedWindowID() {
		title = "▸ " + title
		style = styles.FocusedWindow
	}
	return style.Render(truncate.StringWithTail(title, uint(width), "…"))
}

func (m *Model) renderTab(tab *browser.Tab, width int, focused bool, urlCount int) string {
	var b strings.Builder
	cursor := " "
	if focused {
		cursor = "›"
	}
	b.WriteString(cursor)
	if m.mirror.Selection().Has(tab.ID) {
		b.WriteString(styles.SelectedMarker.Render("●"))
	} else {
		b.WriteString(" ")
	}
	if m.mirror.Reorder().Selection().Has(tab.ID) {
		b.WriteString(styles.DragMarker.Render("≡"))
	} else {
		b.WriteString(" ")
	}
	if tab.Pinned {
		b.WriteString(styles.Pinned.Render("^"))
	} else {
		b.WriteString(" ")
	}
	suffix := ""
	if urlCount > 1 {
		suffix = styles.Duplicate.Render(fmt.Sprintf(" %d×", urlCount))
	}
	title := tab.Title
	if title == "" {
		title = tab.URL
	}
	room := width - ansi.StringWidth(b.String()) - ansi.StringWidth(suffix) - 1
	if room < 1 {
		room = 1
	}
	title = ansi.Truncate(title, room, "…")
	style := styles.Tab
	switch {
	case focused:
		style = styles.FocusedTab
	case tab.Active:
		style = styles.ActiveTab
	}
	b.WriteString(style.Render(title))
	b.WriteString(suffix)
	return b.String()
}

func (m *Model) statusLine() string {
	store := m.mirror.Store()
	if m.searching || store.Query() != "" {
		status := m.search.View()
		if !m.searching {
			status = styles.SearchPrompt.Render("/") + styles.Search.Render(store.Query())
		}
		return fmt.Sprintf("%s  %s", status, styles.Footer.Render(fmt.Sprintf("%d matched", len(store.MatchedTabs()))))
	}
	switch {
	case m.errMsg != "":
		return styles.Error.Render(m.errMsg)
	case m.backendLastErr != "":
		return styles.Error.Render("backend: " + m.backendLastErr)
	}
	if info := m.currentInfo(); info != "" {
		return styles.Info.Render(info)
	}
	return ""
}

func (m *Model) footerLine() string {
	return m.help.ShortHelpView(keys.ShortHelp())
}
