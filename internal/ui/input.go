package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if m.searching {
		return m.handleSearchKey(keyMsg)
	}
	store := m.mirror.Store()
	focused := store.FocusedTab()
	drag := m.mirror.Reorder()

	switch {
	case key.Matches(keyMsg, keys.Quit):
		return tea.Quit
	case key.Matches(keyMsg, keys.Up):
		store.FocusPrev()
	case key.Matches(keyMsg, keys.Down):
		store.FocusNext()
	case key.Matches(keyMsg, keys.Search):
		m.searching = true
		return m.search.Focus()
	case key.Matches(keyMsg, keys.Cancel):
		m.cancel()
	case key.Matches(keyMsg, keys.SelectAll):
		m.mirror.ToggleSelectAll()
	case key.Matches(keyMsg, keys.Close):
		if focused != nil || m.mirror.Selection().Len() > 0 {
			return m.closeCmd()
		}
	case key.Matches(keyMsg, keys.Pin):
		if focused != nil || m.mirror.Selection().Len() > 0 {
			return m.pinCmd()
		}
	case key.Matches(keyMsg, keys.NewWindow):
		return m.newWindowCmd()
	case key.Matches(keyMsg, keys.Dedupe):
		return m.dedupeCmd()
	case key.Matches(keyMsg, keys.Refresh):
		return m.refreshCmd()
	case focused == nil:
		return nil
	case key.Matches(keyMsg, keys.Activate):
		return m.activateCmd(focused)
	case key.Matches(keyMsg, keys.Select):
		m.mirror.Select(focused)
		store.FocusNext()
	case key.Matches(keyMsg, keys.Mark):
		if drag.Selection().Has(focused.ID) {
			drag.Selection().Delete(focused.ID)
		} else {
			drag.DragStart(focused)
		}
	case key.Matches(keyMsg, keys.DropBefore), key.Matches(keyMsg, keys.DropAfter):
		if drag.Selection().Len() == 0 {
			m.setInfo("Nothing marked to move")
			return nil
		}
		return m.dropCmd(focused, key.Matches(keyMsg, keys.DropBefore))
	case key.Matches(keyMsg, keys.DropAtEnd):
		if drag.Selection().Len() == 0 {
			m.setInfo("Nothing marked to move")
			return nil
		}
		return m.dropAtEndCmd(focused.WindowID)
	}
	return nil
}

// cancel backs out of the innermost state: the drag, then the selection,
// then the search query, then the focus cursor.
func (m *Model) cancel() {
	m.errMsg = ""
	switch {
	case m.mirror.Reorder().Selection().Len() > 0:
		m.mirror.Reorder().Clear()
	case m.mirror.Selection().Len() > 0:
		m.mirror.UnselectAll()
	case m.mirror.Store().Query() != "":
		m.search.SetValue("")
		m.mirror.Store().SetQuery("")
	default:
		m.mirror.Store().Defocus()
	}
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.SearchClear):
		m.search.SetValue("")
		m.mirror.Store().SetQuery("")
		return nil
	case key.Matches(msg, keys.SearchDone):
		m.searching = false
		m.search.Blur()
		if msg.Type == tea.KeyEsc {
			m.search.SetValue("")
			m.mirror.Store().SetQuery("")
		}
		return nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.mirror.Store().Query() {
		m.mirror.Store().SetQuery(m.search.Value())
	}
	return cmd
}
