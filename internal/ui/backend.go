package ui

import (
	"time"

	"github.com/atomicstack/tab-mirror/internal/backend"
	"github.com/atomicstack/tab-mirror/internal/logging"
	tea "github.com/charmbracelet/bubbletea"
)

func waitForBackendEvent(w *backend.Watcher) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-w.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

// initialRefreshMsg triggers the first full refresh.
type initialRefreshMsg struct{}

// mountMsg shows the next window whose tabs are still hidden.
type mountMsg struct{}

type refreshDueMsg struct{}

// LayoutMsg changes the column layout constants at runtime.
type LayoutMsg struct {
	RowHeight float64
	Overscan  float64
}

func mountCmd() tea.Msg { return mountMsg{} }

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	m.applyBackendEvent(eventMsg.event)
	if m.backend != nil {
		return waitForBackendEvent(m.backend)
	}
	return nil
}

func (m *Model) handleBackendDoneMsg(msg tea.Msg) tea.Cmd {
	m.backend = nil
	return nil
}

func (m *Model) applyBackendEvent(evt backend.Event) {
	res := m.dispatcher.Handle(m.ctx, evt)
	if res.Err != nil {
		m.backendLastErr = res.Err.Error()
		logging.Error(res.Err)
		return
	}
	m.backendLastErr = ""
}

func (m *Model) handleInitialRefreshMsg(msg tea.Msg) tea.Cmd {
	if err := m.mirror.Refresh(m.ctx); err != nil {
		logging.Error(err)
		m.errMsg = err.Error()
		return nil
	}
	return mountCmd
}

// handleMountMsg mounts one window per update so large snapshots render
// progressively.
func (m *Model) handleMountMsg(msg tea.Msg) tea.Cmd {
	if m.mirror.Store().WindowMounted() {
		return mountCmd
	}
	return nil
}

// handleRefreshDueMsg fires the deferred refresh. When it is not due the
// tick stays armed; a moved deadline is re-armed by scheduleRefresh.
func (m *Model) handleRefreshDueMsg(msg tea.Msg) tea.Cmd {
	ran, err := m.mirror.FireDue(m.ctx)
	if ran {
		m.armed = time.Time{}
	}
	if err != nil {
		logging.Error(err)
		m.backendLastErr = err.Error()
	}
	return nil
}

// scheduleRefresh returns a tick for a pending deferred refresh unless one
// is already armed for the same deadline.
func (m *Model) scheduleRefresh() tea.Cmd {
	deadline, ok := m.mirror.RefreshDeadline()
	if !ok || deadline.Equal(m.armed) {
		return nil
	}
	m.armed = deadline
	wait := time.Until(deadline)
	if wait < 0 {
		wait = 0
	}
	return tea.Tick(wait, func(time.Time) tea.Msg { return refreshDueMsg{} })
}

func (m *Model) handleLayoutMsg(msg tea.Msg) tea.Cmd {
	layout, ok := msg.(LayoutMsg)
	if !ok {
		return nil
	}
	m.mirror.Store().SetLayout(layout.RowHeight, layout.Overscan)
	m.resizeLayout()
	return nil
}
