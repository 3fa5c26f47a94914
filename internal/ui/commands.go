package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/atomicstack/tab-mirror/internal/browser"
	"github.com/atomicstack/tab-mirror/internal/logging/events"
	"github.com/atomicstack/tab-mirror/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) run(label string, handler command.Action) tea.Cmd {
	return m.bus.Execute(command.Request{Label: label, Handler: handler})
}

func (m *Model) handleActionResultMsg(msg tea.Msg) tea.Cmd {
	result, ok := msg.(command.Result)
	if !ok {
		return nil
	}
	if result.Err != nil {
		m.errMsg = fmt.Sprintf("%s: %v", result.Label, result.Err)
		m.forceClearInfo()
		events.Action.Error(result.Err)
		return nil
	}
	m.errMsg = ""
	if result.Info != "" && m.verbose {
		m.setInfo(result.Info)
	} else {
		m.forceClearInfo()
	}
	events.Action.Success(result.Info)
	return nil
}

func (m *Model) activateCmd(tab *browser.Tab) tea.Cmd {
	return m.run("activate", func(ctx context.Context) (string, error) {
		if err := m.mirror.Activate(ctx, tab); err != nil {
			return "", err
		}
		return fmt.Sprintf("Activated %s", tab.Title), nil
	})
}

func (m *Model) closeCmd() tea.Cmd {
	count := m.mirror.Selection().Len()
	return m.run(m.mirror.CloseTitle(), func(ctx context.Context) (string, error) {
		if err := m.mirror.RemoveSelected(ctx); err != nil {
			return "", err
		}
		if count == 0 {
			count = 1
		}
		return fmt.Sprintf("Closed %d tab(s)", count), nil
	})
}

func (m *Model) pinCmd() tea.Cmd {
	return m.run("pin", func(ctx context.Context) (string, error) {
		return "Toggled pin", m.mirror.TogglePin(ctx)
	})
}

// newWindowCmd moves the bulk selection, or the focused tab, into a new
// window.
func (m *Model) newWindowCmd() tea.Cmd {
	tabs := m.mirror.Selection().Sources()
	if len(tabs) == 0 {
		if tab := m.mirror.Store().FocusedTab(); tab != nil {
			tabs = []*browser.Tab{tab}
		}
	}
	if len(tabs) == 0 {
		return nil
	}
	return m.run("new window", func(ctx context.Context) (string, error) {
		if err := m.mirror.CreateWindow(ctx, tabs); err != nil {
			return "", err
		}
		m.mirror.UnselectAll()
		return fmt.Sprintf("Moved %d tab(s) to a new window", len(tabs)), nil
	})
}

func (m *Model) dedupeCmd() tea.Cmd {
	dupes := len(m.mirror.DuplicatedTabs())
	return m.run("close duplicates", func(ctx context.Context) (string, error) {
		before := m.mirror.TabCount()
		if err := m.mirror.CleanDuplicatedTabs(ctx); err != nil {
			return "", err
		}
		return fmt.Sprintf("Closed %d of %d duplicated tab(s)", before-m.mirror.TabCount(), dupes), nil
	})
}

func (m *Model) dropCmd(target *browser.Tab, before bool) tea.Cmd {
	return m.run("drop", func(ctx context.Context) (string, error) {
		plan, err := m.mirror.Drop(ctx, target, before)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Moved tabs to window %d at %d", plan.WindowID, plan.Adjusted), nil
	})
}

func (m *Model) dropAtEndCmd(windowID int) tea.Cmd {
	return m.run("drop", func(ctx context.Context) (string, error) {
		if _, err := m.mirror.DropAtEnd(ctx, windowID); err != nil {
			return "", err
		}
		return fmt.Sprintf("Moved tabs to the end of window %d", windowID), nil
	})
}

func (m *Model) refreshCmd() tea.Cmd {
	return m.run("refresh", func(ctx context.Context) (string, error) {
		decision, err := m.mirror.RequestFullRefresh(ctx, "user")
		return fmt.Sprintf("Refresh %s", decision), err
	})
}

func (m *Model) setInfo(message string) {
	m.infoMsg = message
	m.infoExpire = time.Now().Add(5 * time.Second)
}

func (m *Model) forceClearInfo() {
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) currentInfo() string {
	if m.infoMsg != "" && !m.infoExpire.IsZero() && time.Now().After(m.infoExpire) {
		m.forceClearInfo()
	}
	return m.infoMsg
}
