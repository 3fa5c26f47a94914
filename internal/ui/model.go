package ui

import (
	"context"
	"reflect"
	"time"

	"github.com/atomicstack/tab-mirror/internal/backend"
	"github.com/atomicstack/tab-mirror/internal/data/dispatcher"
	"github.com/atomicstack/tab-mirror/internal/mirror"
	"github.com/atomicstack/tab-mirror/internal/theme"
	"github.com/atomicstack/tab-mirror/internal/ui/command"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Model implements the Bubble Tea model for the tab mirror.
type Model struct {
	ctx        context.Context
	mirror     *mirror.Mirror
	dispatcher *dispatcher.Dispatcher
	backend    *backend.Watcher
	bus        *command.Bus

	search    textinput.Model
	searching bool
	help      help.Model

	width       int
	height      int
	fixedHeight bool
	verbose     bool

	errMsg         string
	infoMsg        string
	infoExpire     time.Time
	backendLastErr string

	// armed is the refresh deadline a tick is already scheduled for.
	armed time.Time

	handlers map[reflect.Type]msgHandler
}

// NewModel initialises the UI over m. A positive height pins the layout
// height instead of following the terminal.
func NewModel(m *mirror.Mirror, watcher *backend.Watcher, height int, verbose bool) *Model {
	ctx := context.Background()
	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "search tabs"
	search.PromptStyle = styles.SearchPrompt.Copy()
	search.TextStyle = styles.Search.Copy()
	search.Cursor.SetMode(cursor.CursorStatic)
	model := &Model{
		ctx:        ctx,
		mirror:     m,
		dispatcher: dispatcher.New(m),
		backend:    watcher,
		bus:        command.New(ctx),
		search:     search,
		help:       help.New(),
		verbose:    verbose,
	}
	if height > 0 {
		model.height = height
		model.fixedHeight = true
		model.resizeLayout()
	}
	model.registerHandlers()
	return model
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		func() tea.Msg { return initialRefreshMsg{} },
	}
	if m.backend != nil {
		cmds = append(cmds, waitForBackendEvent(m.backend))
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 2)
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, m.finishUpdate(cmds)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(initialRefreshMsg{}): m.handleInitialRefreshMsg,
		reflect.TypeOf(mountMsg{}):          m.handleMountMsg,
		reflect.TypeOf(refreshDueMsg{}):     m.handleRefreshDueMsg,
		reflect.TypeOf(LayoutMsg{}):         m.handleLayoutMsg,
		reflect.TypeOf(command.Result{}):    m.handleActionResultMsg,
		reflect.TypeOf(backendEventMsg{}):   m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):    m.handleBackendDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

// finishUpdate arms a tick for any refresh the handlers left pending.
func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if cmd := m.scheduleRefresh(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	}
	return tea.Batch(cmds...)
}
