package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/atomicstack/tab-mirror/internal/backend"
	"github.com/atomicstack/tab-mirror/internal/format/table"
	"github.com/atomicstack/tab-mirror/internal/host"
	"github.com/atomicstack/tab-mirror/internal/host/cdp"
	"github.com/atomicstack/tab-mirror/internal/host/memory"
	"github.com/atomicstack/tab-mirror/internal/logging"
	"github.com/atomicstack/tab-mirror/internal/logging/events"
	"github.com/atomicstack/tab-mirror/internal/mirror"
	"github.com/atomicstack/tab-mirror/internal/state"
	"github.com/atomicstack/tab-mirror/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

// Config describes user-provided application options.
type Config struct {
	Host       string
	RemoteURL  string
	Seed       string
	Height     int
	RowHeight  float64
	Overscan   float64
	Debounce   time.Duration
	Resync     time.Duration
	List       bool
	Verbose    bool
	ConfigPath string

	// WatchLayout, when set, is started once the program runs and reports
	// layout changes from the config file.
	WatchLayout func(fn func(rowHeight, overscan float64)) error `json:"-"`
}

const demoSeed = `
windows:
  - focused: true
    tabs:
      - {url: "https://go.dev/doc/", title: "Documentation - The Go Programming Language", active: true}
      - {url: "https://pkg.go.dev/context", title: "context package"}
      - {url: "https://go.dev/doc/", title: "Documentation - The Go Programming Language"}
      - {url: "https://github.com/charmbracelet/bubbletea", title: "charmbracelet/bubbletea", pinned: true}
  - tabs:
      - {url: "https://news.ycombinator.com/", title: "Hacker News"}
      - {url: "https://lobste.rs/", title: "Lobsters", active: true}
  - tabs:
      - {url: "https://chromedevtools.github.io/devtools-protocol/", title: "Chrome DevTools Protocol"}
`

// openHost builds the host browser selected by cfg.
var openHost = func(cfg Config) (host.API, error) {
	switch cfg.Host {
	case "cdp":
		return cdp.Dial(cfg.RemoteURL)
	case "memory", "":
		var (
			seed memory.Seed
			err  error
		)
		if cfg.Seed != "" {
			seed, err = memory.LoadSeed(cfg.Seed)
		} else {
			seed, err = memory.ParseSeed([]byte(demoSeed))
		}
		if err != nil {
			return nil, err
		}
		return memory.NewFromSeed(seed), nil
	default:
		return nil, fmt.Errorf("unknown host %q", cfg.Host)
	}
}

func newMirror(cfg Config, api host.API) *mirror.Mirror {
	return mirror.New(api,
		mirror.WithDebounce(cfg.Debounce),
		mirror.WithStoreOptions(state.WithLayout(cfg.RowHeight, cfg.Overscan)),
	)
}

// Run bootstraps and executes the Bubble Tea program.
func Run(cfg Config) error {
	api, err := openHost(cfg)
	if err != nil {
		return fmt.Errorf("open host: %w", err)
	}
	defer api.Close()

	m := newMirror(cfg, api)
	if cfg.List {
		return List(context.Background(), m, os.Stdout)
	}

	watcher := backend.NewWatcher(api, cfg.Resync)
	defer watcher.Stop()
	model := ui.NewModel(m, watcher, cfg.Height, cfg.Verbose)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if cfg.WatchLayout != nil {
		err := cfg.WatchLayout(func(rowHeight, overscan float64) {
			program.Send(ui.LayoutMsg{RowHeight: rowHeight, Overscan: overscan})
		})
		if err != nil {
			logging.Error(fmt.Errorf("watch config: %w", err))
		}
	}
	_, err = program.Run()
	events.App.Stop(stopReason(err))
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func stopReason(err error) string {
	if err == nil {
		return "quit"
	}
	return err.Error()
}

// List performs one full refresh and writes every tab as an aligned table.
func List(ctx context.Context, m *mirror.Mirror, w io.Writer) error {
	if err := m.Refresh(ctx); err != nil {
		return err
	}
	counts := m.URLCounts()
	focused := m.Store().LastFocusedWindowID()
	rows := [][]string{{"WINDOW", "TAB", "IDX", "FLAGS", "TITLE", "URL"}}
	for _, win := range m.Windows() {
		for _, tab := range win.Tabs {
			rows = append(rows, []string{
				windowLabel(win.ID, focused),
				strconv.Itoa(tab.ID),
				strconv.Itoa(tab.Index),
				tabFlags(tab.Active, tab.Pinned, counts[tab.URL]),
				tab.Title,
				tab.URL,
			})
		}
	}
	aligns := []table.Alignment{table.AlignRight, table.AlignRight, table.AlignRight}
	for _, line := range table.Format(rows, aligns) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func windowLabel(id, focused int) string {
	if id == focused {
		return "*" + strconv.Itoa(id)
	}
	return strconv.Itoa(id)
}

func tabFlags(active, pinned bool, count int) string {
	flags := ""
	if active {
		flags += "A"
	}
	if pinned {
		flags += "P"
	}
	if count > 1 {
		flags += "D"
	}
	if flags == "" {
		return "-"
	}
	return flags
}
