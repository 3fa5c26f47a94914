package memory

import (
	"fmt"
	"os"

	"github.com/atomicstack/tab-mirror/internal/browser"
	"gopkg.in/yaml.v3"
)

// Seed describes an initial window/tab topology.
type Seed struct {
	Windows []SeedWindow `yaml:"windows"`
	// Self is the position (1-based) of the window treated as this
	// process's own popup; 0 means none.
	Self int `yaml:"self"`
}

type SeedWindow struct {
	Type    string    `yaml:"type"`
	Focused bool      `yaml:"focused"`
	Tabs    []SeedTab `yaml:"tabs"`
}

type SeedTab struct {
	URL    string `yaml:"url"`
	Title  string `yaml:"title"`
	Pinned bool   `yaml:"pinned"`
	Active bool   `yaml:"active"`
}

// LoadSeed reads a YAML seed file.
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes a YAML seed document.
func ParseSeed(data []byte) (Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	for i, w := range seed.Windows {
		if len(w.Tabs) == 0 {
			return Seed{}, fmt.Errorf("seed window %d has no tabs", i+1)
		}
	}
	if seed.Self < 0 || seed.Self > len(seed.Windows) {
		return Seed{}, fmt.Errorf("seed self %d out of range", seed.Self)
	}
	return seed, nil
}

// NewFromSeed builds a browser holding the seeded topology. Seeding does not
// emit events.
func NewFromSeed(seed Seed) *Browser {
	b := New()
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sw := range seed.Windows {
		kind := sw.Type
		if kind == "" {
			kind = browser.WindowTypeNormal
		}
		win := b.newWindow(kind)
		hasActive := false
		for _, st := range sw.Tabs {
			tab := &browser.Tab{ID: b.nextTab, URL: st.URL, Title: st.Title, Pinned: st.Pinned, Active: st.Active && !hasActive}
			if tab.Title == "" {
				tab.Title = st.URL
			}
			hasActive = hasActive || tab.Active
			b.nextTab++
			tab.SetURLIcon()
			win.Add(tab, -1)
		}
		if !hasActive && win.Length() > 0 {
			win.Tabs[0].Active = true
		}
		if sw.Focused {
			b.focused = win.ID
		}
		if seed.Self == i+1 {
			b.self = win.ID
		}
	}
	return b
}
