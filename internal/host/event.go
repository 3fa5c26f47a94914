package host

import (
	"fmt"

	"github.com/atomicstack/tab-mirror/internal/browser"
)

// EventKind enumerates the host events the mirror subscribes to.
type EventKind int

const (
	FocusChanged EventKind = iota
	TabCreated
	TabUpdated
	TabActivated
	TabRemoved
	TabMoved
	TabAttached
	TabDetached
	TabReplaced
)

var kindNames = map[EventKind]string{
	FocusChanged: "focus-changed",
	TabCreated:   "tab-created",
	TabUpdated:   "tab-updated",
	TabActivated: "tab-activated",
	TabRemoved:   "tab-removed",
	TabMoved:     "tab-moved",
	TabAttached:  "tab-attached",
	TabDetached:  "tab-detached",
	TabReplaced:  "tab-replaced",
}

func (k EventKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Structural reports whether the event reshuffles tabs across positions or
// windows in a way the partial payload cannot describe safely.
func (k EventKind) Structural() bool {
	switch k {
	case TabMoved, TabAttached, TabDetached, TabReplaced:
		return true
	}
	return false
}

// Event is one notification from the host. Only the fields relevant to Kind
// are set: Tab for TabCreated, Patch for TabUpdated, TabID/WindowID for the
// rest.
type Event struct {
	Kind     EventKind
	TabID    int
	WindowID int
	Tab      browser.Tab
	Patch    browser.TabPatch
	// WindowClosing is set on TabRemoved when the whole window is going away.
	WindowClosing bool
}
