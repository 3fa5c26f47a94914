package browser

import (
	"net/url"
	"strings"
)

// WindowTypeNormal is the host's type for ordinary browser windows.
const WindowTypeNormal = "normal"

// Tab mirrors a single host tab. Index is the zero-based position within the
// owning window and is kept contiguous by Window.
type Tab struct {
	ID         int
	WindowID   int
	Index      int
	URL        string
	Title      string
	Pinned     bool
	Active     bool
	FavIconURL string
	Status     string

	// Derived display fields, refreshed by SetURLIcon.
	Domain  string
	IconURL string
}

// TabPatch carries the fields reported by an update event. Nil fields are
// left untouched when merged.
type TabPatch struct {
	URL        *string
	Title      *string
	Pinned     *bool
	Active     *bool
	FavIconURL *string
	Status     *string
}

// Empty reports whether the patch carries no fields.
func (p TabPatch) Empty() bool {
	return p.URL == nil && p.Title == nil && p.Pinned == nil && p.Active == nil && p.FavIconURL == nil && p.Status == nil
}

// Apply merges the patch into the tab in place. Position fields are never
// touched by a patch.
func (t *Tab) Apply(p TabPatch) {
	if p.URL != nil {
		t.URL = *p.URL
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Pinned != nil {
		t.Pinned = *p.Pinned
	}
	if p.Active != nil {
		t.Active = *p.Active
	}
	if p.FavIconURL != nil {
		t.FavIconURL = *p.FavIconURL
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	t.SetURLIcon()
}

// SetURLIcon recomputes the derived display fields from URL and FavIconURL.
func (t *Tab) SetURLIcon() {
	t.Domain = ""
	if parsed, err := url.Parse(t.URL); err == nil {
		t.Domain = parsed.Hostname()
	}
	t.IconURL = strings.TrimSpace(t.FavIconURL)
	if t.IconURL == "" && t.Domain != "" {
		t.IconURL = "https://" + t.Domain + "/favicon.ico"
	}
}

// Clone returns a copy of the tab detached from any window.
func (t *Tab) Clone() *Tab {
	if t == nil {
		return nil
	}
	dup := *t
	return &dup
}

// PatchFromTab builds a patch carrying every mergeable field of tab.
func PatchFromTab(tab Tab) TabPatch {
	return TabPatch{
		URL:        &tab.URL,
		Title:      &tab.Title,
		Pinned:     &tab.Pinned,
		Active:     &tab.Active,
		FavIconURL: &tab.FavIconURL,
		Status:     &tab.Status,
	}
}
