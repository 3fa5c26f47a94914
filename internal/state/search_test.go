package state

import (
	"testing"

	"github.com/atomicstack/tab-mirror/internal/browser"
	"github.com/stretchr/testify/require"
)

func searchable() *Store {
	s := NewStore()
	s.Replace([]browser.Window{
		{ID: 1, Tabs: []*browser.Tab{
			{ID: 1, URL: "https://go.dev/doc", Title: "Documentation"},
			{ID: 2, URL: "https://news.example", Title: "Headlines"},
		}},
		{ID: 2, Tabs: []*browser.Tab{
			{ID: 3, URL: "https://pkg.go.dev", Title: "Packages"},
		}},
	}, 1)
	return s
}

func TestMatchedTabsFuzzyOnTitleAndURL(t *testing.T) {
	s := searchable()
	require.Len(t, s.MatchedTabs(), 3)
	s.SetQuery("go.dev")
	require.Equal(t, []int{1, 3}, ids(s.MatchedTabs()))
	s.SetQuery("HEADL")
	require.Equal(t, []int{2}, ids(s.MatchedTabs()))
	require.Equal(t, "HEADL", s.Query())
}

func TestFocusWrapsOverMatches(t *testing.T) {
	s := searchable()
	require.True(t, s.FocusNext())
	require.Equal(t, 1, s.FocusedTab().ID)
	require.True(t, s.FocusPrev())
	require.Equal(t, 3, s.FocusedTab().ID)
	require.True(t, s.FocusNext())
	require.Equal(t, 1, s.FocusedTab().ID)
	require.False(t, s.Focus(99))
}

func TestQueryClearsFocusThatNoLongerMatches(t *testing.T) {
	s := searchable()
	require.True(t, s.Focus(2))
	s.SetQuery("go.dev")
	require.Nil(t, s.FocusedTab())
}

func TestRemovingFocusedTabClearsFocus(t *testing.T) {
	s := searchable()
	require.True(t, s.Focus(3))
	s.OnRemoved(3, 2)
	require.Nil(t, s.FocusedTab())
	require.True(t, s.FocusPrev())
	require.Equal(t, 2, s.FocusedTab().ID)
}
