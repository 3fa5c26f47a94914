package state

import (
	"testing"

	"github.com/atomicstack/tab-mirror/internal/browser"
	"github.com/stretchr/testify/require"
)

func window(id, tabs int) *browser.Window {
	w := &browser.Window{ID: id}
	for i := 0; i < tabs; i++ {
		w.Add(&browser.Tab{ID: id*100 + i}, -1)
	}
	return w
}

func columnIDs(columns []*browser.Column) [][]int {
	out := make([][]int, len(columns))
	for i, col := range columns {
		for _, w := range col.Windows {
			out[i] = append(out[i], w.ID)
		}
	}
	return out
}

func TestCapacity(t *testing.T) {
	require.Equal(t, 28, Capacity(600, DefaultRowHeight, DefaultOverscan))
	require.Equal(t, 10, Capacity(10, 1, 1))
	require.Equal(t, 0, Capacity(0, 1, 1))
	require.Equal(t, 0, Capacity(10, 0, 1))
	require.Equal(t, 0, Capacity(10, 1, -1))
}

func TestColumnsPacksGreedily(t *testing.T) {
	windows := []*browser.Window{window(1, 3), window(2, 2), window(3, 4), window(4, 1)}
	require.Equal(t, [][]int{{1, 2}, {3, 4}}, columnIDs(Columns(windows, 5)))
}

func TestColumnsOversizedWindowGetsOwnColumn(t *testing.T) {
	windows := []*browser.Window{window(1, 1), window(2, 9), window(3, 1)}
	require.Equal(t, [][]int{{1}, {2}, {3}}, columnIDs(Columns(windows, 3)))
}

func TestColumnsZeroCapacityOneWindowEach(t *testing.T) {
	windows := []*browser.Window{window(1, 1), window(2, 1)}
	require.Equal(t, [][]int{{1}, {2}}, columnIDs(Columns(windows, 0)))
}

func TestColumnsSkipEmptyWindows(t *testing.T) {
	windows := []*browser.Window{window(1, 0), window(2, 1), window(3, 0)}
	require.Equal(t, [][]int{{2}}, columnIDs(Columns(windows, 5)))
	require.Empty(t, Columns(nil, 5))
}

func TestColumnsStableForSameInput(t *testing.T) {
	windows := []*browser.Window{window(1, 2), window(2, 2), window(3, 2)}
	first := columnIDs(Columns(windows, 4))
	require.Equal(t, first, columnIDs(Columns(windows, 4)))
}
