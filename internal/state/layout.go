package state

import (
	"math"

	"github.com/atomicstack/tab-mirror/internal/browser"
)

const (
	// DefaultRowHeight is the rendered height of one tab row.
	DefaultRowHeight = 35.0
	// DefaultOverscan lets a column hold more rows than strictly fit.
	DefaultOverscan = 1.6
	// DefaultHeight is the available height before the renderer reports one.
	DefaultHeight = 600
)

// Capacity returns how many tabs one column holds.
func Capacity(height int, rowHeight, overscan float64) int {
	if height <= 0 || rowHeight <= 0 || overscan <= 0 {
		return 0
	}
	return int(math.Ceil(float64(height) / rowHeight * overscan))
}

// Columns packs windows greedily into columns of at most capacity tabs,
// never splitting a window. A window larger than capacity gets a column of
// its own; empty windows are skipped. The result only references windows.
func Columns(windows []*browser.Window, capacity int) []*browser.Column {
	var columns []*browser.Column
	current := &browser.Column{}
	for _, w := range windows {
		if w.Length() == 0 {
			continue
		}
		if len(current.Windows) == 0 || current.Length()+w.Length() <= capacity {
			current.Add(w)
			continue
		}
		columns = append(columns, current)
		current = &browser.Column{Windows: []*browser.Window{w}}
	}
	if len(current.Windows) > 0 {
		columns = append(columns, current)
	}
	return columns
}
