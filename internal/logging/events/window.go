package events

import "github.com/atomicstack/tab-mirror/internal/logging"

type WindowTracer struct{}

var Window = WindowTracer{}

func (WindowTracer) Focus(windowID int) {
	logging.Trace("window.focus", map[string]interface{}{"window": windowID})
}

func (WindowTracer) Mounted(windowID int) {
	logging.Trace("window.mounted", map[string]interface{}{"window": windowID})
}

func (WindowTracer) Dropped(windowID int) {
	logging.Trace("window.dropped", map[string]interface{}{"window": windowID})
}

func (WindowTracer) Layout(columns, capacity, height int) {
	logging.Trace("window.layout", map[string]interface{}{"columns": columns, "capacity": capacity, "height": height})
}

func (WindowTracer) Create(ids []int) {
	logging.Trace("window.create", map[string]interface{}{"tabs": ids})
}

func (WindowTracer) Move(ids []int, windowID, index int) {
	logging.Trace("window.move", map[string]interface{}{"tabs": ids, "window": windowID, "index": index})
}
