package events

import "github.com/atomicstack/tab-mirror/internal/logging"

type TabTracer struct{}

var Tab = TabTracer{}

func (TabTracer) Created(id, windowID, index int) {
	logging.Trace("tab.created", map[string]interface{}{"id": id, "window": windowID, "index": index})
}

func (TabTracer) Updated(id int) {
	logging.Trace("tab.updated", map[string]interface{}{"id": id})
}

func (TabTracer) Activated(id, windowID int) {
	logging.Trace("tab.activated", map[string]interface{}{"id": id, "window": windowID})
}

func (TabTracer) Removed(id, windowID int) {
	logging.Trace("tab.removed", map[string]interface{}{"id": id, "window": windowID})
}

// Stale records an event that referenced an id missing from the snapshot.
func (TabTracer) Stale(event string, id int) {
	logging.Trace("tab.stale", map[string]interface{}{"event": event, "id": id})
}

func (TabTracer) Close(ids []int) {
	logging.Trace("tab.close", map[string]interface{}{"ids": ids})
}

func (TabTracer) Pin(ids []int, pinned bool) {
	logging.Trace("tab.pin", map[string]interface{}{"ids": ids, "pinned": pinned})
}

func (TabTracer) Focus(id int) {
	logging.Trace("tab.focus", map[string]interface{}{"id": id})
}
