package events

import "github.com/atomicstack/tab-mirror/internal/logging"

type SelectionTracer struct{}

type DragTracer struct{}

var (
	Selection = SelectionTracer{}
	Drag      = DragTracer{}
)

func (SelectionTracer) Toggle(name string, id int, selected bool) {
	logging.Trace("selection.toggle", map[string]interface{}{"selection": name, "id": id, "selected": selected})
}

func (SelectionTracer) All(name string, count int) {
	logging.Trace("selection.all", map[string]interface{}{"selection": name, "count": count})
}

func (SelectionTracer) Clear(name string) {
	logging.Trace("selection.clear", map[string]interface{}{"selection": name})
}

func (SelectionTracer) Prune(name string, ids []int) {
	logging.Trace("selection.prune", map[string]interface{}{"selection": name, "ids": ids})
}

func (DragTracer) Start(id int) {
	logging.Trace("drag.start", map[string]interface{}{"id": id})
}

func (DragTracer) Target(id int, before bool) {
	logging.Trace("drag.target", map[string]interface{}{"id": id, "before": before})
}

func (DragTracer) Drop(target, windowID, raw, adjusted int) {
	logging.Trace("drag.drop", map[string]interface{}{"target": target, "window": windowID, "raw": raw, "adjusted": adjusted})
}

func (DragTracer) Clear() {
	logging.Trace("drag.clear", nil)
}
