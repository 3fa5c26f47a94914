package events

import "github.com/atomicstack/tab-mirror/internal/logging"

type RefreshTracer struct{}

var Refresh = RefreshTracer{}

func (RefreshTracer) Request(reason, decision string) {
	logging.Trace("refresh.request", map[string]interface{}{"reason": reason, "decision": decision})
}

func (RefreshTracer) Run(windows, tabs int) {
	logging.Trace("refresh.run", map[string]interface{}{"windows": windows, "tabs": tabs})
}

func (RefreshTracer) Suspend() {
	logging.Trace("refresh.suspend", nil)
}

func (RefreshTracer) Resume() {
	logging.Trace("refresh.resume", nil)
}

func (RefreshTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("refresh.error", map[string]interface{}{"error": err.Error()})
}
