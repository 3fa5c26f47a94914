package config

import (
	"fmt"

	"github.com/atomicstack/tab-mirror/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// Watch re-reads the layout keys of the config file at path whenever it
// changes on disk and passes them to fn. fn runs on the watcher goroutine.
func Watch(path string, fn func(rowHeight, overscan float64)) error {
	if path == "" {
		return fmt.Errorf("watch config: no path")
	}
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("watch config %s: %w", path, err)
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		rowHeight, overscan := v.GetFloat64("row-height"), v.GetFloat64("overscan")
		if rowHeight <= 0 || overscan <= 0 {
			logging.Error(fmt.Errorf("config %s: ignoring layout row-height=%g overscan=%g", e.Name, rowHeight, overscan))
			return
		}
		fn(rowHeight, overscan)
	})
	v.WatchConfig()
	return nil
}
