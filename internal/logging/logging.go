package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const logName = "tab-mirror.log"

var (
	mu           sync.Mutex
	traceEnabled bool
	logPath      = defaultPath()
)

// defaultPath places the log in the user cache directory, or the working
// directory when there is none.
func defaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil || dir == "" {
		return logName
	}
	return filepath.Join(dir, "tab-mirror", logName)
}

// Path returns the current log destination.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// Error appends err to the log file with a timestamp.
func Error(err error) {
	if err == nil {
		return
	}
	appendLog("logging", func(w io.Writer) error {
		log.New(w, "", log.LstdFlags).Println(err)
		return nil
	})
}

// SetTraceEnabled toggles emission of structured trace entries.
func SetTraceEnabled(enabled bool) {
	mu.Lock()
	traceEnabled = enabled
	mu.Unlock()
}

// TraceEnabled reports whether trace entries are written.
func TraceEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return traceEnabled
}

// Trace appends a structured JSON entry to the shared log when tracing is enabled.
func Trace(event string, payload interface{}) {
	if !TraceEnabled() {
		return
	}

	entry := struct {
		Time    time.Time   `json:"time"`
		Event   string      `json:"event"`
		Payload interface{} `json:"payload,omitempty"`
	}{
		Time:    time.Now().UTC(),
		Event:   event,
		Payload: payload,
	}

	appendLog("trace logging", func(w io.Writer) error {
		return json.NewEncoder(w).Encode(entry)
	})
}

func appendLog(what string, write func(io.Writer) error) {
	path := Path()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", what, err)
		return
	}
	defer f.Close()
	if err := write(f); err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", what, err)
	}
}

// Configure sets the log destination. Empty values fall back to the user
// cache directory. Directories are created automatically when missing.
func Configure(path string) {
	if strings.TrimSpace(path) == "" {
		path = defaultPath()
	}
	target := path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "unable to create log directory: %v\n", err)
		target = logName
	}
	mu.Lock()
	logPath = target
	mu.Unlock()
}
