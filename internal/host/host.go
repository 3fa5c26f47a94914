// Package host defines the contract between the mirror and the browser that
// owns the real windows and tabs. Commands are blocking calls; mutations made
// by anyone (including this process) are reported back on the event stream.
package host

import (
	"context"
	"errors"

	"github.com/atomicstack/tab-mirror/internal/browser"
)

var (
	// ErrUnsupported is returned for commands the host cannot perform.
	ErrUnsupported = errors.New("host: command not supported")
	// ErrClosed is returned once the host connection has been shut down.
	ErrClosed = errors.New("host: closed")
)

// NoWindow is the window id hosts report when focus leaves every window.
const NoWindow = -1

// TabRef identifies a tab handed to CreateWindow.
type TabRef struct {
	ID     int
	Pinned bool
}

// API is the asynchronous command/event surface of a host browser.
type API interface {
	// Windows enumerates every window with its tabs populated.
	Windows(ctx context.Context) ([]browser.Window, error)
	Tab(ctx context.Context, id int) (browser.Tab, error)
	LastFocusedWindowID(ctx context.Context) (int, error)
	// ActivateTab marks the tab selected within its window.
	ActivateTab(ctx context.Context, id int) error
	SetPinned(ctx context.Context, id int, pinned bool) error
	RemoveTabs(ctx context.Context, ids []int) error
	FocusWindow(ctx context.Context, windowID int) error
	// MoveTabs moves ids, in order, into windowID starting at index. An index
	// of -1 appends each tab to the end.
	MoveTabs(ctx context.Context, ids []int, windowID, index int) error
	// CreateWindow asks the host to open a new window carrying tabs and
	// returns once the request is acknowledged.
	CreateWindow(ctx context.Context, tabs []TabRef) error
	// IsSelf reports whether windowID hosts this process's own surface.
	IsSelf(windowID int) bool
	Events() <-chan Event
	Close() error
}
