// Package driver defines the capability surface the runtime expects from a
// native windowing toolkit. The runtime owns exactly one Driver and is the
// only caller of every method below except Events; implementations may
// therefore assume single-threaded access from the event-loop goroutine.
package driver

import "shoji/window"

// ProtocolHandler serves content for a registered custom URI scheme.
type ProtocolHandler func(url string) ([]byte, error)

// CreateOptions carries everything needed to materialize a native
// window/webview pair. The runtime builds it from a pending window
// description, wrapping application handlers into the id-addressed
// callbacks below.
type CreateOptions struct {
	Attributes    window.Attributes
	URL           string
	DataDirectory string
	InitScripts   []string
	Protocols     map[string]ProtocolHandler

	// OnRPC is invoked synchronously on the event-loop thread for every
	// RPC call from web content. The native layer never receives a direct
	// response through this path.
	OnRPC func(id window.ID, req window.RPCRequest)

	// OnFileDrop returns whether the drop event was consumed.
	OnFileDrop func(id window.ID, event window.FileDropEvent) bool
}

// Window is a live native window. All getters report the native object's
// current state; all setters mutate it in place.
type Window interface {
	ID() window.ID

	ScaleFactor() float64
	InnerPosition() (window.PhysicalPosition, error)
	OuterPosition() (window.PhysicalPosition, error)
	InnerSize() window.PhysicalSize
	OuterSize() window.PhysicalSize
	IsFullscreen() bool
	IsMaximized() bool
	IsDecorated() bool
	IsResizable() bool
	IsVisible() bool
	CurrentMonitor() *window.Monitor
	PrimaryMonitor() *window.Monitor
	AvailableMonitors() []window.Monitor

	SetResizable(resizable bool)
	SetTitle(title string)
	SetMaximized(maximized bool)
	SetMinimized(minimized bool)
	SetVisible(visible bool)
	SetDecorations(decorations bool)
	SetAlwaysOnTop(alwaysOnTop bool)
	SetSize(size window.Size)
	SetMinSize(size window.Size)
	SetMaxSize(size window.Size)
	SetPosition(position window.Position)
	SetFullscreen(fullscreen bool)
	SetFocus()
	SetIcon(icon []byte)
	SetSkipTaskbar(skip bool)
	StartDragging()

	// Destroy releases the native window. The id becomes eligible for
	// reuse only after this returns.
	Destroy()
}

// Webview is the webview attached to a window. EvalScript queues source
// for execution; FlushScripts runs whatever has been queued and is called
// once per event-loop tick.
type Webview interface {
	EvalScript(source string) error
	FlushScripts() error
	Resize() error
	Print() error
}

// MenuOrigin distinguishes where a menu selection came from.
type MenuOrigin int

const (
	OriginMenubar MenuOrigin = iota
	OriginTray
)

// Event is a native event surfaced to the runtime loop.
type Event interface {
	isDriverEvent()
}

// WindowEvent wraps a translated native window event with the identity of
// the window that produced it.
type WindowEvent struct {
	ID    window.ID
	Event window.Event
}

// MenuEvent is a native menu selection from the menubar or the tray.
type MenuEvent struct {
	ItemID string
	Origin MenuOrigin
}

func (WindowEvent) isDriverEvent() {}
func (MenuEvent) isDriverEvent()   {}

// Driver is the opaque toolkit handle the runtime drives.
type Driver interface {
	// CreateWindow materializes a native window with an attached webview.
	// Must be called from the event-loop thread.
	CreateWindow(opts CreateOptions) (Window, Webview, error)

	// Events delivers native events in arrival order. The channel is
	// never closed by the driver.
	Events() <-chan Event
}
