package runtime

import (
	"sync"

	"shoji/driver"
	"shoji/window"
)

// The command envelope. Exactly three things cross the thread boundary:
// window commands, webview commands, and window-creation requests. The
// envelope carries no ordering guarantee relative to native UI events; it
// is merged into the same single-threaded loop, one item per tick.
type message interface {
	isMessage()
}

type windowMsg struct {
	id  window.ID
	cmd windowCmd
}

type webviewMsg struct {
	id  window.ID
	cmd webviewCmd
}

type createWindowMsg struct {
	handler *createHandler
	reply   chan createResult
}

func (windowMsg) isMessage()       {}
func (webviewMsg) isMessage()      {}
func (createWindowMsg) isMessage() {}

type createResult struct {
	id  window.ID
	err error
}

// windowCmd is one window-scoped command. Getters and setters share the
// type so both flow through the same queue and apply in submission order.
// abort resolves any pending reply when the target window is gone; for
// setters it is a no-op, which makes a dead-window setter a silent drop.
type windowCmd interface {
	abort(err error)
	apply(w driver.Window)
}

type result[T any] struct {
	value T
	err   error
}

// getterCmd queries the native window and sends the answer on a one-shot
// reply channel. The channel is buffered so the event loop never blocks on
// a caller that gave up.
type getterCmd[T any] struct {
	query func(w driver.Window) (T, error)
	reply chan result[T]
}

func (c getterCmd[T]) abort(err error) {
	c.reply <- result[T]{err: err}
}

func (c getterCmd[T]) apply(w driver.Window) {
	v, err := c.query(w)
	c.reply <- result[T]{value: v, err: err}
}

// setter is embedded by every fire-and-forget command.
type setter struct{}

func (setter) abort(error) {}

type setResizableCmd struct {
	setter
	resizable bool
}

type setTitleCmd struct {
	setter
	title string
}

type maximizeCmd struct{ setter }
type unmaximizeCmd struct{ setter }
type minimizeCmd struct{ setter }
type unminimizeCmd struct{ setter }
type showCmd struct{ setter }
type hideCmd struct{ setter }

// closeCmd is applied by the loop itself: it removes the window from the
// live table and may terminate the loop check, so apply is a no-op here.
type closeCmd struct{ setter }

type setDecorationsCmd struct {
	setter
	decorations bool
}

type setAlwaysOnTopCmd struct {
	setter
	alwaysOnTop bool
}

type setSizeCmd struct {
	setter
	size window.Size
}

type setMinSizeCmd struct {
	setter
	size window.Size
}

type setMaxSizeCmd struct {
	setter
	size window.Size
}

type setPositionCmd struct {
	setter
	position window.Position
}

type setFullscreenCmd struct {
	setter
	fullscreen bool
}

type setFocusCmd struct{ setter }

type setIconCmd struct {
	setter
	icon []byte
}

type setSkipTaskbarCmd struct {
	setter
	skip bool
}

type dragWindowCmd struct{ setter }

func (c setResizableCmd) apply(w driver.Window)   { w.SetResizable(c.resizable) }
func (c setTitleCmd) apply(w driver.Window)       { w.SetTitle(c.title) }
func (maximizeCmd) apply(w driver.Window)         { w.SetMaximized(true) }
func (unmaximizeCmd) apply(w driver.Window)       { w.SetMaximized(false) }
func (minimizeCmd) apply(w driver.Window)         { w.SetMinimized(true) }
func (unminimizeCmd) apply(w driver.Window)       { w.SetMinimized(false) }
func (showCmd) apply(w driver.Window)             { w.SetVisible(true) }
func (hideCmd) apply(w driver.Window)             { w.SetVisible(false) }
func (closeCmd) apply(driver.Window)              {}
func (c setDecorationsCmd) apply(w driver.Window) { w.SetDecorations(c.decorations) }
func (c setAlwaysOnTopCmd) apply(w driver.Window) { w.SetAlwaysOnTop(c.alwaysOnTop) }
func (c setSizeCmd) apply(w driver.Window)        { w.SetSize(c.size) }
func (c setMinSizeCmd) apply(w driver.Window)     { w.SetMinSize(c.size) }
func (c setMaxSizeCmd) apply(w driver.Window)     { w.SetMaxSize(c.size) }
func (c setPositionCmd) apply(w driver.Window)    { w.SetPosition(c.position) }
func (c setFullscreenCmd) apply(w driver.Window)  { w.SetFullscreen(c.fullscreen) }
func (setFocusCmd) apply(w driver.Window)         { w.SetFocus() }
func (c setIconCmd) apply(w driver.Window)        { w.SetIcon(c.icon) }
func (c setSkipTaskbarCmd) apply(w driver.Window) { w.SetSkipTaskbar(c.skip) }
func (dragWindowCmd) apply(w driver.Window)       { w.StartDragging() }

// webviewCmd is applied to the webview attached to a window id.
type webviewCmd interface {
	isWebviewCmd()
}

type evaluateScriptCmd struct {
	source string
}

type printCmd struct{}

func (evaluateScriptCmd) isWebviewCmd() {}
func (printCmd) isWebviewCmd()          {}

// createHandler holds the one-shot window construction closure. take
// hands out the closure at most once; the mutex-guarded slot preserves
// the consumed-exactly-once contract even if the message were duplicated.
type createHandler struct {
	mu sync.Mutex
	fn func(drv driver.Driver) (driver.Window, driver.Webview, error)
}

func newCreateHandler(fn func(drv driver.Driver) (driver.Window, driver.Webview, error)) *createHandler {
	return &createHandler{fn: fn}
}

func (h *createHandler) take() (func(drv driver.Driver) (driver.Window, driver.Webview, error), bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn := h.fn
	h.fn = nil
	return fn, fn != nil
}
