package runtime

import (
	"github.com/google/uuid"

	"shoji/driver"
	errs "shoji/internal/infrastructure/errors"
	"shoji/window"
)

// Dispatcher is the per-window capability object. It is a small value,
// freely copyable and safe to use from any goroutine; every operation
// turns into a message to the event loop.
//
// Getters block the calling goroutine until the event loop produces the
// reply. Never call a getter (or CreateWindow) from the event-loop thread
// itself: the loop would be waiting on a reply only it can produce.
type Dispatcher struct {
	id  window.ID
	ctx *dispatchContext
}

// WindowID returns the identity of the window this dispatcher controls.
func (d Dispatcher) WindowID() window.ID { return d.id }

func getValue[T any](d Dispatcher, query func(w driver.Window) (T, error)) (T, error) {
	var zero T
	reply := make(chan result[T], 1)
	cmd := getterCmd[T]{query: query, reply: reply}
	if err := d.ctx.send(windowMsg{id: d.id, cmd: cmd}); err != nil {
		return zero, err
	}
	select {
	case r := <-reply:
		return r.value, r.err
	case <-d.ctx.done:
		// the loop may have answered just before tearing down
		select {
		case r := <-reply:
			return r.value, r.err
		default:
			return zero, ErrFailedToSendMessage
		}
	}
}

// ScaleFactor reports the scale factor of the monitor the window is on.
func (d Dispatcher) ScaleFactor() (float64, error) {
	return getValue(d, func(w driver.Window) (float64, error) {
		return w.ScaleFactor(), nil
	})
}

// InnerPosition reports the position of the window's content area.
func (d Dispatcher) InnerPosition() (window.PhysicalPosition, error) {
	return getValue(d, func(w driver.Window) (window.PhysicalPosition, error) {
		return w.InnerPosition()
	})
}

// OuterPosition reports the position of the window including decorations.
func (d Dispatcher) OuterPosition() (window.PhysicalPosition, error) {
	return getValue(d, func(w driver.Window) (window.PhysicalPosition, error) {
		return w.OuterPosition()
	})
}

// InnerSize reports the size of the window's content area.
func (d Dispatcher) InnerSize() (window.PhysicalSize, error) {
	return getValue(d, func(w driver.Window) (window.PhysicalSize, error) {
		return w.InnerSize(), nil
	})
}

// OuterSize reports the size of the window including decorations.
func (d Dispatcher) OuterSize() (window.PhysicalSize, error) {
	return getValue(d, func(w driver.Window) (window.PhysicalSize, error) {
		return w.OuterSize(), nil
	})
}

func (d Dispatcher) IsFullscreen() (bool, error) {
	return getValue(d, func(w driver.Window) (bool, error) { return w.IsFullscreen(), nil })
}

func (d Dispatcher) IsMaximized() (bool, error) {
	return getValue(d, func(w driver.Window) (bool, error) { return w.IsMaximized(), nil })
}

func (d Dispatcher) IsDecorated() (bool, error) {
	return getValue(d, func(w driver.Window) (bool, error) { return w.IsDecorated(), nil })
}

func (d Dispatcher) IsResizable() (bool, error) {
	return getValue(d, func(w driver.Window) (bool, error) { return w.IsResizable(), nil })
}

func (d Dispatcher) IsVisible() (bool, error) {
	return getValue(d, func(w driver.Window) (bool, error) { return w.IsVisible(), nil })
}

// CurrentMonitor reports the monitor the window is on, nil when the
// toolkit cannot tell.
func (d Dispatcher) CurrentMonitor() (*window.Monitor, error) {
	return getValue(d, func(w driver.Window) (*window.Monitor, error) {
		return w.CurrentMonitor(), nil
	})
}

// PrimaryMonitor reports the primary monitor, nil when the toolkit
// cannot tell.
func (d Dispatcher) PrimaryMonitor() (*window.Monitor, error) {
	return getValue(d, func(w driver.Window) (*window.Monitor, error) {
		return w.PrimaryMonitor(), nil
	})
}

// AvailableMonitors reports every connected monitor.
func (d Dispatcher) AvailableMonitors() ([]window.Monitor, error) {
	return getValue(d, func(w driver.Window) ([]window.Monitor, error) {
		return w.AvailableMonitors(), nil
	})
}

// Setters: send, return on send success, no acknowledgment of application.

func (d Dispatcher) SetResizable(resizable bool) error {
	return d.ctx.send(windowMsg{id: d.id, cmd: setResizableCmd{resizable: resizable}})
}

func (d Dispatcher) SetTitle(title string) error {
	return d.ctx.send(windowMsg{id: d.id, cmd: setTitleCmd{title: title}})
}

func (d Dispatcher) Maximize() error {
	return d.ctx.send(windowMsg{id: d.id, cmd: maximizeCmd{}})
}

func (d Dispatcher) Unmaximize() error {
	return d.ctx.send(windowMsg{id: d.id, cmd: unmaximizeCmd{}})
}

func (d Dispatcher) Minimize() error {
	return d.ctx.send(windowMsg{id: d.id, cmd: minimizeCmd{}})
}

func (d Dispatcher) Unminimize() error {
	return d.ctx.send(windowMsg{id: d.id, cmd: unminimizeCmd{}})
}

func (d Dispatcher) Show() error {
	return d.ctx.send(windowMsg{id: d.id, cmd: showCmd{}})
}

func (d Dispatcher) Hide() error {
	return d.ctx.send(windowMsg{id: d.id, cmd: hideCmd{}})
}

// Close removes the window from the live table. When it was the last
// window, the event loop terminates.
func (d Dispatcher) Close() error {
	return d.ctx.send(windowMsg{id: d.id, cmd: closeCmd{}})
}

func (d Dispatcher) SetDecorations(decorations bool) error {
	return d.ctx.send(windowMsg{id: d.id, cmd: setDecorationsCmd{decorations: decorations}})
}

func (d Dispatcher) SetAlwaysOnTop(alwaysOnTop bool) error {
	return d.ctx.send(windowMsg{id: d.id, cmd: setAlwaysOnTopCmd{alwaysOnTop: alwaysOnTop}})
}

func (d Dispatcher) SetSize(size window.Size) error {
	return d.ctx.send(windowMsg{id: d.id, cmd: setSizeCmd{size: size}})
}

// SetMinSize clears the minimum size constraint when size is nil.
func (d Dispatcher) SetMinSize(size window.Size) error {
	return d.ctx.send(windowMsg{id: d.id, cmd: setMinSizeCmd{size: size}})
}

// SetMaxSize clears the maximum size constraint when size is nil.
func (d Dispatcher) SetMaxSize(size window.Size) error {
	return d.ctx.send(windowMsg{id: d.id, cmd: setMaxSizeCmd{size: size}})
}

func (d Dispatcher) SetPosition(position window.Position) error {
	return d.ctx.send(windowMsg{id: d.id, cmd: setPositionCmd{position: position}})
}

func (d Dispatcher) SetFullscreen(fullscreen bool) error {
	return d.ctx.send(windowMsg{id: d.id, cmd: setFullscreenCmd{fullscreen: fullscreen}})
}

func (d Dispatcher) SetFocus() error {
	return d.ctx.send(windowMsg{id: d.id, cmd: setFocusCmd{}})
}

// SetIcon loads the icon content at the call site so a bad icon fails the
// caller instead of the event loop.
func (d Dispatcher) SetIcon(icon window.Icon) error {
	data, err := icon.Bytes()
	if err != nil {
		return errs.Wrap("dispatcher.set_icon", errs.CodeInvalidIcon, err)
	}
	return d.ctx.send(windowMsg{id: d.id, cmd: setIconCmd{icon: data}})
}

func (d Dispatcher) SetSkipTaskbar(skip bool) error {
	return d.ctx.send(windowMsg{id: d.id, cmd: setSkipTaskbarCmd{skip: skip}})
}

// StartDragging begins a native window drag, typically from a mousedown
// on a frameless window's title region.
func (d Dispatcher) StartDragging() error {
	return d.ctx.send(windowMsg{id: d.id, cmd: dragWindowCmd{}})
}

// EvalScript queues JavaScript for execution in the window's webview.
func (d Dispatcher) EvalScript(source string) error {
	return d.ctx.send(webviewMsg{id: d.id, cmd: evaluateScriptCmd{source: source}})
}

// Print invokes the webview's native print dialog.
func (d Dispatcher) Print() error {
	return d.ctx.send(webviewMsg{id: d.id, cmd: printCmd{}})
}

// CreateWindow materializes a new window and returns a dispatcher bound
// to it. Must be called from a thread other than the event-loop thread.
func (d Dispatcher) CreateWindow(pending PendingWindow) (Dispatcher, error) {
	return createWindow(d.ctx, pending)
}

// OnWindowEvent registers f for every surfaced window event and returns
// the registration id.
func (d Dispatcher) OnWindowEvent(f WindowEventHandler) uuid.UUID {
	return d.ctx.windowListeners.add(f)
}

// RemoveWindowEventListener cancels a registration made by OnWindowEvent.
func (d Dispatcher) RemoveWindowEventListener(id uuid.UUID) {
	d.ctx.windowListeners.remove(id)
}

// OnMenuEvent registers f for menubar selections.
func (d Dispatcher) OnMenuEvent(f MenuEventHandler) uuid.UUID {
	return d.ctx.menuListeners.add(f)
}

// RemoveMenuEventListener cancels a registration made by OnMenuEvent.
func (d Dispatcher) RemoveMenuEventListener(id uuid.UUID) {
	d.ctx.menuListeners.remove(id)
}

// RunOnMainThread enqueues f onto the main-thread task queue, which the
// event loop drains completely at the start of every tick, before native
// and command events.
func (d Dispatcher) RunOnMainThread(f func()) error {
	return d.ctx.enqueueTask(f)
}
