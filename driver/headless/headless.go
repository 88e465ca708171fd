// Package headless is a pure-Go driver with no native toolkit behind it.
// Windows and webviews are shadow state in memory. It backs the runtime's
// tests and lets applications run their full window logic in CI or on
// machines without a display; native events are injected by the embedder.
package headless

import (
	"errors"
	"fmt"
	"sync"

	"shoji/driver"
	"shoji/window"
)

// Driver implements driver.Driver entirely in memory.
type Driver struct {
	mu       sync.Mutex
	nextID   uint64
	events   chan driver.Event
	monitors []window.Monitor
	windows  map[window.ID]*Window
	failNext error
}

// New returns a driver with a single 1920x1080 monitor at scale factor 1.
func New() *Driver {
	return &Driver{
		events: make(chan driver.Event, 64),
		monitors: []window.Monitor{{
			Name:        "headless-0",
			Size:        window.PhysicalSize{Width: 1920, Height: 1080},
			ScaleFactor: 1.0,
		}},
		windows: make(map[window.ID]*Window),
	}
}

// SetMonitors replaces the monitor fixtures reported to windows created
// afterwards.
func (d *Driver) SetMonitors(monitors []window.Monitor) {
	d.mu.Lock()
	d.monitors = monitors
	d.mu.Unlock()
}

// FailNextCreate makes the next CreateWindow call fail with err.
func (d *Driver) FailNextCreate(err error) {
	d.mu.Lock()
	d.failNext = err
	d.mu.Unlock()
}

// Events implements driver.Driver.
func (d *Driver) Events() <-chan driver.Event { return d.events }

// CreateWindow implements driver.Driver.
func (d *Driver) CreateWindow(opts driver.CreateOptions) (driver.Window, driver.Webview, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.failNext; err != nil {
		d.failNext = nil
		return nil, nil, err
	}

	d.nextID++
	id := window.ID(d.nextID)

	scale := 1.0
	if len(d.monitors) > 0 {
		scale = d.monitors[0].ScaleFactor
	}

	attrs := opts.Attributes
	position := window.PhysicalPosition{X: 100, Y: 100}
	if attrs.Position != nil {
		position = attrs.Position.ToPhysical(scale)
	}

	w := &Window{
		drv:         d,
		id:          id,
		title:       attrs.Title,
		innerSize:   attrs.Size.ToPhysical(scale),
		position:    position,
		scaleFactor: scale,
		resizable:   attrs.Resizable,
		decorations: attrs.Decorations,
		visible:     attrs.Visible,
		maximized:   attrs.Maximized,
		fullscreen:  attrs.Fullscreen,
		alwaysOnTop: attrs.AlwaysOnTop,
		skipTaskbar: attrs.SkipTaskbar,
		focused:     attrs.Focus,
	}
	if attrs.MinSize != nil {
		w.minSize = attrs.MinSize.ToPhysical(scale)
	}
	if attrs.MaxSize != nil {
		w.maxSize = attrs.MaxSize.ToPhysical(scale)
	}
	if attrs.Icon != nil {
		if data, err := attrs.Icon.Bytes(); err == nil {
			w.icon = data
		}
	}

	v := &Webview{
		url:         opts.URL,
		initScripts: append([]string(nil), opts.InitScripts...),
		protocols:   opts.Protocols,
		onRPC:       opts.OnRPC,
		onFileDrop:  opts.OnFileDrop,
		windowID:    id,
	}
	w.view = v

	d.windows[id] = w
	return w, v, nil
}

// EmitWindowEvent injects a native window event, as the toolkit would.
func (d *Driver) EmitWindowEvent(id window.ID, event window.Event) {
	d.events <- driver.WindowEvent{ID: id, Event: event}
}

// tryEmit delivers setter side-effect events without ever blocking the
// event-loop thread that triggered them.
func (d *Driver) tryEmit(id window.ID, event window.Event) {
	select {
	case d.events <- driver.WindowEvent{ID: id, Event: event}:
	default:
	}
}

// EmitMenuEvent injects a menubar or tray selection.
func (d *Driver) EmitMenuEvent(itemID string, origin driver.MenuOrigin) {
	d.events <- driver.MenuEvent{ItemID: itemID, Origin: origin}
}

// RequestClose injects the user closing a window.
func (d *Driver) RequestClose(id window.ID) {
	d.EmitWindowEvent(id, window.CloseRequestedEvent{})
}

// Window returns the shadow window for a live id, nil after destroy.
func (d *Driver) Window(id window.ID) *Window {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.windows[id]
}

func (d *Driver) forget(id window.ID) {
	d.mu.Lock()
	delete(d.windows, id)
	d.mu.Unlock()
}

// titleBarHeight is the synthetic frame added to decorated windows so
// outer and inner geometry differ the way they do on real toolkits.
const titleBarHeight = 32

// Window is the in-memory shadow of a native window.
type Window struct {
	drv *Driver
	id  window.ID

	mu          sync.Mutex
	view        *Webview
	title       string
	innerSize   window.PhysicalSize
	minSize     window.PhysicalSize
	maxSize     window.PhysicalSize
	position    window.PhysicalPosition
	scaleFactor float64
	resizable   bool
	decorations bool
	visible     bool
	maximized   bool
	minimized   bool
	fullscreen  bool
	alwaysOnTop bool
	skipTaskbar bool
	focused     bool
	dragging    bool
	icon        []byte
	destroyed   bool
}

func (w *Window) ID() window.ID { return w.id }

func (w *Window) ScaleFactor() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scaleFactor
}

func (w *Window) InnerPosition() (window.PhysicalPosition, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p := w.position
	if w.decorations {
		p.Y += titleBarHeight
	}
	return p, nil
}

func (w *Window) OuterPosition() (window.PhysicalPosition, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.position, nil
}

func (w *Window) InnerSize() window.PhysicalSize {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.innerSize
}

func (w *Window) OuterSize() window.PhysicalSize {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.innerSize
	if w.decorations {
		s.Height += titleBarHeight
	}
	return s
}

func (w *Window) IsFullscreen() bool { w.mu.Lock(); defer w.mu.Unlock(); return w.fullscreen }
func (w *Window) IsMaximized() bool  { w.mu.Lock(); defer w.mu.Unlock(); return w.maximized }
func (w *Window) IsDecorated() bool  { w.mu.Lock(); defer w.mu.Unlock(); return w.decorations }
func (w *Window) IsResizable() bool  { w.mu.Lock(); defer w.mu.Unlock(); return w.resizable }
func (w *Window) IsVisible() bool    { w.mu.Lock(); defer w.mu.Unlock(); return w.visible }

// Title reports the shadow title; test inspection surface.
func (w *Window) Title() string { w.mu.Lock(); defer w.mu.Unlock(); return w.title }

// Icon reports the applied icon bytes; test inspection surface.
func (w *Window) Icon() []byte { w.mu.Lock(); defer w.mu.Unlock(); return w.icon }

func (w *Window) CurrentMonitor() *window.Monitor {
	w.drv.mu.Lock()
	defer w.drv.mu.Unlock()
	if len(w.drv.monitors) == 0 {
		return nil
	}
	m := w.drv.monitors[0]
	return &m
}

func (w *Window) PrimaryMonitor() *window.Monitor {
	return w.CurrentMonitor()
}

func (w *Window) AvailableMonitors() []window.Monitor {
	w.drv.mu.Lock()
	defer w.drv.mu.Unlock()
	return append([]window.Monitor(nil), w.drv.monitors...)
}

func (w *Window) SetResizable(resizable bool) {
	w.mu.Lock()
	w.resizable = resizable
	w.mu.Unlock()
}

func (w *Window) SetTitle(title string) {
	w.mu.Lock()
	w.title = title
	w.mu.Unlock()
}

func (w *Window) SetMaximized(maximized bool) {
	w.mu.Lock()
	w.maximized = maximized
	w.mu.Unlock()
}

func (w *Window) SetMinimized(minimized bool) {
	w.mu.Lock()
	w.minimized = minimized
	w.mu.Unlock()
}

func (w *Window) SetVisible(visible bool) {
	w.mu.Lock()
	w.visible = visible
	w.mu.Unlock()
}

func (w *Window) SetDecorations(decorations bool) {
	w.mu.Lock()
	w.decorations = decorations
	w.mu.Unlock()
}

func (w *Window) SetAlwaysOnTop(alwaysOnTop bool) {
	w.mu.Lock()
	w.alwaysOnTop = alwaysOnTop
	w.mu.Unlock()
}

func (w *Window) SetSize(size window.Size) {
	w.mu.Lock()
	w.innerSize = clamp(size.ToPhysical(w.scaleFactor), w.minSize, w.maxSize)
	applied := w.innerSize
	w.mu.Unlock()
	w.drv.tryEmit(w.id, window.ResizedEvent{Size: applied})
}

func (w *Window) SetMinSize(size window.Size) {
	w.mu.Lock()
	if size == nil {
		w.minSize = window.PhysicalSize{}
	} else {
		w.minSize = size.ToPhysical(w.scaleFactor)
	}
	w.mu.Unlock()
}

func (w *Window) SetMaxSize(size window.Size) {
	w.mu.Lock()
	if size == nil {
		w.maxSize = window.PhysicalSize{}
	} else {
		w.maxSize = size.ToPhysical(w.scaleFactor)
	}
	w.mu.Unlock()
}

func (w *Window) SetPosition(position window.Position) {
	w.mu.Lock()
	w.position = position.ToPhysical(w.scaleFactor)
	applied := w.position
	w.mu.Unlock()
	w.drv.tryEmit(w.id, window.MovedEvent{Position: applied})
}

func (w *Window) SetFullscreen(fullscreen bool) {
	w.mu.Lock()
	w.fullscreen = fullscreen
	w.mu.Unlock()
}

func (w *Window) SetFocus() {
	w.mu.Lock()
	w.focused = true
	w.mu.Unlock()
	w.drv.tryEmit(w.id, window.FocusedEvent{Focused: true})
}

func (w *Window) SetIcon(icon []byte) {
	w.mu.Lock()
	w.icon = icon
	w.mu.Unlock()
}

func (w *Window) SetSkipTaskbar(skip bool) {
	w.mu.Lock()
	w.skipTaskbar = skip
	w.mu.Unlock()
}

func (w *Window) StartDragging() {
	w.mu.Lock()
	w.dragging = true
	w.mu.Unlock()
}

func (w *Window) Destroy() {
	w.mu.Lock()
	w.destroyed = true
	w.mu.Unlock()
	w.drv.forget(w.id)
}

// Destroyed reports whether Destroy ran; test inspection surface.
func (w *Window) Destroyed() bool { w.mu.Lock(); defer w.mu.Unlock(); return w.destroyed }

// Webview returns the shadow webview attached to this window.
func (w *Window) Webview() *Webview { w.mu.Lock(); defer w.mu.Unlock(); return w.view }

func clamp(s, min, max window.PhysicalSize) window.PhysicalSize {
	if min.Width > 0 && s.Width < min.Width {
		s.Width = min.Width
	}
	if min.Height > 0 && s.Height < min.Height {
		s.Height = min.Height
	}
	if max.Width > 0 && s.Width > max.Width {
		s.Width = max.Width
	}
	if max.Height > 0 && s.Height > max.Height {
		s.Height = max.Height
	}
	return s
}

// Webview is the in-memory shadow of a native webview.
type Webview struct {
	mu          sync.Mutex
	windowID    window.ID
	url         string
	initScripts []string
	pending     []string
	executed    []string
	resizes     int
	prints      int
	evalErr     error
	flushErr    error

	protocols  map[string]driver.ProtocolHandler
	onRPC      func(id window.ID, req window.RPCRequest)
	onFileDrop func(id window.ID, event window.FileDropEvent) bool
}

// EvalScript queues source for the next flush.
func (v *Webview) EvalScript(source string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.evalErr != nil {
		return v.evalErr
	}
	v.pending = append(v.pending, source)
	return nil
}

// FlushScripts executes everything queued since the previous flush.
func (v *Webview) FlushScripts() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.flushErr != nil {
		return v.flushErr
	}
	v.executed = append(v.executed, v.pending...)
	v.pending = nil
	return nil
}

func (v *Webview) Resize() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resizes++
	return nil
}

func (v *Webview) Print() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.prints++
	return nil
}

// URL reports the content URL the webview was created with.
func (v *Webview) URL() string { v.mu.Lock(); defer v.mu.Unlock(); return v.url }

// InitScripts reports the initialization scripts applied before first
// navigation.
func (v *Webview) InitScripts() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.initScripts...)
}

// ExecutedScripts reports every script run by FlushScripts so far.
func (v *Webview) ExecutedScripts() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.executed...)
}

// Resizes reports how many times the runtime asked the webview to track a
// window resize.
func (v *Webview) Resizes() int { v.mu.Lock(); defer v.mu.Unlock(); return v.resizes }

// Prints reports how many native print invocations happened.
func (v *Webview) Prints() int { v.mu.Lock(); defer v.mu.Unlock(); return v.prints }

// SetEvalError makes subsequent EvalScript calls fail; test hook.
func (v *Webview) SetEvalError(err error) { v.mu.Lock(); v.evalErr = err; v.mu.Unlock() }

// SetFlushError makes subsequent FlushScripts calls fail; test hook.
func (v *Webview) SetFlushError(err error) { v.mu.Lock(); v.flushErr = err; v.mu.Unlock() }

// InvokeRPC simulates web content calling into native code.
func (v *Webview) InvokeRPC(req window.RPCRequest) error {
	v.mu.Lock()
	handler := v.onRPC
	id := v.windowID
	v.mu.Unlock()
	if handler == nil {
		return errors.New("no rpc handler registered")
	}
	handler(id, req)
	return nil
}

// DropFiles simulates a native drag-and-drop interaction and reports
// whether the handler consumed it.
func (v *Webview) DropFiles(event window.FileDropEvent) (bool, error) {
	v.mu.Lock()
	handler := v.onFileDrop
	id := v.windowID
	v.mu.Unlock()
	if handler == nil {
		return false, errors.New("no file drop handler registered")
	}
	return handler(id, event), nil
}

// FetchProtocol simulates the webview resolving a custom-scheme URL.
func (v *Webview) FetchProtocol(scheme, url string) ([]byte, error) {
	v.mu.Lock()
	handler, ok := v.protocols[scheme]
	v.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("scheme %q not registered", scheme)
	}
	return handler(url)
}
