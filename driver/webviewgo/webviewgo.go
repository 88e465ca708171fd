//go:build cgo

// Package webviewgo backs the driver contract with the system webview
// through github.com/webview/webview_go. The library exposes no geometry
// or state queries, so every window keeps shadow state updated on each
// setter; getters answer from that shadow. Each window runs its native
// loop on a dedicated locked OS thread and reports a close request when
// that loop returns.
package webviewgo

import (
	"encoding/json"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	webview "github.com/webview/webview_go"

	"shoji/driver"
	"shoji/internal/infrastructure/logging"
	"shoji/window"
)

const rpcBinding = "shojiInvoke"

// Driver creates native webview windows.
type Driver struct {
	mu      sync.Mutex
	nextID  window.ID
	debug   bool
	events  chan driver.Event
	windows map[window.ID]*Window
	log     zerolog.Logger
}

// New returns a Driver. debug enables the webview inspector.
func New(debug bool) *Driver {
	return &Driver{
		nextID:  1,
		debug:   debug,
		events:  make(chan driver.Event, 64),
		windows: make(map[window.ID]*Window),
		log:     logging.New("webviewgo"),
	}
}

// Events implements driver.Driver.
func (d *Driver) Events() <-chan driver.Event { return d.events }

// CreateWindow implements driver.Driver. The toolkit cannot express
// custom protocols; registering one is rejected up front rather than
// silently dropped.
func (d *Driver) CreateWindow(opts driver.CreateOptions) (driver.Window, driver.Webview, error) {
	if len(opts.Protocols) > 0 {
		return nil, nil, errUnsupported("custom protocols")
	}

	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.mu.Unlock()

	w := &Window{
		id:     id,
		drv:    d,
		attrs:  opts.Attributes,
		size:   opts.Attributes.Size,
		log:    d.log.With().Uint64("window_id", uint64(id)).Logger(),
		ready:  make(chan error, 1),
		closed: make(chan struct{}),
	}
	if opts.Attributes.Position != nil {
		w.position = *opts.Attributes.Position
	}

	go w.loop(d.debug, opts)

	if err := <-w.ready; err != nil {
		return nil, nil, err
	}

	d.mu.Lock()
	d.windows[id] = w
	d.mu.Unlock()

	return w, &Webview{win: w}, nil
}

func (d *Driver) forget(id window.ID) {
	d.mu.Lock()
	delete(d.windows, id)
	d.mu.Unlock()
}

func (d *Driver) emit(ev driver.Event) {
	select {
	case d.events <- ev:
	default:
		d.log.Warn().Msg("event channel full, native event dropped")
	}
}

type unsupportedError string

func errUnsupported(what string) error { return unsupportedError(what) }

func (e unsupportedError) Error() string {
	return "webviewgo: " + string(e) + " are not supported by this toolkit"
}

// Window is one native webview window.
type Window struct {
	id  window.ID
	drv *Driver
	log zerolog.Logger

	view   webview.WebView
	ready  chan error
	closed chan struct{}

	mu       sync.Mutex
	attrs    window.Attributes
	size     window.LogicalSize
	position window.LogicalPosition
	visible  bool
}

// loop owns the native handle. webview demands that creation and the run
// loop share a thread.
func (w *Window) loop(debug bool, opts driver.CreateOptions) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	view := webview.New(debug)
	if view == nil {
		w.ready <- errUnsupported("webview windows")
		return
	}

	view.SetTitle(opts.Attributes.Title)
	w.applySize(view, opts.Attributes)
	for _, script := range opts.InitScripts {
		view.Init(script)
	}
	if onRPC := opts.OnRPC; onRPC != nil {
		id := w.id
		view.Bind(rpcBinding, func(method string, params json.RawMessage) {
			onRPC(id, window.RPCRequest{Method: method, Params: params})
		})
	}
	if opts.URL != "" {
		view.Navigate(opts.URL)
	}

	w.mu.Lock()
	w.view = view
	w.visible = opts.Attributes.Visible
	w.mu.Unlock()
	w.ready <- nil

	// blocks until Terminate or the user closes the window
	view.Run()
	view.Destroy()

	w.drv.forget(w.id)
	w.drv.emit(driver.WindowEvent{ID: w.id, Event: window.CloseRequestedEvent{}})
	close(w.closed)
}

func (w *Window) applySize(view webview.WebView, attrs window.Attributes) {
	hint := webview.HintNone
	if !attrs.Resizable {
		hint = webview.HintFixed
	}
	view.SetSize(int(attrs.Size.Width), int(attrs.Size.Height), hint)
	if attrs.MinSize != nil {
		view.SetSize(int(attrs.MinSize.Width), int(attrs.MinSize.Height), webview.HintMin)
	}
	if attrs.MaxSize != nil {
		view.SetSize(int(attrs.MaxSize.Width), int(attrs.MaxSize.Height), webview.HintMax)
	}
}

// dispatch hands f to the window's native thread. After the loop ends the
// call is dropped.
func (w *Window) dispatch(f func(view webview.WebView)) {
	w.mu.Lock()
	view := w.view
	w.mu.Unlock()
	select {
	case <-w.closed:
		return
	default:
	}
	view.Dispatch(func() { f(view) })
}

func (w *Window) ID() window.ID { return w.id }

func (w *Window) ScaleFactor() float64 { return 1.0 }

func (w *Window) InnerPosition() (window.PhysicalPosition, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.position.ToPhysical(1.0), nil
}

func (w *Window) OuterPosition() (window.PhysicalPosition, error) {
	return w.InnerPosition()
}

func (w *Window) InnerSize() window.PhysicalSize {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size.ToPhysical(1.0)
}

func (w *Window) OuterSize() window.PhysicalSize { return w.InnerSize() }

func (w *Window) IsFullscreen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attrs.Fullscreen
}

func (w *Window) IsMaximized() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attrs.Maximized
}

func (w *Window) IsDecorated() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attrs.Decorations
}

func (w *Window) IsResizable() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attrs.Resizable
}

func (w *Window) IsVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

// Monitor queries are not available through this toolkit. The primary
// monitor is reported as unknown rather than invented.
func (w *Window) CurrentMonitor() *window.Monitor     { return nil }
func (w *Window) PrimaryMonitor() *window.Monitor     { return nil }
func (w *Window) AvailableMonitors() []window.Monitor { return nil }

func (w *Window) SetResizable(resizable bool) {
	w.mu.Lock()
	w.attrs.Resizable = resizable
	size := w.size
	w.mu.Unlock()
	hint := webview.HintNone
	if !resizable {
		hint = webview.HintFixed
	}
	w.dispatch(func(view webview.WebView) {
		view.SetSize(int(size.Width), int(size.Height), hint)
	})
}

func (w *Window) SetTitle(title string) {
	w.mu.Lock()
	w.attrs.Title = title
	w.mu.Unlock()
	w.dispatch(func(view webview.WebView) { view.SetTitle(title) })
}

func (w *Window) SetMaximized(maximized bool) {
	w.mu.Lock()
	w.attrs.Maximized = maximized
	w.mu.Unlock()
	w.log.Debug().Bool("maximized", maximized).Msg("maximize has no native call, shadow state only")
}

func (w *Window) SetMinimized(minimized bool) {
	w.log.Debug().Bool("minimized", minimized).Msg("minimize has no native call, ignored")
}

func (w *Window) SetVisible(visible bool) {
	w.mu.Lock()
	w.visible = visible
	w.mu.Unlock()
}

func (w *Window) SetDecorations(decorations bool) {
	w.mu.Lock()
	w.attrs.Decorations = decorations
	w.mu.Unlock()
}

func (w *Window) SetAlwaysOnTop(alwaysOnTop bool) {
	w.mu.Lock()
	w.attrs.AlwaysOnTop = alwaysOnTop
	w.mu.Unlock()
}

func (w *Window) SetSize(size window.Size) {
	logical := size.ToPhysical(1.0).ToLogical(1.0)
	w.mu.Lock()
	w.size = logical
	resizable := w.attrs.Resizable
	w.mu.Unlock()
	hint := webview.HintNone
	if !resizable {
		hint = webview.HintFixed
	}
	w.dispatch(func(view webview.WebView) {
		view.SetSize(int(logical.Width), int(logical.Height), hint)
	})
	w.drv.emit(driver.WindowEvent{ID: w.id, Event: window.ResizedEvent{Size: logical.ToPhysical(1.0)}})
}

func (w *Window) SetMinSize(size window.Size) {
	// nil clears the constraint; the C API has no call for that.
	if size == nil {
		w.log.Debug().Msg("no native call to clear the minimum size hint, ignored")
		return
	}
	logical := size.ToPhysical(1.0).ToLogical(1.0)
	w.dispatch(func(view webview.WebView) {
		view.SetSize(int(logical.Width), int(logical.Height), webview.HintMin)
	})
}

func (w *Window) SetMaxSize(size window.Size) {
	if size == nil {
		w.log.Debug().Msg("no native call to clear the maximum size hint, ignored")
		return
	}
	logical := size.ToPhysical(1.0).ToLogical(1.0)
	w.dispatch(func(view webview.WebView) {
		view.SetSize(int(logical.Width), int(logical.Height), webview.HintMax)
	})
}

func (w *Window) SetPosition(position window.Position) {
	w.mu.Lock()
	w.position = position.ToPhysical(1.0).ToLogical(1.0)
	w.mu.Unlock()
	w.drv.emit(driver.WindowEvent{ID: w.id, Event: window.MovedEvent{Position: position.ToPhysical(1.0)}})
}

func (w *Window) SetFullscreen(fullscreen bool) {
	w.mu.Lock()
	w.attrs.Fullscreen = fullscreen
	w.mu.Unlock()
}

func (w *Window) SetFocus() {
	w.drv.emit(driver.WindowEvent{ID: w.id, Event: window.FocusedEvent{Focused: true}})
}

func (w *Window) SetIcon(icon []byte) {
	w.log.Debug().Int("bytes", len(icon)).Msg("icons have no native call, ignored")
}

func (w *Window) SetSkipTaskbar(skip bool) {
	w.mu.Lock()
	w.attrs.SkipTaskbar = skip
	w.mu.Unlock()
}

func (w *Window) StartDragging() {}

// Destroy terminates the window's native loop.
func (w *Window) Destroy() {
	w.dispatch(func(view webview.WebView) { view.Terminate() })
}

// Webview is the content layer of a Window. webview_go evaluates scripts
// immediately, so FlushScripts has nothing to drain.
type Webview struct {
	win *Window
}

func (v *Webview) EvalScript(source string) error {
	v.win.dispatch(func(view webview.WebView) { view.Eval(source) })
	return nil
}

func (v *Webview) FlushScripts() error { return nil }

func (v *Webview) Resize() error { return nil }

func (v *Webview) Print() error {
	return v.EvalScript("window.print()")
}
