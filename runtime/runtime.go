// Package runtime owns the single event-loop thread of a shoji
// application: the live window/webview table, the main-thread task queue,
// and the command channel every Dispatcher and Handle feeds. All native
// UI state is mutated here and nowhere else; client goroutines interact
// exclusively through messages.
package runtime

import (
	stdruntime "runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shoji/driver"
	"shoji/internal/infrastructure/logging"
	"shoji/window"
)

// RunIteration summarizes one dispatch pass of the event loop.
type RunIteration struct {
	// WindowCount is the number of live windows after the pass.
	WindowCount int
}

type liveWindow struct {
	win  driver.Window
	view driver.Webview
}

// Runtime drives the event loop over a native toolkit driver. Construct
// with New, then either hand the current thread over with Run or pump
// single iterations with RunIteration.
type Runtime struct {
	drv driver.Driver
	ctx *dispatchContext
	log zerolog.Logger

	// windows is the live table, owned by the event-loop thread. The
	// mutex covers the direct pre-run CreateWindow path; client threads
	// otherwise never touch the table.
	mu      sync.Mutex
	windows map[window.ID]*liveWindow
	exit    bool

	closeOnce sync.Once
}

// New creates a runtime over the given driver.
func New(drv driver.Driver) *Runtime {
	return &Runtime{
		drv:     drv,
		ctx:     newDispatchContext(),
		log:     logging.New("runtime"),
		windows: make(map[window.ID]*liveWindow),
	}
}

// Handle returns a cloneable, thread-safe capability for requesting new
// windows and main-thread work without a reference to the running loop.
func (r *Runtime) Handle() Handle {
	return Handle{ctx: r.ctx}
}

// CreateWindow materializes a window directly, without a message
// round-trip. Only legal before Run (or from the event-loop thread); once
// the loop is running, use a Handle or Dispatcher from other goroutines.
func (r *Runtime) CreateWindow(pending PendingWindow) (Dispatcher, error) {
	win, view, err := buildWindow(r.drv, r.ctx, pending)
	if err != nil {
		return Dispatcher{}, err
	}
	id := win.ID()
	r.mu.Lock()
	r.windows[id] = &liveWindow{win: win, view: view}
	r.mu.Unlock()
	r.log.Debug().Uint64("window_id", uint64(id)).Str("title", pending.Attributes.Title).Msg("window created")
	return Dispatcher{id: id, ctx: r.ctx}, nil
}

// OnSystemTrayEvent registers f for tray menu selections.
func (r *Runtime) OnSystemTrayEvent(f TrayEventHandler) uuid.UUID {
	return r.ctx.trayListeners.add(f)
}

// RemoveSystemTrayEventListener cancels a registration made by
// OnSystemTrayEvent.
func (r *Runtime) RemoveSystemTrayEventListener(id uuid.UUID) {
	r.ctx.trayListeners.remove(id)
}

// Run hands the calling thread to the event loop and blocks until the
// live table empties through window closes. The OS thread is locked for
// the duration; call it from the main goroutine when the driver binds to
// a real toolkit.
func (r *Runtime) Run() {
	stdruntime.LockOSThread()
	defer stdruntime.UnlockOSThread()
	defer r.closeOnce.Do(func() { close(r.ctx.done) })
	for {
		if r.tick(true) {
			r.log.Debug().Msg("window table empty, loop terminating")
			return
		}
	}
}

// RunIteration performs one non-blocking dispatch pass and reports the
// live window count. Used for embedding the loop inside another control
// structure; drivers bound to toolkits without re-entrant loop pumping do
// not support this mode.
func (r *Runtime) RunIteration() RunIteration {
	r.tick(false)
	r.mu.Lock()
	defer r.mu.Unlock()
	return RunIteration{WindowCount: len(r.windows)}
}

// tick runs one loop iteration: flush queued webview scripts, drain the
// main-thread task queue, then process at most one native or command
// event. Reports whether the loop should terminate.
func (r *Runtime) tick(block bool) bool {
	r.flushScripts()
	r.drainTasks()

	if block {
		select {
		case ev := <-r.drv.Events():
			r.handleNative(ev)
		case m := <-r.ctx.msgs:
			r.handleMessage(m)
		}
	} else {
		select {
		case ev := <-r.drv.Events():
			r.handleNative(ev)
		case m := <-r.ctx.msgs:
			r.handleMessage(m)
		default:
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exit
}

func (r *Runtime) flushScripts() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, lw := range r.windows {
		if err := lw.view.FlushScripts(); err != nil {
			r.log.Warn().Uint64("window_id", uint64(id)).Err(err).Msg("script flush failed")
		}
	}
}

func (r *Runtime) drainTasks() {
	for {
		select {
		case task := <-r.ctx.tasks:
			task()
		default:
			return
		}
	}
}

func (r *Runtime) handleNative(ev driver.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch e := ev.(type) {
	case driver.MenuEvent:
		if e.Origin == driver.OriginTray {
			event := window.SystemTrayEvent{ItemID: e.ItemID}
			r.ctx.trayListeners.each(func(h TrayEventHandler) { h(event) })
		} else {
			event := window.MenuEvent{ItemID: e.ItemID}
			r.ctx.menuListeners.each(func(h MenuEventHandler) { h(event) })
		}

	case driver.WindowEvent:
		r.ctx.windowListeners.each(func(h WindowEventHandler) { h(e.ID, e.Event) })

		switch e.Event.(type) {
		case window.CloseRequestedEvent:
			r.removeWindow(e.ID)
		case window.ResizedEvent:
			if lw, ok := r.windows[e.ID]; ok {
				if err := lw.view.Resize(); err != nil {
					r.log.Warn().Uint64("window_id", uint64(e.ID)).Err(err).Msg("webview resize failed")
				}
			}
		}
	}
}

func (r *Runtime) handleMessage(m message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch msg := m.(type) {
	case windowMsg:
		lw, ok := r.windows[msg.id]
		if !ok {
			// window already destroyed: setters drop silently, getters
			// are resolved with an explicit error instead of hanging
			msg.cmd.abort(ErrWindowGone)
			r.log.Debug().Uint64("window_id", uint64(msg.id)).Msg("command for gone window dropped")
			return
		}
		if _, isClose := msg.cmd.(closeCmd); isClose {
			r.removeWindow(msg.id)
			return
		}
		msg.cmd.apply(lw.win)

	case webviewMsg:
		lw, ok := r.windows[msg.id]
		if !ok {
			r.log.Debug().Uint64("window_id", uint64(msg.id)).Msg("webview command for gone window dropped")
			return
		}
		switch cmd := msg.cmd.(type) {
		case evaluateScriptCmd:
			if err := lw.view.EvalScript(cmd.source); err != nil {
				r.log.Warn().Uint64("window_id", uint64(msg.id)).Err(err).Msg("script dispatch failed")
			}
		case printCmd:
			if err := lw.view.Print(); err != nil {
				r.log.Debug().Uint64("window_id", uint64(msg.id)).Err(err).Msg("print failed")
			}
		}

	case createWindowMsg:
		fn, ok := msg.handler.take()
		if !ok {
			msg.reply <- createResult{err: errHandlerConsumed}
			return
		}
		win, view, err := fn(r.drv)
		if err != nil {
			r.log.Error().Err(err).Msg("window construction failed")
			msg.reply <- createResult{err: err}
			return
		}
		id := win.ID()
		r.windows[id] = &liveWindow{win: win, view: view}
		r.log.Debug().Uint64("window_id", uint64(id)).Msg("window created")
		msg.reply <- createResult{id: id}
	}
}

// removeWindow destroys a window, drops it from the live table, and
// arms loop termination when the table empties. Callers hold r.mu.
func (r *Runtime) removeWindow(id window.ID) {
	lw, ok := r.windows[id]
	if !ok {
		return
	}
	lw.win.Destroy()
	delete(r.windows, id)
	r.log.Debug().Uint64("window_id", uint64(id)).Int("remaining", len(r.windows)).Msg("window closed")
	if len(r.windows) == 0 {
		r.exit = true
	}
}
