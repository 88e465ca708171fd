package runtime

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"shoji/driver"
	"shoji/driver/headless"
	"shoji/window"
)

const testTimeout = 2 * time.Second

func startLoop(t *testing.T, rt *Runtime) chan struct{} {
	t.Helper()
	done := make(chan struct{})
	go func() {
		rt.Run()
		close(done)
	}()
	return done
}

func waitClosed(t *testing.T, ch chan struct{}, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(testTimeout):
		t.Fatal(msg)
	}
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(testTimeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal(msg)
}

func TestSetterOrderingSingleClient(t *testing.T) {
	drv := headless.New()
	rt := New(drv)

	d, err := rt.CreateWindow(NewPendingWindow("app://index.html"))
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	done := startLoop(t, rt)

	titles := []string{"one", "two", "three"}
	for _, title := range titles {
		if err := d.SetTitle(title); err != nil {
			t.Fatalf("SetTitle(%q): %v", title, err)
		}
	}
	// a getter on the same channel flushes everything queued before it
	if _, err := d.InnerSize(); err != nil {
		t.Fatalf("InnerSize: %v", err)
	}

	if got := drv.Window(d.WindowID()).Title(); got != "three" {
		t.Errorf("title = %q, want %q (last submitted wins)", got, "three")
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	waitClosed(t, done, "loop did not terminate after closing the only window")
}

func TestGetterObservesPrecedingSetter(t *testing.T) {
	drv := headless.New()
	rt := New(drv)

	d, err := rt.CreateWindow(NewPendingWindow("app://index.html"))
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	done := startLoop(t, rt)

	if err := d.SetSize(window.LogicalSize{Width: 1024, Height: 768}); err != nil {
		t.Fatalf("SetSize: %v", err)
	}
	size, err := d.InnerSize()
	if err != nil {
		t.Fatalf("InnerSize: %v", err)
	}
	want := window.PhysicalSize{Width: 1024, Height: 768}
	if size != want {
		t.Errorf("InnerSize = %+v, want %+v", size, want)
	}

	d.Close()
	waitClosed(t, done, "loop did not terminate")
}

func TestSequentialCreatesYieldDistinctIDs(t *testing.T) {
	drv := headless.New()
	rt := New(drv)

	const n = 5
	seen := make(map[window.ID]bool, n)
	dispatchers := make([]Dispatcher, 0, n)
	for i := 0; i < n; i++ {
		d, err := rt.CreateWindow(NewPendingWindow("app://index.html"))
		if err != nil {
			t.Fatalf("CreateWindow %d: %v", i, err)
		}
		if seen[d.WindowID()] {
			t.Fatalf("window id %d reused while previous window lives", d.WindowID())
		}
		seen[d.WindowID()] = true
		dispatchers = append(dispatchers, d)
	}

	done := startLoop(t, rt)
	for _, d := range dispatchers {
		if err := d.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}
	waitClosed(t, done, "closing every window must drive the loop to termination")
}

func TestCommandForGoneWindow(t *testing.T) {
	drv := headless.New()
	rt := New(drv)

	d1, err := rt.CreateWindow(NewPendingWindow("app://a.html"))
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	d2, err := rt.CreateWindow(NewPendingWindow("app://b.html"))
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	done := startLoop(t, rt)

	if err := d1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// the close precedes the getter in the same FIFO, so by the time the
	// getter is applied the window is gone and the reply carries the error
	if _, err := d1.InnerSize(); !errors.Is(err, ErrWindowGone) {
		t.Errorf("getter after close = %v, want ErrWindowGone", err)
	}

	// setters to a gone window are silently dropped
	if err := d1.SetTitle("ghost"); err != nil {
		t.Errorf("setter after close = %v, want nil (fire-and-forget)", err)
	}

	// the other window is untouched
	if err := d2.SetTitle("alive"); err != nil {
		t.Fatalf("SetTitle: %v", err)
	}
	if _, err := d2.InnerSize(); err != nil {
		t.Fatalf("InnerSize: %v", err)
	}
	if got := drv.Window(d2.WindowID()).Title(); got != "alive" {
		t.Errorf("second window title = %q, want %q", got, "alive")
	}

	d2.Close()
	waitClosed(t, done, "loop did not terminate")
}

func TestAttributeRoundTrip(t *testing.T) {
	drv := headless.New()
	rt := New(drv)

	pending := NewPendingWindow("app://index.html")
	pending.Attributes.Title = "T"
	pending.Attributes.Size = window.LogicalSize{Width: 800, Height: 600}
	pending.Attributes.Resizable = false

	d, err := rt.CreateWindow(pending)
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	done := startLoop(t, rt)

	size, err := d.InnerSize()
	if err != nil {
		t.Fatalf("InnerSize: %v", err)
	}
	if want := (window.PhysicalSize{Width: 800, Height: 600}); size != want {
		t.Errorf("InnerSize = %+v, want %+v", size, want)
	}
	resizable, err := d.IsResizable()
	if err != nil {
		t.Fatalf("IsResizable: %v", err)
	}
	if resizable {
		t.Error("IsResizable = true, want false")
	}
	if got := drv.Window(d.WindowID()).Title(); got != "T" {
		t.Errorf("title = %q, want %q", got, "T")
	}
	// position was left unset: native default placement applies
	if _, err := d.OuterPosition(); err != nil {
		t.Fatalf("OuterPosition: %v", err)
	}

	d.Close()
	waitClosed(t, done, "loop did not terminate")
}

func TestSizeConstraintClearedWithNil(t *testing.T) {
	drv := headless.New()
	rt := New(drv)

	d, err := rt.CreateWindow(NewPendingWindow("app://index.html"))
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	done := startLoop(t, rt)

	if err := d.SetMinSize(window.LogicalSize{Width: 900, Height: 900}); err != nil {
		t.Fatalf("SetMinSize: %v", err)
	}
	if err := d.SetSize(window.LogicalSize{Width: 100, Height: 100}); err != nil {
		t.Fatalf("SetSize: %v", err)
	}
	size, err := d.InnerSize()
	if err != nil {
		t.Fatalf("InnerSize: %v", err)
	}
	if want := (window.PhysicalSize{Width: 900, Height: 900}); size != want {
		t.Fatalf("InnerSize = %+v, want clamped %+v", size, want)
	}

	// nil removes the constraint; the next resize must land unclamped
	if err := d.SetMinSize(nil); err != nil {
		t.Fatalf("SetMinSize(nil): %v", err)
	}
	if err := d.SetMaxSize(nil); err != nil {
		t.Fatalf("SetMaxSize(nil): %v", err)
	}
	if err := d.SetSize(window.LogicalSize{Width: 100, Height: 100}); err != nil {
		t.Fatalf("SetSize: %v", err)
	}
	size, err = d.InnerSize()
	if err != nil {
		t.Fatalf("InnerSize: %v", err)
	}
	if want := (window.PhysicalSize{Width: 100, Height: 100}); size != want {
		t.Errorf("InnerSize = %+v, want unclamped %+v", size, want)
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	waitClosed(t, done, "loop did not terminate after closing the only window")
}

func TestWindowEventFanOut(t *testing.T) {
	drv := headless.New()
	rt := New(drv)

	d1, err := rt.CreateWindow(NewPendingWindow("app://a.html"))
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	d2, err := rt.CreateWindow(NewPendingWindow("app://b.html"))
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}

	var first, second atomic.Int32
	d1.OnWindowEvent(func(id window.ID, event window.Event) {
		if _, ok := event.(window.CloseRequestedEvent); ok && id == d1.WindowID() {
			first.Add(1)
		}
	})
	// registered through a different dispatcher, still fires: fan-out is
	// a broadcast over the shared registry
	d2.OnWindowEvent(func(id window.ID, event window.Event) {
		if _, ok := event.(window.CloseRequestedEvent); ok && id == d1.WindowID() {
			second.Add(1)
		}
	})

	done := startLoop(t, rt)
	drv.RequestClose(d1.WindowID())

	eventually(t, func() bool { return first.Load() == 1 && second.Load() == 1 },
		"both listeners must observe the close exactly once")

	d2.Close()
	waitClosed(t, done, "loop did not terminate")
	if first.Load() != 1 || second.Load() != 1 {
		t.Errorf("listener counts = %d, %d; want 1, 1", first.Load(), second.Load())
	}
}

func TestListenerRemoval(t *testing.T) {
	drv := headless.New()
	rt := New(drv)

	d, err := rt.CreateWindow(NewPendingWindow("app://index.html"))
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}

	var fired atomic.Int32
	reg := d.OnWindowEvent(func(window.ID, window.Event) { fired.Add(1) })
	d.RemoveWindowEventListener(reg)

	done := startLoop(t, rt)
	drv.EmitWindowEvent(d.WindowID(), window.FocusedEvent{Focused: true})

	// force a synchronization point past the emitted event
	if _, err := d.InnerSize(); err != nil {
		t.Fatalf("InnerSize: %v", err)
	}
	if fired.Load() != 0 {
		t.Errorf("removed listener fired %d times", fired.Load())
	}

	d.Close()
	waitClosed(t, done, "loop did not terminate")
}

func TestListenerCanMutateRegistryDuringDispatch(t *testing.T) {
	drv := headless.New()
	rt := New(drv)

	d, err := rt.CreateWindow(NewPendingWindow("app://index.html"))
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}

	// the handler re-registers and removes itself from inside dispatch;
	// the event loop must survive, and the replacement sees later events
	var first, replacement atomic.Int32
	var reg uuid.UUID
	reg = d.OnWindowEvent(func(id window.ID, event window.Event) {
		if _, ok := event.(window.FocusedEvent); !ok {
			return
		}
		first.Add(1)
		d.OnWindowEvent(func(id window.ID, event window.Event) {
			if _, ok := event.(window.FocusedEvent); ok {
				replacement.Add(1)
			}
		})
		d.RemoveWindowEventListener(reg)
	})

	done := startLoop(t, rt)
	drv.EmitWindowEvent(d.WindowID(), window.FocusedEvent{Focused: true})

	eventually(t, func() bool { return first.Load() == 1 },
		"handler that mutates the registry must still run")

	drv.EmitWindowEvent(d.WindowID(), window.FocusedEvent{Focused: false})
	eventually(t, func() bool { return replacement.Load() == 1 },
		"listener registered during dispatch must see the next event")

	// the original removed itself after the first event
	if first.Load() != 1 {
		t.Errorf("original listener fired %d times, want 1", first.Load())
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	waitClosed(t, done, "loop did not terminate")
}

func TestCreateWindowFromClientThread(t *testing.T) {
	drv := headless.New()
	rt := New(drv)
	handle := rt.Handle()

	done := startLoop(t, rt)

	// loop is running with zero windows; create from a client goroutine
	pending := NewPendingWindow("app://index.html")
	pending.Attributes.Title = "A"
	d, err := handle.CreateWindow(pending)
	if err != nil {
		t.Fatalf("Handle.CreateWindow: %v", err)
	}

	type sized struct {
		size window.PhysicalSize
		err  error
	}
	got := make(chan sized, 1)
	go func() {
		s, err := d.InnerSize()
		got <- sized{s, err}
	}()
	select {
	case r := <-got:
		if r.err != nil {
			t.Fatalf("InnerSize: %v", r.err)
		}
		if want := (window.PhysicalSize{Width: 800, Height: 600}); r.size != want {
			t.Errorf("InnerSize = %+v, want default %+v", r.size, want)
		}
	case <-time.After(testTimeout):
		t.Fatal("getter from a third goroutine hung")
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	waitClosed(t, done, "closing the only window must terminate Run")
}

func TestNestedCreateFromDispatcher(t *testing.T) {
	drv := headless.New()
	rt := New(drv)

	d1, err := rt.CreateWindow(NewPendingWindow("app://a.html"))
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	done := startLoop(t, rt)

	d2, err := d1.CreateWindow(NewPendingWindow("app://b.html"))
	if err != nil {
		t.Fatalf("Dispatcher.CreateWindow: %v", err)
	}
	if d2.WindowID() == d1.WindowID() {
		t.Error("new window must get a fresh id")
	}

	d1.Close()
	d2.Close()
	waitClosed(t, done, "loop did not terminate")
}

func TestCreateWindowFailureIsReported(t *testing.T) {
	drv := headless.New()
	rt := New(drv)
	handle := rt.Handle()

	done := startLoop(t, rt)

	boom := errors.New("toolkit refused")
	drv.FailNextCreate(boom)

	_, err := handle.CreateWindow(NewPendingWindow("app://index.html"))
	if err == nil {
		t.Fatal("CreateWindow must surface the construction failure, not hang")
	}
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped %v", err, boom)
	}

	// the loop survives the failure
	d, err := handle.CreateWindow(NewPendingWindow("app://index.html"))
	if err != nil {
		t.Fatalf("CreateWindow after failure: %v", err)
	}
	d.Close()
	waitClosed(t, done, "loop did not terminate")
}

func TestEvalScriptReachesWebview(t *testing.T) {
	drv := headless.New()
	rt := New(drv)

	d, err := rt.CreateWindow(NewPendingWindow("app://index.html"))
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	done := startLoop(t, rt)

	if err := d.EvalScript("console.log(1)"); err != nil {
		t.Fatalf("EvalScript: %v", err)
	}

	view := drv.Window(d.WindowID()).Webview()
	eventually(t, func() bool {
		scripts := view.ExecutedScripts()
		return len(scripts) == 1 && scripts[0] == "console.log(1)"
	}, "queued script must execute on a later flush pass")

	d.Close()
	waitClosed(t, done, "loop did not terminate")
}

func TestRunOnMainThreadPrecedesCommands(t *testing.T) {
	drv := headless.New()
	rt := New(drv)

	d, err := rt.CreateWindow(NewPendingWindow("app://index.html"))
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	win := drv.Window(d.WindowID())

	// queue a command first, then a task: the task still runs first
	// because the task queue drains before any event each tick
	if err := d.SetTitle("late"); err != nil {
		t.Fatalf("SetTitle: %v", err)
	}
	observed := make(chan string, 1)
	if err := d.RunOnMainThread(func() { observed <- win.Title() }); err != nil {
		t.Fatalf("RunOnMainThread: %v", err)
	}

	rt.RunIteration()

	select {
	case title := <-observed:
		if title == "late" {
			t.Error("task observed the command applied before it; tasks must drain first")
		}
	default:
		t.Fatal("main-thread task did not run")
	}
	if got := win.Title(); got != "late" {
		t.Errorf("title after iteration = %q, want %q", got, "late")
	}
}

func TestRunIterationReportsWindowCount(t *testing.T) {
	drv := headless.New()
	rt := New(drv)

	if got := rt.RunIteration(); got.WindowCount != 0 {
		t.Errorf("WindowCount = %d, want 0", got.WindowCount)
	}

	d, err := rt.CreateWindow(NewPendingWindow("app://index.html"))
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	if got := rt.RunIteration(); got.WindowCount != 1 {
		t.Errorf("WindowCount = %d, want 1", got.WindowCount)
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := rt.RunIteration(); got.WindowCount != 0 {
		t.Errorf("WindowCount after close = %d, want 0", got.WindowCount)
	}
}

func TestMenuEventRouting(t *testing.T) {
	drv := headless.New()
	rt := New(drv)

	d, err := rt.CreateWindow(NewPendingWindow("app://index.html"))
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}

	var menu, tray atomic.Int32
	d.OnMenuEvent(func(event window.MenuEvent) {
		if event.ItemID == "file.open" {
			menu.Add(1)
		}
	})
	rt.OnSystemTrayEvent(func(event window.SystemTrayEvent) {
		if event.ItemID == "tray.quit" {
			tray.Add(1)
		}
	})

	done := startLoop(t, rt)

	drv.EmitMenuEvent("file.open", driver.OriginMenubar)
	drv.EmitMenuEvent("tray.quit", driver.OriginTray)

	eventually(t, func() bool { return menu.Load() == 1 && tray.Load() == 1 },
		"menubar and tray events must reach their own registries")

	d.Close()
	waitClosed(t, done, "loop did not terminate")

	if menu.Load() != 1 || tray.Load() != 1 {
		t.Errorf("menu = %d, tray = %d; want 1, 1", menu.Load(), tray.Load())
	}
}

func TestSendAfterTeardownFails(t *testing.T) {
	drv := headless.New()
	rt := New(drv)

	d, err := rt.CreateWindow(NewPendingWindow("app://index.html"))
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	done := startLoop(t, rt)
	d.Close()
	waitClosed(t, done, "loop did not terminate")

	if err := d.SetTitle("too late"); !errors.Is(err, ErrFailedToSendMessage) {
		t.Errorf("setter after teardown = %v, want ErrFailedToSendMessage", err)
	}
	if _, err := d.InnerSize(); !errors.Is(err, ErrFailedToSendMessage) {
		t.Errorf("getter after teardown = %v, want ErrFailedToSendMessage", err)
	}
	if _, err := rt.Handle().CreateWindow(NewPendingWindow("app://x.html")); !errors.Is(err, ErrFailedToSendMessage) {
		t.Errorf("create after teardown = %v, want ErrFailedToSendMessage", err)
	}
}

func TestMonitorGetters(t *testing.T) {
	drv := headless.New()
	drv.SetMonitors([]window.Monitor{
		{Name: "main", Size: window.PhysicalSize{Width: 2560, Height: 1440}, ScaleFactor: 2.0},
		{Name: "side", Size: window.PhysicalSize{Width: 1920, Height: 1080}, ScaleFactor: 1.0},
	})
	rt := New(drv)

	d, err := rt.CreateWindow(NewPendingWindow("app://index.html"))
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	done := startLoop(t, rt)

	current, err := d.CurrentMonitor()
	if err != nil {
		t.Fatalf("CurrentMonitor: %v", err)
	}
	if current == nil || current.Name != "main" {
		t.Errorf("CurrentMonitor = %+v, want main", current)
	}
	scale, err := d.ScaleFactor()
	if err != nil {
		t.Fatalf("ScaleFactor: %v", err)
	}
	if scale != 2.0 {
		t.Errorf("ScaleFactor = %v, want 2.0", scale)
	}
	monitors, err := d.AvailableMonitors()
	if err != nil {
		t.Fatalf("AvailableMonitors: %v", err)
	}
	if len(monitors) != 2 {
		t.Errorf("AvailableMonitors = %d entries, want 2", len(monitors))
	}

	d.Close()
	waitClosed(t, done, "loop did not terminate")
}
