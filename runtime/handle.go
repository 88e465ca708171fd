package runtime

import "github.com/google/uuid"

// Handle is a cloneable, thread-safe capability that lets any goroutine
// request window creation or main-thread work without holding a reference
// to the running event loop.
type Handle struct {
	ctx *dispatchContext
}

// CreateWindow materializes a new window and returns a dispatcher bound
// to it. Must be called from a thread other than the event-loop thread;
// the call blocks until the loop has built the window.
func (h Handle) CreateWindow(pending PendingWindow) (Dispatcher, error) {
	return createWindow(h.ctx, pending)
}

// RunOnMainThread enqueues f onto the main-thread task queue. Tasks run
// before native and command events in the next loop iteration.
func (h Handle) RunOnMainThread(f func()) error {
	return h.ctx.enqueueTask(f)
}

// OnWindowEvent registers f in the shared listener registry and returns
// the registration id.
func (h Handle) OnWindowEvent(f WindowEventHandler) uuid.UUID {
	return h.ctx.windowListeners.add(f)
}
