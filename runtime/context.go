package runtime

import (
	"sync"

	"github.com/google/uuid"

	"shoji/window"
)

// WindowEventHandler receives every surfaced window event together with
// the id of the window that produced it. Fan-out is a broadcast: handlers
// are not filtered by the window they were registered through.
type WindowEventHandler func(id window.ID, event window.Event)

// MenuEventHandler receives menubar selections.
type MenuEventHandler func(event window.MenuEvent)

// TrayEventHandler receives system tray selections.
type TrayEventHandler func(event window.SystemTrayEvent)

// registry is a shared listener table keyed by registration id. Insertion
// order is irrelevant for dispatch; every handler fires on every
// occurrence of its event kind.
type registry[H any] struct {
	mu       sync.Mutex
	handlers map[uuid.UUID]H
}

func newRegistry[H any]() *registry[H] {
	return &registry[H]{handlers: make(map[uuid.UUID]H)}
}

func (r *registry[H]) add(h H) uuid.UUID {
	id := uuid.New()
	r.mu.Lock()
	r.handlers[id] = h
	r.mu.Unlock()
	return id
}

func (r *registry[H]) remove(id uuid.UUID) {
	r.mu.Lock()
	delete(r.handlers, id)
	r.mu.Unlock()
}

// each invokes f for every handler registered at the time of the call.
// The table is snapshotted under the lock and handlers run after it is
// released, so a handler may add or remove listeners without deadlocking
// the event loop. Registrations made during dispatch see the next event.
func (r *registry[H]) each(f func(h H)) {
	r.mu.Lock()
	snapshot := make([]H, 0, len(r.handlers))
	for _, h := range r.handlers {
		snapshot = append(snapshot, h)
	}
	r.mu.Unlock()
	for _, h := range snapshot {
		f(h)
	}
}

// dispatchContext is the shared, clonable bundle every Dispatcher and
// Handle carries: the sender into the event loop's message channel, the
// sender into the main-thread task queue, and the listener registries.
type dispatchContext struct {
	msgs  chan message
	tasks chan func()
	// done is closed when the event loop exits; sends observed after
	// that fail with ErrFailedToSendMessage instead of blocking forever.
	done chan struct{}

	windowListeners *registry[WindowEventHandler]
	menuListeners   *registry[MenuEventHandler]
	trayListeners   *registry[TrayEventHandler]
}

func newDispatchContext() *dispatchContext {
	return &dispatchContext{
		msgs:            make(chan message, 64),
		tasks:           make(chan func(), 64),
		done:            make(chan struct{}),
		windowListeners: newRegistry[WindowEventHandler](),
		menuListeners:   newRegistry[MenuEventHandler](),
		trayListeners:   newRegistry[TrayEventHandler](),
	}
}

func (c *dispatchContext) send(m message) error {
	select {
	case <-c.done:
		return ErrFailedToSendMessage
	default:
	}
	select {
	case c.msgs <- m:
		return nil
	case <-c.done:
		return ErrFailedToSendMessage
	}
}

func (c *dispatchContext) enqueueTask(f func()) error {
	select {
	case <-c.done:
		return ErrFailedToSendMessage
	default:
	}
	select {
	case c.tasks <- f:
		return nil
	case <-c.done:
		return ErrFailedToSendMessage
	}
}
