package runtime

import (
	"fmt"

	"shoji/driver"
	errs "shoji/internal/infrastructure/errors"
	"shoji/window"
)

// RPCHandler handles an RPC invocation from web content. It runs
// synchronously on the event-loop thread; responses, if any, are the
// application's responsibility (usually via EvalScript on the dispatcher).
type RPCHandler func(d Dispatcher, req window.RPCRequest)

// FileDropHandler handles a drag-and-drop event and reports whether it
// consumed it.
type FileDropHandler func(d Dispatcher, event window.FileDropEvent) bool

// ProtocolHandler serves content for a custom URI scheme registered on a
// window's webview.
type ProtocolHandler func(url string) ([]byte, error)

// PendingWindow is the declarative description of a window plus its
// webview wiring. It is consumed exactly once to materialize a native
// window/webview pair; afterwards the live pair is addressed only through
// the returned Dispatcher.
type PendingWindow struct {
	Attributes      window.Attributes
	URL             string
	DataDirectory   string
	InitScripts     []string
	Protocols       map[string]ProtocolHandler
	RPCHandler      RPCHandler
	FileDropHandler FileDropHandler
}

// NewPendingWindow returns a pending window with default attributes
// pointed at the given content URL.
func NewPendingWindow(url string) PendingWindow {
	return PendingWindow{Attributes: window.DefaultAttributes(), URL: url}
}

// createWindow packages the pending description into a one-shot
// construction closure, sends it to the event loop, and blocks for the
// new window id. Construction failures travel back on the reply channel.
func createWindow(ctx *dispatchContext, pending PendingWindow) (Dispatcher, error) {
	reply := make(chan createResult, 1)
	handler := newCreateHandler(func(drv driver.Driver) (driver.Window, driver.Webview, error) {
		return buildWindow(drv, ctx, pending)
	})
	if err := ctx.send(createWindowMsg{handler: handler, reply: reply}); err != nil {
		return Dispatcher{}, err
	}
	select {
	case r := <-reply:
		if r.err != nil {
			return Dispatcher{}, r.err
		}
		return Dispatcher{id: r.id, ctx: ctx}, nil
	case <-ctx.done:
		select {
		case r := <-reply:
			if r.err != nil {
				return Dispatcher{}, r.err
			}
			return Dispatcher{id: r.id, ctx: ctx}, nil
		default:
			return Dispatcher{}, ErrFailedToSendMessage
		}
	}
}

// buildWindow turns a pending description into live native objects,
// wiring the native callbacks back into the message protocol. It runs on
// the event-loop thread.
func buildWindow(drv driver.Driver, ctx *dispatchContext, pending PendingWindow) (driver.Window, driver.Webview, error) {
	opts := driver.CreateOptions{
		Attributes:    pending.Attributes,
		URL:           pending.URL,
		DataDirectory: pending.DataDirectory,
		InitScripts:   pending.InitScripts,
	}

	if len(pending.Protocols) > 0 {
		opts.Protocols = make(map[string]driver.ProtocolHandler, len(pending.Protocols))
		for scheme, handler := range pending.Protocols {
			opts.Protocols[scheme] = wrapProtocol(scheme, handler)
		}
	}

	if handler := pending.RPCHandler; handler != nil {
		opts.OnRPC = func(id window.ID, req window.RPCRequest) {
			handler(Dispatcher{id: id, ctx: ctx}, req)
		}
	}

	if handler := pending.FileDropHandler; handler != nil {
		opts.OnFileDrop = func(id window.ID, event window.FileDropEvent) bool {
			return handler(Dispatcher{id: id, ctx: ctx}, event)
		}
	}

	win, view, err := drv.CreateWindow(opts)
	if err != nil {
		return nil, nil, errs.Wrap("runtime.create_window", errs.CodeCreateWindow, err)
	}
	return win, view, nil
}

// wrapProtocol translates a handler failure into a generic scheme-level
// error before it reaches the native layer.
func wrapProtocol(scheme string, handler ProtocolHandler) driver.ProtocolHandler {
	return func(url string) ([]byte, error) {
		data, err := handler(url)
		if err != nil {
			return nil, fmt.Errorf("custom protocol %q failed", scheme)
		}
		return data, nil
	}
}
