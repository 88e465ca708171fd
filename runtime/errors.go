package runtime

import (
	errs "shoji/internal/infrastructure/errors"
)

// ErrFailedToSendMessage is returned by every Dispatcher and Handle
// operation when the runtime's command channel no longer has a receiver,
// i.e. the event loop has been torn down. Recoverable by the caller; the
// operation simply never happened.
var ErrFailedToSendMessage = errs.New("", errs.CodeSendFailure, "failed to send message")

// ErrWindowGone is delivered on a getter's reply channel when the target
// window left the live table before the command was applied. Setters
// addressed to a gone window are dropped silently.
var ErrWindowGone = errs.New("", errs.CodeWindowGone, "window gone")

// errHandlerConsumed guards the at-most-once contract of the window
// construction closure.
var errHandlerConsumed = errs.New("runtime.create_window", errs.CodeCreateWindow, "construction closure already consumed")
