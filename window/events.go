package window

// Event is a native window event translated into the public vocabulary.
// Only the kinds below are surfaced; everything else the toolkit emits is
// dropped before reaching listeners.
type Event interface {
	isWindowEvent()
}

// ResizedEvent reports the new inner size of a window.
type ResizedEvent struct {
	Size PhysicalSize
}

// MovedEvent reports the new outer position of a window.
type MovedEvent struct {
	Position PhysicalPosition
}

// CloseRequestedEvent is emitted when the user asks the window to close,
// before the window is torn down.
type CloseRequestedEvent struct{}

// DestroyedEvent is emitted after the native window is gone.
type DestroyedEvent struct{}

// FocusedEvent reports a focus gain or loss.
type FocusedEvent struct {
	Focused bool
}

// ScaleFactorChangedEvent is emitted when the window moves to a monitor
// with a different scale factor, or the scale factor changes in place.
type ScaleFactorChangedEvent struct {
	ScaleFactor  float64
	NewInnerSize PhysicalSize
}

func (ResizedEvent) isWindowEvent()            {}
func (MovedEvent) isWindowEvent()              {}
func (CloseRequestedEvent) isWindowEvent()     {}
func (DestroyedEvent) isWindowEvent()          {}
func (FocusedEvent) isWindowEvent()            {}
func (ScaleFactorChangedEvent) isWindowEvent() {}

// MenuEvent reports a menubar item selection.
type MenuEvent struct {
	ItemID string
}

// SystemTrayEvent reports a tray menu item selection.
type SystemTrayEvent struct {
	ItemID string
}

// FileDropKind is the phase of a drag-and-drop interaction.
type FileDropKind int

const (
	// FileDropHovered means files are being dragged over the window.
	FileDropHovered FileDropKind = iota
	// FileDropDropped means files were released over the window.
	FileDropDropped
	// FileDropCancelled means the drag left the window or was aborted.
	FileDropCancelled
)

// String returns the kind name used in logs.
func (k FileDropKind) String() string {
	switch k {
	case FileDropHovered:
		return "hovered"
	case FileDropDropped:
		return "dropped"
	case FileDropCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// FileDropEvent is a native drag-and-drop event. Paths is empty for
// FileDropCancelled.
type FileDropEvent struct {
	Kind  FileDropKind
	Paths []string
}
