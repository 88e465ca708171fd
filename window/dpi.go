package window

import "math"

// ID is the opaque, process-unique identity assigned to a window by the
// native toolkit when it is created. It routes every window- and
// webview-scoped message and is never reused while the window lives.
type ID uint64

// PhysicalPosition is a position in physical (device) pixels.
type PhysicalPosition struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// LogicalPosition is a position in logical pixels, independent of the
// monitor scale factor.
type LogicalPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PhysicalSize is a size in physical (device) pixels.
type PhysicalSize struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// LogicalSize is a size in logical pixels.
type LogicalSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Position is either a physical or a logical position. The native layer
// always works in physical pixels; ToPhysical performs the conversion at
// the window's current scale factor.
type Position interface {
	ToPhysical(scaleFactor float64) PhysicalPosition
}

// Size is either a physical or a logical size.
type Size interface {
	ToPhysical(scaleFactor float64) PhysicalSize
}

// ToPhysical returns p unchanged; physical values do not rescale.
func (p PhysicalPosition) ToPhysical(float64) PhysicalPosition { return p }

// ToLogical converts p using the given scale factor.
func (p PhysicalPosition) ToLogical(scaleFactor float64) LogicalPosition {
	return LogicalPosition{X: float64(p.X) / scaleFactor, Y: float64(p.Y) / scaleFactor}
}

// ToPhysical converts p using the given scale factor, rounding to the
// nearest pixel.
func (p LogicalPosition) ToPhysical(scaleFactor float64) PhysicalPosition {
	return PhysicalPosition{
		X: int32(math.Round(p.X * scaleFactor)),
		Y: int32(math.Round(p.Y * scaleFactor)),
	}
}

// ToPhysical returns s unchanged.
func (s PhysicalSize) ToPhysical(float64) PhysicalSize { return s }

// ToLogical converts s using the given scale factor.
func (s PhysicalSize) ToLogical(scaleFactor float64) LogicalSize {
	return LogicalSize{Width: float64(s.Width) / scaleFactor, Height: float64(s.Height) / scaleFactor}
}

// ToPhysical converts s using the given scale factor, rounding to the
// nearest pixel.
func (s LogicalSize) ToPhysical(scaleFactor float64) PhysicalSize {
	return PhysicalSize{
		Width:  uint32(math.Round(s.Width * scaleFactor)),
		Height: uint32(math.Round(s.Height * scaleFactor)),
	}
}

// Monitor describes a connected display as reported by the native toolkit.
type Monitor struct {
	// Name is the human-readable monitor name, empty when the toolkit
	// cannot determine one.
	Name string `json:"name"`
	// Position of the monitor's top-left corner in the virtual screen
	// space, in physical pixels.
	Position PhysicalPosition `json:"position"`
	// Size of the monitor in physical pixels.
	Size PhysicalSize `json:"size"`
	// ScaleFactor maps logical to physical pixels on this monitor.
	ScaleFactor float64 `json:"scaleFactor"`
}
