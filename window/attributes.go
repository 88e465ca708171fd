package window

// Attributes is the declarative description of a window before it exists.
// The zero value is not useful; start from DefaultAttributes and override.
// Optional values are pointers: nil defers to the native toolkit default
// (an unset Position means native default placement).
type Attributes struct {
	Title       string
	Size        LogicalSize
	MinSize     *LogicalSize
	MaxSize     *LogicalSize
	Position    *LogicalPosition
	Resizable   bool
	Fullscreen  bool
	Focus       bool
	Maximized   bool
	Visible     bool
	Transparent bool
	Decorations bool
	AlwaysOnTop bool
	SkipTaskbar bool
	Icon        *Icon
}

// DefaultAttributes returns the attribute set applied when the caller does
// not override anything: an 800x600 resizable, decorated, visible window.
func DefaultAttributes() Attributes {
	return Attributes{
		Size:        LogicalSize{Width: 800, Height: 600},
		Resizable:   true,
		Visible:     true,
		Decorations: true,
	}
}

// RPCRequest is a normalized RPC invocation originating from web content.
type RPCRequest struct {
	// Method is the command name announced by the content.
	Method string `json:"method"`
	// Params is the raw JSON argument payload, nil when the invocation
	// carried none.
	Params []byte `json:"params,omitempty"`
}
