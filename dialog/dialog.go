// Package dialog defines the boundary to native file pickers and message
// boxes. Implementations wrap a platform toolkit; this package carries
// only the request types and interfaces the application core programs
// against.
package dialog

import "context"

// Filter restricts a file picker to named extension groups, for example
// {"Images", []string{"png", "jpg"}}.
type Filter struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

// OpenOptions configures an open dialog.
type OpenOptions struct {
	// Filters restrict the selectable files. Empty means any file.
	Filters []Filter `json:"filters,omitempty"`
	// Multiple allows selecting more than one entry.
	Multiple bool `json:"multiple,omitempty"`
	// Directory switches the dialog to directory selection.
	Directory bool `json:"directory,omitempty"`
	// DefaultPath is the initially shown location, empty for the
	// platform default.
	DefaultPath string `json:"defaultPath,omitempty"`
}

// SaveOptions configures a save dialog.
type SaveOptions struct {
	Filters     []Filter `json:"filters,omitempty"`
	DefaultPath string   `json:"defaultPath,omitempty"`
}

// Opener shows native file pickers. A cancelled dialog returns an empty
// result and a nil error.
type Opener interface {
	// Open shows an open dialog and returns the selected paths.
	Open(ctx context.Context, opts OpenOptions) ([]string, error)
	// Save shows a save dialog and returns the chosen destination.
	Save(ctx context.Context, opts SaveOptions) (string, error)
}

// Level is the severity a message dialog displays with.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	}
	return "unknown"
}

// Messenger shows native message and confirmation boxes.
type Messenger interface {
	// Message shows a dismissable message box.
	Message(ctx context.Context, title, message string, level Level) error
	// Ask shows a yes/no question and reports the answer.
	Ask(ctx context.Context, title, message string) (bool, error)
}
