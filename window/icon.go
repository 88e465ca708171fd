package window

import (
	"errors"
	"os"
)

// Icon is a window icon, either raw encoded image bytes or a path to an
// image file on disk. Decoding is left to the native layer; the framework
// only loads and routes the bytes.
type Icon struct {
	// Path to an image file. Read lazily by Bytes.
	Path string
	// Raw encoded image bytes. Takes precedence over Path when set.
	Raw []byte
}

// ErrEmptyIcon is returned by Bytes when the icon has neither raw bytes
// nor a file path.
var ErrEmptyIcon = errors.New("icon has no content")

// Bytes returns the encoded image content, reading the file when the icon
// was declared by path.
func (i Icon) Bytes() ([]byte, error) {
	if len(i.Raw) > 0 {
		return i.Raw, nil
	}
	if i.Path != "" {
		return os.ReadFile(i.Path)
	}
	return nil, ErrEmptyIcon
}
