// Package assets serves embedded application resources. Files are held
// zstd-compressed in memory and decompressed on access, which keeps large
// frontend bundles cheap to embed.
package assets

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/klauspost/compress/zstd"

	"shoji/driver"
	errs "shoji/internal/infrastructure/errors"
)

// NormalizeKey canonicalizes an asset lookup path. Backslashes become
// forward slashes, the path is cleaned, and a leading slash is enforced
// so "index.html", "/index.html" and "./index.html" address the same
// entry.
func NormalizeKey(key string) string {
	key = strings.ReplaceAll(key, `\`, "/")
	if !strings.HasPrefix(key, "/") {
		key = "/" + key
	}
	return path.Clean(key)
}

// Bundle is an immutable set of compressed assets keyed by normalized path.
type Bundle struct {
	entries map[string][]byte
	dec     *zstd.Decoder
}

// New builds a bundle from pre-compressed entries. Keys are normalized;
// values must be zstd frames as produced by Compress.
func New(entries map[string][]byte) (*Bundle, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("assets: init decoder: %w", err)
	}
	normalized := make(map[string][]byte, len(entries))
	for key, data := range entries {
		normalized[NormalizeKey(key)] = data
	}
	return &Bundle{entries: normalized, dec: dec}, nil
}

// Compress encodes data into the frame format Bundle stores. Intended for
// build-time embedding pipelines and tests.
func Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, fmt.Errorf("assets: init encoder: %w", err)
	}
	out := enc.EncodeAll(data, nil)
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

// FromFS compresses every regular file under root into a bundle. The key
// of each entry is the file's path relative to root, with a leading slash.
func FromFS(fsys fs.FS) (*Bundle, error) {
	entries := make(map[string][]byte)
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("assets: read %s: %w", p, err)
		}
		compressed, err := Compress(data)
		if err != nil {
			return err
		}
		entries[NormalizeKey(p)] = compressed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return New(entries)
}

// Has reports whether key resolves to an entry, including the html
// fallbacks Get applies.
func (b *Bundle) Has(key string) bool {
	_, ok := b.resolve(key)
	return ok
}

// Keys returns every normalized key in the bundle, in no particular order.
func (b *Bundle) Keys() []string {
	keys := make([]string, 0, len(b.entries))
	for key := range b.entries {
		keys = append(keys, key)
	}
	return keys
}

// Get returns the decompressed contents for key. Lookup tries the exact
// key, then key + ".html", then key + "/index.html", so extensionless
// routes served by single page applications resolve to their documents.
func (b *Bundle) Get(key string) ([]byte, error) {
	compressed, ok := b.resolve(key)
	if !ok {
		return nil, errs.New("assets.get", errs.CodeAssetNotFound,
			fmt.Sprintf("asset %q not found", NormalizeKey(key)))
	}
	data, err := b.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("assets: decompress %s: %w", NormalizeKey(key), err)
	}
	return data, nil
}

func (b *Bundle) resolve(key string) ([]byte, bool) {
	key = NormalizeKey(key)
	for _, candidate := range []string{key, key + ".html", NormalizeKey(key + "/index.html")} {
		if data, ok := b.entries[candidate]; ok {
			return data, true
		}
	}
	return nil, false
}

// ProtocolHandler adapts the bundle to a custom webview protocol. The
// URL's path selects the asset; an empty or root path serves /index.html.
func (b *Bundle) ProtocolHandler() driver.ProtocolHandler {
	return func(url string) ([]byte, error) {
		return b.Get(pathFromURL(url))
	}
}

// pathFromURL strips the scheme, authority, query and fragment from a
// custom protocol URL, leaving the asset path.
func pathFromURL(url string) string {
	if i := strings.Index(url, "://"); i >= 0 {
		url = url[i+3:]
		// the authority component, if any, is not part of the key
		if j := strings.Index(url, "/"); j >= 0 {
			url = url[j:]
		} else {
			url = "/"
		}
	}
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	if url == "" || url == "/" {
		return "/index.html"
	}
	return url
}
