package updater

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	errs "shoji/internal/infrastructure/errors"
)

// archiveNameFromURL picks the on-disk name for a downloaded archive from
// the last path segment of its URL, falling back to a per-OS default when
// the URL carries none.
func archiveNameFromURL(url string) string {
	// query and fragment are not part of the name, and would confuse
	// the extension dispatch in extract
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	url = strings.TrimSuffix(url, "/")
	if i := strings.LastIndex(url, "/"); i >= 0 && i < len(url)-1 {
		return url[i+1:]
	}
	if runtime.GOOS == "windows" {
		return "update.zip"
	}
	return "update.tar.gz"
}

// extract unpacks the archive at path into dest, dispatching on the file
// extension. tar.gz, tgz and zip payloads are supported.
func extract(path, dest string) error {
	const op = "updater.extract"
	switch {
	case strings.HasSuffix(path, ".tar.gz"), strings.HasSuffix(path, ".tgz"):
		if err := extractTarGz(path, dest); err != nil {
			return errs.Wrap(op, errs.CodeInstall, err)
		}
		return nil
	case strings.HasSuffix(path, ".zip"):
		if err := extractZip(path, dest); err != nil {
			return errs.Wrap(op, errs.CodeInstall, err)
		}
		return nil
	}
	return errs.New(op, errs.CodeInstall, "unsupported archive format: "+filepath.Base(path))
}

// securePath refuses entries that would escape dest.
func securePath(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", errs.New("updater.extract", errs.CodeInstall,
			"archive entry escapes destination: "+name)
	}
	return target, nil
}

func extractTarGz(path, dest string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		target, err := securePath(dest, header.Name)
		if err != nil {
			return err
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC,
				os.FileMode(header.Mode)&0o777)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		}
	}
}

func extractZip(path, dest string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, file := range r.File {
		target, err := securePath(dest, file.Name)
		if err != nil {
			return err
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		in, err := file.Open()
		if err != nil {
			return err
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC,
			file.Mode()&0o777)
		if err != nil {
			in.Close()
			return err
		}
		_, err = io.Copy(out, in)
		in.Close()
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}
	return nil
}
