// Package platform resolves the update target for the running binary and
// installs extracted update payloads with the mechanism each operating
// system expects.
package platform

import (
	"path/filepath"
	"runtime"

	errs "shoji/internal/infrastructure/errors"
)

// Target returns the update target identifier announced to release
// servers: linux, darwin, win32 or win64.
func Target() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return "linux", nil
	case "darwin":
		return "darwin", nil
	case "windows":
		if runtime.GOARCH == "386" || runtime.GOARCH == "arm" {
			return "win32", nil
		}
		return "win64", nil
	}
	return "", errs.New("platform.target", errs.CodeUnsupportedPlatform,
		"no update target for "+runtime.GOOS)
}

// InstallPath derives the location the update replaces from the running
// executable's path. Per-OS overrides refine the answer: on macOS the
// enclosing .app bundle, on Linux the AppImage named by the APPIMAGE
// environment variable.
func InstallPath(executablePath string) string {
	return refineInstallPath(filepath.Dir(executablePath))
}
