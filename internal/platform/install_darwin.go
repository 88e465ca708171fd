//go:build darwin

package platform

import (
	"os"
	"path/filepath"
	"strings"

	errs "shoji/internal/infrastructure/errors"
)

// refineInstallPath walks up from Contents/MacOS to the .app bundle root.
// A binary at /Applications/Demo.app/Contents/MacOS/demo installs to
// /Applications/Demo.app.
func refineInstallPath(dir string) string {
	if strings.Contains(dir, "Contents/MacOS") {
		return filepath.Dir(filepath.Dir(dir))
	}
	return dir
}

// Supported reports whether an in-place update is possible.
func Supported() bool { return true }

// Install swaps the installed .app bundle with the one extracted into
// payloadDir. The archived bundle is renamed to the installed bundle's
// name first so the replacement keeps its identity.
func Install(payloadDir, installPath string) error {
	entries, err := os.ReadDir(payloadDir)
	if err != nil {
		return errs.Wrap("platform.install", errs.CodeInstall, err)
	}
	appName := filepath.Base(installPath)
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) != ".app" {
			continue
		}
		found := filepath.Join(payloadDir, entry.Name())
		if entry.Name() != appName {
			renamed := filepath.Join(payloadDir, appName)
			if err := os.Rename(found, renamed); err != nil {
				return errs.Wrap("platform.install", errs.CodeInstall, err)
			}
			found = renamed
		}
		// park the old bundle so the swap can be rolled back by hand
		backup, err := os.MkdirTemp("", "previous_app")
		if err != nil {
			return errs.Wrap("platform.install", errs.CodeInstall, err)
		}
		parked := filepath.Join(backup, appName)
		if err := os.Rename(installPath, parked); err != nil && !os.IsNotExist(err) {
			return errs.Wrap("platform.install", errs.CodeInstall, err)
		}
		if err := os.Rename(found, installPath); err != nil {
			// try to put the previous bundle back
			_ = os.Rename(parked, installPath)
			return errs.Wrap("platform.install", errs.CodeInstall, err)
		}
		return nil
	}
	return errs.New("platform.install", errs.CodeInstall,
		"no .app bundle found in update payload")
}
