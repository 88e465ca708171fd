//go:build linux

package platform

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	errs "shoji/internal/infrastructure/errors"
)

// refineInstallPath prefers the AppImage path exposed by the AppImage
// runtime. Without it there is nothing we know how to replace.
func refineInstallPath(dir string) string {
	if appImage := os.Getenv("APPIMAGE"); appImage != "" {
		return appImage
	}
	return dir
}

// Supported reports whether an in-place update is possible. Only AppImage
// deployments are replaceable today.
func Supported() bool {
	return os.Getenv("APPIMAGE") != ""
}

// Install replaces the running AppImage with the one extracted into
// payloadDir.
func Install(payloadDir, installPath string) error {
	if !Supported() {
		return errs.New("platform.install", errs.CodeUnsupportedPlatform,
			"updates require an AppImage deployment")
	}
	entries, err := os.ReadDir(payloadDir)
	if err != nil {
		return errs.Wrap("platform.install", errs.CodeInstall, err)
	}
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".AppImage") {
			continue
		}
		found := filepath.Join(payloadDir, entry.Name())
		if err := os.Remove(installPath); err != nil && !os.IsNotExist(err) {
			return errs.Wrap("platform.install", errs.CodeInstall, err)
		}
		// mv handles the cross-filesystem case tmp dirs usually hit
		if err := exec.Command("mv", "-f", found, installPath).Run(); err != nil {
			return errs.Wrap("platform.install", errs.CodeInstall, err)
		}
		return nil
	}
	return errs.New("platform.install", errs.CodeInstall,
		"no AppImage found in update payload")
}
