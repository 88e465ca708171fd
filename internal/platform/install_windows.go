//go:build windows

package platform

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"

	errs "shoji/internal/infrastructure/errors"
)

func refineInstallPath(dir string) string { return dir }

// Supported reports whether an in-place update is possible.
func Supported() bool { return true }

// Install launches the installer found in payloadDir. An .exe payload is
// expected to be a full installer; an .msi is handed to msiexec with a
// basic UI. Either way the installer owns the rest of the update and the
// current process should exit once this returns nil.
func Install(payloadDir, installPath string) error {
	entries, err := os.ReadDir(payloadDir)
	if err != nil {
		return errs.Wrap("platform.install", errs.CodeInstall, err)
	}
	for _, entry := range entries {
		found := filepath.Join(payloadDir, entry.Name())
		switch filepath.Ext(entry.Name()) {
		case ".exe":
			if err := shellOpen(found, ""); err != nil {
				return errs.Wrap("platform.install", errs.CodeInstall, err)
			}
			return nil
		case ".msi":
			if err := shellOpen("msiexec.exe", `/i "`+found+`" /qb+`); err != nil {
				return errs.Wrap("platform.install", errs.CodeInstall, err)
			}
			return nil
		}
	}
	return errs.New("platform.install", errs.CodeInstall,
		"no installer found in update payload")
}

func shellOpen(path, args string) error {
	verb, _ := windows.UTF16PtrFromString("open")
	file, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	var params *uint16
	if args != "" {
		if params, err = windows.UTF16PtrFromString(args); err != nil {
			return err
		}
	}
	return windows.ShellExecute(0, verb, file, params, nil, windows.SW_SHOWNORMAL)
}
