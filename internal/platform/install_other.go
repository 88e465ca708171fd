//go:build !linux && !darwin && !windows

package platform

import errs "shoji/internal/infrastructure/errors"

func refineInstallPath(dir string) string { return dir }

// Supported reports whether an in-place update is possible.
func Supported() bool { return false }

// Install always fails on platforms without an install procedure.
func Install(payloadDir, installPath string) error {
	return errs.New("platform.install", errs.CodeUnsupportedPlatform,
		"no install procedure for this platform")
}
