// Package updater checks release servers for newer application versions,
// downloads and verifies the announced archive, and installs it with the
// platform's own procedure.
package updater

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	goversion "github.com/hashicorp/go-version"
	"github.com/rs/zerolog"

	errs "shoji/internal/infrastructure/errors"
	"shoji/internal/infrastructure/logging"
	"shoji/internal/platform"
)

// ErrUpToDate is returned by Check when the server answers 204, its way
// of saying there is nothing newer. A server that announces an older or
// equal version instead is not an error; that case surfaces through
// Update.ShouldUpdate.
var ErrUpToDate = errs.New("updater.check", errs.CodeUpToDate, "already up to date")

const requestTimeout = 20 * time.Second

// Builder assembles an update check.
type Builder struct {
	urls           []string
	currentVersion string
	target         string
	executablePath string
	client         *http.Client
	log            zerolog.Logger
}

// NewBuilder returns a Builder with the default HTTP client.
func NewBuilder() *Builder {
	return &Builder{
		client: &http.Client{Timeout: requestTimeout},
		log:    logging.New("updater"),
	}
}

// URL adds one endpoint to query. Endpoints may embed {{target}} and
// {{current_version}} template variables.
func (b *Builder) URL(url string) *Builder {
	b.urls = append(b.urls, url)
	return b
}

// URLs adds several endpoints, queried in order until one answers with
// valid metadata.
func (b *Builder) URLs(urls []string) *Builder {
	b.urls = append(b.urls, urls...)
	return b
}

// CurrentVersion sets the running application version.
func (b *Builder) CurrentVersion(version string) *Builder {
	b.currentVersion = version
	return b
}

// Target overrides the detected platform target.
func (b *Builder) Target(target string) *Builder {
	b.target = target
	return b
}

// ExecutablePath overrides the running executable's path, which decides
// where the update installs.
func (b *Builder) ExecutablePath(path string) *Builder {
	b.executablePath = path
	return b
}

// HTTPClient overrides the HTTP client used for metadata and download
// requests.
func (b *Builder) HTTPClient(client *http.Client) *Builder {
	b.client = client
	return b
}

// Update is the outcome of a successful check.
type Update struct {
	// ShouldUpdate reports whether the announced version is newer than
	// the running one.
	ShouldUpdate bool
	// Version is the announced version.
	Version string
	// CurrentVersion is the running version the check compared against.
	CurrentVersion string
	// Date is the announced publication date.
	Date string
	// Body is the release note, if any.
	Body string

	target      string
	installPath string
	downloadURL string
	signature   string
	client      *http.Client
	log         zerolog.Logger
}

func expandURL(url, target, currentVersion string) string {
	url = strings.ReplaceAll(url, "{{current_version}}", currentVersion)
	return strings.ReplaceAll(url, "{{target}}", target)
}

// Check queries the configured endpoints in order and returns the first
// valid answer. A 204 response means the server has nothing newer and
// surfaces as ErrUpToDate. Endpoints that fail or return invalid metadata
// are skipped; their last error is reported only when every endpoint
// failed.
func (b *Builder) Check(ctx context.Context) (*Update, error) {
	const op = "updater.check"
	if len(b.urls) == 0 {
		return nil, errs.New(op, errs.CodeRemoteMetadata, "an update URL is required")
	}

	executablePath := b.executablePath
	if executablePath == "" {
		path, err := os.Executable()
		if err != nil {
			return nil, errs.Wrap(op, errs.CodeInstall, err)
		}
		executablePath = path
	}

	target := b.target
	if target == "" {
		detected, err := platform.Target()
		if err != nil {
			return nil, err
		}
		target = detected
	}

	var release Release
	var lastErr error
	found := false
	for _, raw := range b.urls {
		url := expandURL(raw, target, b.currentVersion)
		parsed, err := b.fetchRelease(ctx, url, target)
		if err != nil {
			if errs.IsCode(err, errs.CodeUpToDate) {
				return nil, err
			}
			b.log.Debug().Str("url", url).Err(err).Msg("endpoint skipped")
			lastErr = err
			continue
		}
		release = parsed
		found = true
		break
	}
	if !found {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, errs.New(op, errs.CodeRemoteMetadata,
			"unable to extract update metadata from the remote server")
	}

	shouldUpdate := isGreater(b.currentVersion, release.Version)
	b.log.Info().
		Str("current", b.currentVersion).
		Str("announced", release.Version).
		Bool("should_update", shouldUpdate).
		Msg("update check complete")

	return &Update{
		ShouldUpdate:   shouldUpdate,
		Version:        release.Version,
		CurrentVersion: b.currentVersion,
		Date:           release.Date,
		Body:           release.Body,
		target:         target,
		installPath:    platform.InstallPath(executablePath),
		downloadURL:    release.DownloadURL,
		signature:      release.Signature,
		client:         b.client,
		log:            b.log,
	}, nil
}

func (b *Builder) fetchRelease(ctx context.Context, url, target string) (Release, error) {
	const op = "updater.fetch_release"
	var body []byte
	var status int

	fetch := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return errs.Wrap(op, errs.CodeRemoteMetadata, err)
		}
		req.Header.Set("Accept", "application/json")
		resp, err := b.client.Do(req)
		if err != nil {
			return errs.Wrap(op, errs.CodeNetwork, err)
		}
		defer resp.Body.Close()
		status = resp.StatusCode
		if body, err = io.ReadAll(resp.Body); err != nil {
			return errs.Wrap(op, errs.CodeNetwork, err)
		}
		return nil
	}
	if err := errs.WithRetry(ctx, nil, b.log, "fetch release metadata", fetch); err != nil {
		return Release{}, err
	}

	if status == http.StatusNoContent {
		return Release{}, ErrUpToDate
	}
	if status < 200 || status > 299 {
		return Release{}, errs.New(op, errs.CodeNetwork,
			fmt.Sprintf("metadata request failed with status %d", status))
	}
	return ParseRelease(body, target)
}

// isGreater reports whether announced is a strictly newer version than
// current. Unparseable versions never trigger an update.
func isGreater(current, announced string) bool {
	cur, err := goversion.NewVersion(current)
	if err != nil {
		return false
	}
	next, err := goversion.NewVersion(announced)
	if err != nil {
		return false
	}
	return next.GreaterThan(cur)
}

// DownloadAndInstall fetches the announced archive, verifies it when a
// public key is configured, extracts it and runs the platform install
// procedure. publicKey may be empty to skip verification; when it is set,
// an update announced without a signature is rejected.
func (u *Update) DownloadAndInstall(ctx context.Context, publicKey string) error {
	const op = "updater.download_and_install"

	if !platform.Supported() {
		return errs.New(op, errs.CodeUnsupportedPlatform,
			"no install procedure for this deployment")
	}
	if publicKey != "" && u.signature == "" {
		return errs.New(op, errs.CodeSignature,
			"public key configured but release carries no signature")
	}

	tmpDir, err := os.MkdirTemp("", "update_download")
	if err != nil {
		return errs.Wrap(op, errs.CodeInstall, err)
	}
	defer os.RemoveAll(tmpDir)

	archivePath := filepath.Join(tmpDir, archiveNameFromURL(u.downloadURL))
	data, err := u.download(ctx)
	if err != nil {
		return err
	}

	if publicKey != "" {
		if err := VerifySignature(data, u.signature, publicKey); err != nil {
			return err
		}
	}

	if err := os.WriteFile(archivePath, data, 0o644); err != nil {
		return errs.Wrap(op, errs.CodeInstall, err)
	}
	if err := extract(archivePath, tmpDir); err != nil {
		return err
	}
	if err := os.Remove(archivePath); err != nil {
		return errs.Wrap(op, errs.CodeInstall, err)
	}

	u.log.Info().
		Str("version", u.Version).
		Str("install_path", u.installPath).
		Msg("installing update")
	return platform.Install(tmpDir, u.installPath)
}

func (u *Update) download(ctx context.Context) ([]byte, error) {
	const op = "updater.download"
	var data []byte

	fetch := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.downloadURL, nil)
		if err != nil {
			return errs.Wrap(op, errs.CodeNetwork, err)
		}
		req.Header.Set("Accept", "application/octet-stream")
		req.Header.Set("User-Agent", "shoji/updater")
		resp, err := u.client.Do(req)
		if err != nil {
			return errs.Wrap(op, errs.CodeNetwork, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return errs.New(op, errs.CodeNetwork,
				fmt.Sprintf("download request failed with status %d", resp.StatusCode))
		}
		if data, err = io.ReadAll(resp.Body); err != nil {
			return errs.Wrap(op, errs.CodeNetwork, err)
		}
		return nil
	}
	if err := errs.WithRetry(ctx, nil, u.log, "download update archive", fetch); err != nil {
		return nil, err
	}
	return data, nil
}
