package updater

import (
	"encoding/json"
	"strings"

	errs "shoji/internal/infrastructure/errors"
)

// Release is the update metadata announced by a release server for one
// target platform.
type Release struct {
	// Version is the announced version, without a leading "v".
	Version string
	// Date is the publication date, "N/A" when the server omits it.
	Date string
	// DownloadURL points at the update archive for the target.
	DownloadURL string
	// Body is the optional release note.
	Body string
	// Signature is the optional detached signature of the archive.
	Signature string
}

type platformEntry struct {
	URL       *string `json:"url"`
	Signature *string `json:"signature"`
}

type releaseDocument struct {
	Version   *string                  `json:"version"`
	Name      *string                  `json:"name"`
	PubDate   *string                  `json:"pub_date"`
	Notes     *string                  `json:"notes"`
	Signature *string                  `json:"signature"`
	URL       *string                  `json:"url"`
	Platforms map[string]platformEntry `json:"platforms"`
}

// ParseRelease validates a release document and extracts the entry for
// target. Two schemas are accepted: a flat document announcing a single
// platform at the root, and a static document carrying a platforms map
// keyed by target. Version falls back to the release name, so a tag like
// "v1.0.0" works as-is.
func ParseRelease(data []byte, target string) (Release, error) {
	var doc releaseDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return Release{}, errs.Wrap("updater.parse_release", errs.CodeRemoteMetadata, err)
	}

	var version string
	switch {
	case doc.Version != nil:
		version = strings.TrimPrefix(*doc.Version, "v")
	case doc.Name != nil:
		version = strings.TrimPrefix(*doc.Name, "v")
	default:
		return Release{}, errs.New("updater.parse_release", errs.CodeRemoteMetadata,
			"release missing `name` and `version`")
	}

	release := Release{Version: version, Date: "N/A"}
	if doc.PubDate != nil {
		release.Date = *doc.PubDate
	}
	if doc.Notes != nil {
		release.Body = *doc.Notes
	}
	if doc.Signature != nil {
		release.Signature = *doc.Signature
	}

	if doc.Platforms != nil {
		entry, ok := doc.Platforms[target]
		if !ok {
			return Release{}, errs.New("updater.parse_release", errs.CodeRemoteMetadata,
				"platform "+target+" not available")
		}
		if entry.URL == nil {
			return Release{}, errs.New("updater.parse_release", errs.CodeRemoteMetadata,
				"release missing `url`")
		}
		release.DownloadURL = *entry.URL
		// a per-platform signature replaces the root one, even if empty
		release.Signature = ""
		if entry.Signature != nil {
			release.Signature = *entry.Signature
		}
		return release, nil
	}

	if doc.URL == nil {
		return Release{}, errs.New("updater.parse_release", errs.CodeRemoteMetadata,
			"release missing `url`")
	}
	release.DownloadURL = *doc.URL
	return release, nil
}
