// Package version holds build information and checks GitHub for newer releases.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Name is the program name recorded in "created by".
const Name = "trtool"

// Version information - set via ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// CreatedBy is the "created by" value for new torrents.
func CreatedBy() string {
	return Name + " " + Version
}

// RequestTimeout is the timeout for the GitHub API request
const RequestTimeout = 10 * time.Second

// GitHubAPIURL is the endpoint for fetching the latest release
var GitHubAPIURL = "https://api.github.com/repos/surge-downloader/trtool/releases/latest"

// UpdateInfo contains information about an available update
type UpdateInfo struct {
	CurrentVersion  string // The running version
	LatestVersion   string // The latest version available on GitHub
	ReleaseURL      string // URL to the GitHub release page
	UpdateAvailable bool   // Whether an update is available
}

// GitHubRelease represents the relevant fields from the GitHub API response
type GitHubRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// CheckForUpdate asks GitHub whether a newer release exists.
// Returns nil, nil for development builds.
func CheckForUpdate(ctx context.Context, currentVersion string) (*UpdateInfo, error) {
	if currentVersion == "dev" || currentVersion == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, GitHubAPIURL, nil)
	if err != nil {
		return nil, err
	}
	// Set User-Agent as required by GitHub API
	req.Header.Set("User-Agent", Name+"-update-checker")
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("update check failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("update check failed: %s", resp.Status)
	}

	var release GitHubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("update check failed: %w", err)
	}

	return &UpdateInfo{
		CurrentVersion:  currentVersion,
		LatestVersion:   release.TagName,
		ReleaseURL:      release.HTMLURL,
		UpdateAvailable: isNewerVersion(normalizeVersion(release.TagName), normalizeVersion(currentVersion)),
	}, nil
}

// normalizeVersion removes the 'v' prefix and trims whitespace
func normalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	version = strings.TrimPrefix(version, "v")
	return version
}

// isNewerVersion compares two semver strings and returns true if latest > current
func isNewerVersion(latest, current string) bool {
	latestParts := parseVersion(latest)
	currentParts := parseVersion(current)

	for i := 0; i < 3; i++ {
		if latestParts[i] > currentParts[i] {
			return true
		}
		if latestParts[i] < currentParts[i] {
			return false
		}
	}
	return false
}

// parseVersion parses a semver string into [major, minor, patch]
func parseVersion(version string) [3]int {
	var parts [3]int

	segments := strings.Split(version, ".")
	for i := 0; i < len(segments) && i < 3; i++ {
		// Ignore any suffix like "-beta"
		numStr := segments[i]
		if idx := strings.IndexAny(numStr, "-+"); idx != -1 {
			numStr = numStr[:idx]
		}
		_, _ = fmt.Sscanf(numStr, "%d", &parts[i])
	}

	return parts
}
