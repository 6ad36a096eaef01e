package provision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.bug.st/downloader/v2"

	"github.com/videodl/videodl/internal/event"
)

// GitHub release endpoint for yt-dlp
const DefaultReleaseURL = "https://api.github.com/repos/yt-dlp/yt-dlp/releases/latest"

// Asset names published per platform
const (
	AssetNamePosix   = "yt-dlp"
	AssetNameWindows = "yt-dlp.exe"
)

// Timeouts and polling
const (
	releaseLookupTimeout = 30 * time.Second
	progressPollInterval = 500 * time.Millisecond
)

// Executable permission bits applied on POSIX systems
const executableMode = 0o755

// ErrAssetNotFound means the latest release carries no asset for this OS
var ErrAssetNotFound = errors.New("no yt-dlp asset found for this platform")

type releaseAsset struct {
	Name        string `json:"name"`
	DownloadURL string `json:"browser_download_url"`
}

type release struct {
	TagName string         `json:"tag_name"`
	Assets  []releaseAsset `json:"assets"`
}

// Provisioner fetches and stages the yt-dlp executable
type Provisioner struct {
	releaseURL string
	client     *http.Client
	scratchDir string
	bus        *event.Bus
	log        zerolog.Logger

	mu   sync.RWMutex
	path string
}

// NewProvisioner creates a provisioner that stages the executable into
// scratchDir and reports status through bus.
func NewProvisioner(scratchDir string, bus *event.Bus, log zerolog.Logger) *Provisioner {
	return &Provisioner{
		releaseURL: DefaultReleaseURL,
		client:     &http.Client{Timeout: releaseLookupTimeout},
		scratchDir: scratchDir,
		bus:        bus,
		log:        log,
	}
}

// SetReleaseURL overrides the release lookup endpoint, used by tests
func (p *Provisioner) SetReleaseURL(url string) {
	p.releaseURL = url
}

// AssetName returns the release asset name for the current OS
func AssetName() string {
	if runtime.GOOS == "windows" {
		return AssetNameWindows
	}
	return AssetNamePosix
}

// FetchLatest downloads the newest yt-dlp build for the current platform
// into the scratch directory and returns its path. On POSIX the file is
// marked executable. Failures leave the provisioner unavailable and are
// also reported as a system-level error event.
func (p *Provisioner) FetchLatest(ctx context.Context) (string, error) {
	p.bus.ProvisionerStatus(event.ProvisionStarting)
	p.bus.JobLog(event.SystemSource, "Downloading the latest version of yt-dlp...")

	path, err := p.fetch(ctx)
	if err != nil {
		p.log.Error().Err(err).Msg("yt-dlp provisioning failed")
		p.bus.JobLog(event.SystemSource, fmt.Sprintf("Error initializing yt-dlp: %v", err))
		p.bus.JobError(event.SystemSource, fmt.Sprintf("Failed to initialize yt-dlp: %v", err))
		p.bus.ProvisionerStatus(event.ProvisionError)
		return "", err
	}

	p.mu.Lock()
	p.path = path
	p.mu.Unlock()

	p.bus.JobLog(event.SystemSource, fmt.Sprintf("yt-dlp downloaded to %s", path))
	p.bus.ProvisionerStatus(event.ProvisionReady)
	return path, nil
}

func (p *Provisioner) fetch(ctx context.Context) (string, error) {
	rel, err := p.lookupRelease(ctx)
	if err != nil {
		return "", err
	}

	assetName := AssetName()
	var downloadURL string
	for _, asset := range rel.Assets {
		if asset.Name == assetName {
			downloadURL = asset.DownloadURL
			break
		}
	}
	if downloadURL == "" {
		return "", ErrAssetNotFound
	}

	p.bus.ProvisionerStatus(event.ProvisionDownloading)
	p.bus.JobLog(event.SystemSource, fmt.Sprintf("Downloading from: %s", downloadURL))

	dest := filepath.Join(p.scratchDir, assetName)
	d, err := downloader.DownloadWithConfigAndContext(ctx, dest, downloadURL, downloader.GetDefaultConfig())
	if err != nil {
		return "", fmt.Errorf("starting yt-dlp download: %w", err)
	}
	err = d.RunAndPoll(func(current int64) {
		p.log.Debug().Int64("bytes", current).Int64("size", d.Size()).Msg("yt-dlp download progress")
	}, progressPollInterval)
	if err != nil {
		return "", fmt.Errorf("downloading yt-dlp: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(dest, executableMode); err != nil {
			return "", fmt.Errorf("marking yt-dlp executable: %w", err)
		}
	}

	p.log.Info().Str("version", rel.TagName).Str("path", dest).Msg("yt-dlp staged")
	return dest, nil
}

func (p *Provisioner) lookupRelease(ctx context.Context) (*release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.releaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building release request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching latest release info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release lookup returned status %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("decoding release info: %w", err)
	}
	return &rel, nil
}

// Path returns the staged executable path, or "" when unavailable
func (p *Provisioner) Path() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.path
}

// IsAvailable reports whether the executable is staged and still on disk
func (p *Provisioner) IsAvailable() bool {
	path := p.Path()
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
