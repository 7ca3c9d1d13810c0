package shimcache

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const (
	githubAPIBase = "https://api.github.com"
	userAgent     = "dxvk-studio"

	// DefaultCatalogTTL is how long a fetched catalog is reused.
	DefaultCatalogTTL = time.Hour
)

// Release represents a GitHub release.
type Release struct {
	TagName    string    `json:"tag_name"`
	Name       string    `json:"name"`
	Draft      bool      `json:"draft"`
	Prerelease bool      `json:"prerelease"`
	Assets     []Asset   `json:"assets"`
	Published  time.Time `json:"published_at"`
	HTMLURL    string    `json:"html_url"`
}

// Asset represents a downloadable file attached to a release.
type Asset struct {
	Name        string `json:"name"`
	DownloadURL string `json:"browser_download_url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// RemoteRelease is a release reduced to what a download needs: its tag and
// the archive asset chosen for it.
type RemoteRelease struct {
	Tag         string    `json:"tag"`
	DownloadURL string    `json:"url"`
	AssetName   string    `json:"asset"`
	Size        int64     `json:"size,omitempty"`
	ChecksumURL string    `json:"checksum_url,omitempty"`
	Published   time.Time `json:"published_at,omitempty"`
}

// CachedPackage is an extracted package found under the cache root.
type CachedPackage struct {
	Variant             Variant  `json:"variant"`
	Version             string   `json:"version"`
	Path                string   `json:"path"`
	ArchitectureFolders []string `json:"architecture_folders"`
}

// ProgressFunc receives download progress as an integer percentage. Calls
// are non-decreasing and only made when the payload size is known. It runs
// on the downloading goroutine and must return promptly.
type ProgressFunc func(percent int)

// Manager owns one cache root. It holds no package state in memory; every
// query lists the root again.
type Manager struct {
	root       string
	fs         afero.Fs
	httpClient *http.Client
	apiBase    string
	mirror     string
	token      string
	catalogTTL time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithFs sets the filesystem the cache lives on (defaults to the OS).
func WithFs(fs afero.Fs) Option {
	return func(m *Manager) {
		m.fs = fs
	}
}

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) {
		m.httpClient = c
	}
}

// WithAPIBase points the release catalog at another API host.
func WithAPIBase(base string) Option {
	return func(m *Manager) {
		m.apiBase = base
	}
}

// WithMirror sets a mirror URL for downloading release assets.
func WithMirror(mirror string) Option {
	return func(m *Manager) {
		m.mirror = mirror
	}
}

// WithToken sets a GitHub token for higher API rate limits.
func WithToken(token string) Option {
	return func(m *Manager) {
		m.token = token
	}
}

// WithCatalogTTL sets how long an on-disk catalog stays fresh. Zero
// disables the catalog cache.
func WithCatalogTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.catalogTTL = ttl
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// New creates a Manager rooted at root.
func New(root string, opts ...Option) *Manager {
	m := &Manager{
		root:       root,
		fs:         afero.NewOsFs(),
		httpClient: http.DefaultClient,
		apiBase:    githubAPIBase,
		catalogTTL: DefaultCatalogTTL,
		logger:     zerolog.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Root returns the cache root directory.
func (m *Manager) Root() string {
	return m.root
}
