// google.go downloads font files from the Google Fonts CSS API.
//
// Font specs use the format "google:FAMILY:WEIGHT" (e.g. "google:Inter:800").
// Downloaded fonts are converted to SFNT and cached so they aren't
// re-fetched on every run.

package fontsource

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"tools.zach/dev/iconmarker/internal/atomicfile"
)

// GoogleCSSURL is the Google Fonts CSS2 endpoint.
const GoogleCSSURL = "https://fonts.googleapis.com/css2"

// userAgent asks Google for WOFF2 sources, which toSFNT can convert.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"

const (
	maxCSSBytes  = 1 << 20
	maxFontBytes = 10 << 20
)

// fontURLRe extracts the first font file URL from the CSS response.
// Matches: src: url(https://fonts.gstatic.com/s/inter/v18/xxx.woff2)
var fontURLRe = regexp.MustCompile(`src:\s*url\(([^)]+)\)`)

// ParseGoogleFontSpec parses a "google:Family:Weight" spec into its parts.
// Returns family, weight, and whether the spec is valid.
func ParseGoogleFontSpec(spec string) (family, weight string, ok bool) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 || parts[0] != "google" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// GoogleClient fetches fonts from a Google Fonts compatible CSS endpoint.
type GoogleClient struct {
	// CSSURL is the css2 endpoint; the family and weight are appended as
	// the "family" query parameter.
	CSSURL string
	// HTTP performs requests with retries.
	HTTP *retryablehttp.Client
}

var (
	defaultClient     *GoogleClient
	defaultClientOnce sync.Once
)

// DefaultGoogleClient returns the shared client for the public endpoint,
// initializing it on first call.
func DefaultGoogleClient() *GoogleClient {
	defaultClientOnce.Do(func() {
		defaultClient = NewGoogleClient(GoogleCSSURL)
	})
	return defaultClient
}

// NewGoogleClient returns a client for cssURL with a short retry budget.
func NewGoogleClient(cssURL string) *GoogleClient {
	hc := retryablehttp.NewClient()
	hc.RetryMax = 2
	hc.HTTPClient.Timeout = 15 * time.Second
	hc.Logger = nil // suppress retryablehttp's default logging
	return &GoogleClient{CSSURL: cssURL, HTTP: hc}
}

// CacheFile returns the cache path for family and weight inside cacheDir.
func CacheFile(cacheDir, family, weight string) string {
	name := strings.ReplaceAll(family, " ", "_")
	return filepath.Join(cacheDir, fmt.Sprintf("%s-%s.ttf", name, weight))
}

// Fetch returns SFNT font bytes for spec, reading from cacheDir when a
// cached copy exists and writing one after a successful download. An empty
// cacheDir disables the cache.
func (c *GoogleClient) Fetch(ctx context.Context, spec, cacheDir string) ([]byte, error) {
	family, weight, ok := ParseGoogleFontSpec(spec)
	if !ok {
		return nil, fmt.Errorf("invalid google font spec %q: expected google:FAMILY:WEIGHT", spec)
	}

	var cacheFile string
	if cacheDir != "" {
		cacheFile = CacheFile(cacheDir, family, weight)
		if data, err := os.ReadFile(cacheFile); err == nil {
			slog.Debug("font cache hit", "path", cacheFile)
			return data, nil
		}
	}

	cssURL := fmt.Sprintf("%s?family=%s:wght@%s", c.CSSURL, url.QueryEscape(family), url.QueryEscape(weight))
	css, err := c.get(ctx, cssURL, maxCSSBytes)
	if err != nil {
		return nil, fmt.Errorf("fetch css for %s wght@%s: %w", family, weight, err)
	}

	m := fontURLRe.FindSubmatch(css)
	if m == nil {
		return nil, fmt.Errorf("no font URL in css response for %s wght@%s", family, weight)
	}
	fontURL := strings.Trim(string(m[1]), `'"`)

	data, err := c.get(ctx, fontURL, maxFontBytes)
	if err != nil {
		return nil, fmt.Errorf("download font file: %w", err)
	}
	data, err = toSFNT(fontURL, data)
	if err != nil {
		return nil, err
	}

	if cacheFile != "" {
		if err := writeCache(cacheFile, data); err != nil {
			slog.Warn("failed to cache font", "path", cacheFile, "error", err)
		}
	}
	slog.Info("downloaded font", "family", family, "weight", weight)
	return data, nil
}

// get issues a GET and returns at most limit bytes of a 200 response body.
func (c *GoogleClient) get(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", rawURL, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// writeCache stores converted font bytes at path, creating its directory.
func writeCache(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create font cache dir: %w", err)
	}
	return atomicfile.Write(path, data, 0o644)
}
