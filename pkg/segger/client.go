// Package segger talks to the SEGGER download page: it lists the published
// J-Link versions and downloads package files.
package segger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultURL is the J-Link download page.
const DefaultURL = "https://www.segger.com/downloads/jlink/"

var (
	// ErrNoVersions is returned when the page lists no versions.
	ErrNoVersions = errors.New("could not find version selector on download page")

	// ErrVersionNotFound is returned when a requested version is not listed.
	ErrVersionNotFound = errors.New("version not found on download page")

	// ErrNoPackageForSystem is returned when a release does not offer the
	// package built for the platform.
	ErrNoPackageForSystem = errors.New("no package found for this system")

	// ErrPackageNotFound is returned when the server answers a download with
	// a web page instead of a package file.
	ErrPackageNotFound = errors.New("file not found on server")
)

// HTTPError reports an unexpected status code.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("got status code %d while requesting %s", e.StatusCode, e.URL)
}

// ClientOptions configures the vendor client.
type ClientOptions struct {
	// BaseURL is the download page; package files live below it. Default: DefaultURL.
	BaseURL string

	// Timeout bounds the page request. Downloads are bounded by the caller's
	// context only, since packages are large. Default: 30s.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string
}

// DefaultOptions returns the default client options.
func DefaultOptions() ClientOptions {
	return ClientOptions{
		BaseURL:   DefaultURL,
		Timeout:   30 * time.Second,
		UserAgent: "jlink-update",
	}
}

// Client fetches from the vendor site.
type Client struct {
	opts ClientOptions
	http *http.Client
}

// NewClient creates a client, filling zero options with defaults.
func NewClient(opts ClientOptions) *Client {
	def := DefaultOptions()
	if opts.BaseURL == "" {
		opts.BaseURL = def.BaseURL
	}
	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}
	if opts.Timeout == 0 {
		opts.Timeout = def.Timeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}

	return &Client{
		opts: opts,
		http: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   opts.Timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: opts.Timeout,
				ExpectContinueTimeout: 1 * time.Second,
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
			},
		},
	}
}

// BaseURL returns the download page URL.
func (c *Client) BaseURL() string {
	return c.opts.BaseURL
}

// FileURL returns the URL of a package file.
func (c *Client) FileURL(fileName string) string {
	return c.opts.BaseURL + url.PathEscape(fileName)
}

// FetchPage downloads and parses the download page.
func (c *Client) FetchPage(ctx context.Context) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch download page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{URL: c.opts.BaseURL, StatusCode: resp.StatusCode}
	}

	return ParsePage(resp.Body)
}

// Package is an open package download.
type Package struct {
	io.ReadCloser

	Name string
	// Size is the announced length in bytes, or -1 if unknown.
	Size int64
}

// OpenPackage posts the license acceptance for fileName and returns the
// response body. The caller must close it.
func (c *Client) OpenPackage(ctx context.Context, fileName string) (*Package, error) {
	fileURL := c.FileURL(fileName)
	form := url.Values{"accept_license_agreement": {"accepted"}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fileURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", fileName, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &HTTPError{URL: fileURL, StatusCode: resp.StatusCode}
	}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, fileName)
	}

	return &Package{ReadCloser: resp.Body, Name: fileName, Size: resp.ContentLength}, nil
}

// CopyPackage copies an open package into w, checking the announced size.
func CopyPackage(w io.Writer, pkg *Package) (int64, error) {
	n, err := io.Copy(w, pkg)
	if err != nil {
		return n, fmt.Errorf("failed to download %s: %w", pkg.Name, err)
	}
	if pkg.Size > 0 && n != pkg.Size {
		return n, fmt.Errorf("failed to download %s: got %d of %d bytes", pkg.Name, n, pkg.Size)
	}
	return n, nil
}
