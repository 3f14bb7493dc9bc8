package segger

import (
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"

	"jlink-update/pkg/sysinfo"
	"jlink-update/pkg/version"
)

// Release is one entry of the page's version selector.
type Release struct {
	Index string // option value, "0" for the newest
	Name  string // option text, e.g. "V7.94a"
}

// Code decodes the release name.
func (r Release) Code() (version.Code, error) {
	return version.Decode(r.Name)
}

// PackageLink is one download offered for a release.
type PackageLink struct {
	OS   string // heading the link is listed under, e.g. "Linux" or "macOS"
	Name string // link text, e.g. "64-bit DEB Installer"
	Path string // link target as written in the page
}

// FileName returns the last element of the link target.
func (l PackageLink) FileName() string {
	p := l.Path
	if u, err := url.Parse(l.Path); err == nil {
		p = u.Path
	}
	return path.Base(p)
}

// Page is a parsed download page.
type Page struct {
	// Releases in page order, newest first.
	Releases []Release

	packages map[string][]PackageLink
}

// Packages returns the downloads listed for the release with the given
// index, in page order. It is empty when the page has no list for it.
func (p *Page) Packages(index string) []PackageLink {
	return p.packages[index]
}

// ParsePage reads the version selector and the per-release download lists.
// Releases come from the first <select class="version">; the downloads of
// release i are in <div class="links vi">, grouped under os-name headings.
func ParsePage(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse download page: %w", err)
	}

	sel := findElement(doc, func(n *html.Node) bool {
		return n.Data == "select" && hasClass(n, "version")
	})
	if sel == nil {
		return nil, ErrNoVersions
	}

	page := &Page{packages: make(map[string][]PackageLink)}
	walk(sel, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "option" {
			return
		}
		name := strings.TrimSpace(textContent(n))
		if name == "" {
			return
		}
		page.Releases = append(page.Releases, Release{Index: attr(n, "value"), Name: name})
	})
	if len(page.Releases) == 0 {
		return nil, ErrNoVersions
	}

	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "div" || !hasClass(n, "links") {
			return
		}
		if index, ok := releaseIndex(n); ok {
			page.packages[index] = append(page.packages[index], parseLinks(n)...)
		}
	})

	return page, nil
}

// releaseIndex extracts i from a "vi" class.
func releaseIndex(n *html.Node) (string, bool) {
	for _, c := range strings.Fields(attr(n, "class")) {
		if len(c) > 1 && c[0] == 'v' && strings.Trim(c[1:], "0123456789") == "" {
			return c[1:], true
		}
	}
	return "", false
}

// parseLinks collects the linkbox entries of one release, each tagged with
// the os-name heading that precedes it.
func parseLinks(block *html.Node) []PackageLink {
	var (
		links   []PackageLink
		heading string
	)
	walk(block, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch {
		case hasClass(n, "os-name"):
			heading = strings.TrimSpace(textContent(n))
		case hasClass(n, "linkbox-link") && heading != "":
			// The first anchor wraps the icon, the last one carries the label.
			var target *html.Node
			walk(n, func(a *html.Node) {
				if a.Type == html.ElementNode && a.Data == "a" && attr(a, "href") != "" {
					target = a
				}
			})
			if target == nil {
				return
			}
			name := strings.TrimSpace(textContent(target))
			if name == "" {
				return
			}
			links = append(links, PackageLink{OS: heading, Name: name, Path: attr(target, "href")})
		}
	})
	return links
}

// FindPackage returns the listed download whose file name matches the
// package built for info. When none matches, the error names the files
// offered for the same system.
func FindPackage(links []PackageLink, info sysinfo.SystemInfo, releaseName string) (PackageLink, error) {
	want := PackageFileName(info, releaseName)

	var offered []string
	prefix := "JLink_" + string(info.Family) + "_"
	for _, l := range links {
		name := l.FileName()
		if strings.EqualFold(name, want) {
			return l, nil
		}
		if strings.HasPrefix(name, prefix) {
			offered = append(offered, name)
		}
	}

	if len(offered) == 0 {
		return PackageLink{}, fmt.Errorf("%w: %s", ErrNoPackageForSystem, want)
	}
	return PackageLink{}, fmt.Errorf("%w: %s (offered: %s)", ErrNoPackageForSystem, want, strings.Join(offered, ", "))
}

// Latest returns the newest release.
func Latest(releases []Release) (Release, error) {
	if len(releases) == 0 {
		return Release{}, ErrNoVersions
	}
	return releases[0], nil
}

// FindRelease looks up a release by name, ignoring case, or by version
// code so that "v7.94a" and "V7.94a" both match.
func FindRelease(releases []Release, query string) (Release, error) {
	query = strings.TrimSpace(query)
	want, decodeErr := version.Decode(query)

	for _, r := range releases {
		if strings.EqualFold(r.Name, query) {
			return r, nil
		}
		if decodeErr != nil {
			continue
		}
		if code, err := r.Code(); err == nil && code == want {
			return r, nil
		}
	}
	return Release{}, fmt.Errorf("%w: %s", ErrVersionNotFound, query)
}

// PackageFileName returns the vendor file name of the package for the
// given platform, e.g. "JLink_Linux_V794a_x86_64.deb".
func PackageFileName(info sysinfo.SystemInfo, releaseName string) string {
	return fmt.Sprintf("JLink_%s_%s_%s.%s",
		info.Family,
		strings.ReplaceAll(strings.TrimSpace(releaseName), ".", ""),
		info.Architecture,
		info.PackageType,
	)
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
