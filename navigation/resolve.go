// Package navigation resolves links between site pages and keeps page history
package navigation

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/lixenwraith/folio/content"
)

// ErrExternal marks links the viewer does not follow: other schemes, anchors and downloads
var ErrExternal = errors.New("external link")

var (
	pageExts     = []string{".html", ".htm", content.PageExt}
	downloadExts = map[string]bool{
		".pdf": true, ".zip": true, ".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	}
)

// Resolve maps href, relative to the current slug, to a site slug
func Resolve(current, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", fmt.Errorf("%w: anchor %q", ErrExternal, href)
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrExternal, href, err)
	}
	if u.Scheme != "" || u.Host != "" {
		return "", fmt.Errorf("%w: %s", ErrExternal, href)
	}

	p := u.Path
	if p == "" {
		// query-only or fragment-only links stay on the page
		return "", fmt.Errorf("%w: anchor %q", ErrExternal, href)
	}
	if downloadExts[strings.ToLower(path.Ext(p))] {
		return "", fmt.Errorf("%w: download %s", ErrExternal, href)
	}

	dir := true
	if !strings.HasSuffix(p, "/") {
		dir = false
	}
	if !strings.HasPrefix(p, "/") {
		p = path.Join(path.Dir("/"+current), p)
	}
	p = path.Clean(p)

	if dir || p == "/" {
		p = path.Join(p, content.IndexSlug)
	}
	for _, ext := range pageExts {
		if strings.HasSuffix(p, ext) {
			p = strings.TrimSuffix(p, ext)
			break
		}
	}

	slug := strings.TrimPrefix(p, "/")
	if strings.HasSuffix(slug, "/"+content.IndexSlug) {
		slug = strings.TrimSuffix(slug, "/"+content.IndexSlug)
	}
	if slug == "" {
		slug = content.IndexSlug
	}
	return slug, nil
}
