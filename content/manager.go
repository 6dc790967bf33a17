package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	// PageExt is the extension of page files in the site directory
	PageExt = ".page"
	// IndexSlug is the landing page
	IndexSlug = "index"
	// MaxLineLength bounds a single body line, in runes
	MaxLineLength = 400
)

var (
	// ErrPageNotFound is returned for slugs with no page file
	ErrPageNotFound = errors.New("page not found")
	// ErrInvalidPage is returned by Validate
	ErrInvalidPage = errors.New("invalid page")
)

// Manager discovers and loads page files from the site directory
type Manager struct {
	dir string
	log *zap.Logger

	mu    sync.RWMutex
	files map[string]string // slug -> path
}

// NewManager creates a manager rooted at dir
func NewManager(dir string, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		dir:   dir,
		log:   log,
		files: make(map[string]string),
	}
}

// Dir returns the site directory
func (m *Manager) Dir() string {
	return m.dir
}

// Discover scans the site directory for page files
// A missing directory is not an error: the site then only has the built-in index
func (m *Manager) Discover() error {
	files := make(map[string]string)

	entries, err := os.ReadDir(m.dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		m.log.Warn("site directory does not exist, serving built-in index", zap.String("dir", m.dir))
	case err != nil:
		return fmt.Errorf("read site directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if filepath.Ext(name) != PageExt {
			continue
		}
		slug := SlugOf(name)
		files[slug] = filepath.Join(m.dir, name)
	}

	m.mu.Lock()
	m.files = files
	m.mu.Unlock()

	m.log.Info("site discovered", zap.String("dir", m.dir), zap.Int("pages", len(files)))
	return nil
}

// SlugOf maps a page file name or path to its slug
func SlugOf(name string) string {
	return strings.TrimSuffix(filepath.Base(name), PageExt)
}

// Slugs returns discovered slugs sorted by name; always contains the index
func (m *Manager) Slugs() []string {
	m.mu.RLock()
	out := make([]string, 0, len(m.files)+1)
	hasIndex := false
	for slug := range m.files {
		out = append(out, slug)
		hasIndex = hasIndex || slug == IndexSlug
	}
	m.mu.RUnlock()

	if !hasIndex {
		out = append(out, IndexSlug)
	}
	sort.Strings(out)
	return out
}

// Load reads, parses and validates the page for slug
func (m *Manager) Load(slug string) (*Page, error) {
	m.mu.RLock()
	path, ok := m.files[slug]
	m.mu.RUnlock()

	if !ok {
		if slug == IndexSlug {
			return DefaultPage(), nil
		}
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, slug)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("read page %s: %w", slug, err)
	}

	page, err := Parse(slug, data)
	if err != nil {
		return nil, err
	}
	if page.Updated.IsZero() {
		if info, err := os.Stat(path); err == nil {
			page.Updated = info.ModTime()
		}
	}
	if err := Validate(page); err != nil {
		return nil, err
	}
	return page, nil
}

// Pages loads every page ordered by Order then slug
// Pages that fail to load are logged and left out
func (m *Manager) Pages() []*Page {
	var out []*Page
	for _, slug := range m.Slugs() {
		p, err := m.Load(slug)
		if err != nil {
			m.log.Warn("page skipped", zap.String("slug", slug), zap.Error(err))
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Slug < out[j].Slug
	})
	return out
}

// Validate rejects pages with no content or overlong lines
func Validate(p *Page) error {
	hasContent := false
	for i, b := range p.Blocks {
		if b.Kind != Blank {
			hasContent = true
		}
		if n := utf8.RuneCountInString(b.Text); n > MaxLineLength {
			return fmt.Errorf("%w: %s block %d is %d runes (max %d)", ErrInvalidPage, p.Slug, i+1, n, MaxLineLength)
		}
	}
	if !hasContent {
		return fmt.Errorf("%w: %s has no content", ErrInvalidPage, p.Slug)
	}
	return nil
}

// DefaultPage is served as the index when the site has none
func DefaultPage() *Page {
	return &Page{
		Slug:  IndexSlug,
		Title: "folio",
		Blocks: []Block{
			{Kind: Heading, Text: "folio"},
			{Kind: Blank},
			{Kind: Paragraph, Text: "No pages found. Add .page files to the site directory."},
			{Kind: Feature, Text: "Move the mouse over a heading to stir the letters."},
		},
	}
}
