package content

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/folio/datefx"
)

// ErrSyntax marks a page line or front matter that cannot be parsed
var ErrSyntax = errors.New("page syntax")

// BlockKind classifies one body line
type BlockKind uint8

const (
	Blank BlockKind = iota
	Heading
	Subheading
	Paragraph
	Feature // opt-in paragraph that takes part in the cursor effect
	Link
	Date
)

// Block is one line of page body
type Block struct {
	Kind   BlockKind
	Text   string
	Target string // Link only

	Start, End time.Time // Date only
}

// Animated reports whether the block's glyphs react to the pointer
func (b Block) Animated() bool {
	switch b.Kind {
	case Heading, Subheading, Feature, Link:
		return true
	}
	return false
}

// Optin reports whether the block asked for the effect regardless of its length
func (b Block) Optin() bool {
	return b.Kind == Feature
}

// Page is a parsed site page
type Page struct {
	Slug    string
	Title   string
	Menu    string
	Order   int
	Updated time.Time
	Blocks  []Block
}

// Dates returns the date items in page order
func (p *Page) Dates() []datefx.Item {
	var out []datefx.Item
	for _, b := range p.Blocks {
		if b.Kind == Date {
			out = append(out, datefx.Item{Label: b.Text, Start: b.Start, End: b.End})
		}
	}
	return out
}

// Links returns link blocks in page order
func (p *Page) Links() []Block {
	var out []Block
	for _, b := range p.Blocks {
		if b.Kind == Link {
			out = append(out, b)
		}
	}
	return out
}

type frontMatter struct {
	Title   string `yaml:"title"`
	Menu    string `yaml:"menu"`
	Order   int    `yaml:"order"`
	Updated string `yaml:"updated"`
}

var (
	linkLine = regexp.MustCompile(`^\[(.+?)\]\((\S+?)\)$`)
	dateLine = regexp.MustCompile(`^@\s*(\S+)\s*-\s*(\S+)\s*(.*)$`)
)

const frontMatterFence = "---"

// Parse reads a page: optional YAML front matter between --- fences, then one block per line
func Parse(slug string, data []byte) (*Page, error) {
	p := &Page{Slug: slug}

	body := data
	if fm, rest, ok := splitFrontMatter(data); ok {
		var meta frontMatter
		if err := yaml.Unmarshal(fm, &meta); err != nil {
			return nil, fmt.Errorf("%w: %s front matter: %v", ErrSyntax, slug, err)
		}
		p.Title = meta.Title
		p.Menu = meta.Menu
		p.Order = meta.Order
		if meta.Updated != "" {
			t, err := datefx.Parse(meta.Updated)
			if err != nil {
				return nil, fmt.Errorf("%w: %s updated: %v", ErrSyntax, slug, err)
			}
			p.Updated = t
		}
		body = rest
	}

	sc := bufio.NewScanner(bytes.NewReader(body))
	n := 0
	for sc.Scan() {
		n++
		b, err := parseLine(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", ErrSyntax, slug, n, err)
		}
		p.Blocks = append(p.Blocks, b)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", slug, err)
	}

	// Trailing blank lines carry no layout
	for len(p.Blocks) > 0 && p.Blocks[len(p.Blocks)-1].Kind == Blank {
		p.Blocks = p.Blocks[:len(p.Blocks)-1]
	}

	if p.Title == "" {
		p.Title = firstHeading(p.Blocks, slug)
	}
	return p, nil
}

func splitFrontMatter(data []byte) (fm, rest []byte, ok bool) {
	text := string(data)
	if !strings.HasPrefix(text, frontMatterFence+"\n") {
		return nil, data, false
	}
	end := strings.Index(text[len(frontMatterFence)+1:], "\n"+frontMatterFence)
	if end < 0 {
		return nil, data, false
	}
	start := len(frontMatterFence) + 1
	fm = data[start : start+end]
	rest = data[start+end+len(frontMatterFence)+1:]
	// Drop the remainder of the closing fence line
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[i+1:]
	} else {
		rest = nil
	}
	return fm, rest, true
}

func parseLine(raw string) (Block, error) {
	line := strings.TrimSpace(raw)
	switch {
	case line == "":
		return Block{Kind: Blank}, nil
	case strings.HasPrefix(line, "## "):
		return Block{Kind: Subheading, Text: strings.TrimSpace(line[3:])}, nil
	case strings.HasPrefix(line, "# "):
		return Block{Kind: Heading, Text: strings.TrimSpace(line[2:])}, nil
	case strings.HasPrefix(line, "> "):
		return Block{Kind: Feature, Text: strings.TrimSpace(line[2:])}, nil
	case strings.HasPrefix(line, "@"):
		m := dateLine.FindStringSubmatch(line)
		if m == nil {
			return Block{}, fmt.Errorf("date item %q: want @ DD.MM.YYYY - DD.MM.YYYY label", line)
		}
		start, err := datefx.Parse(m[1])
		if err != nil {
			return Block{}, err
		}
		end, err := datefx.Parse(m[2])
		if err != nil {
			return Block{}, err
		}
		if end.Before(start) {
			return Block{}, fmt.Errorf("date item %q ends before it starts", line)
		}
		return Block{Kind: Date, Text: strings.TrimSpace(m[3]), Start: start, End: end}, nil
	}
	if m := linkLine.FindStringSubmatch(line); m != nil {
		return Block{Kind: Link, Text: m[1], Target: m[2]}, nil
	}
	return Block{Kind: Paragraph, Text: line}, nil
}

func firstHeading(blocks []Block, fallback string) string {
	for _, b := range blocks {
		if b.Kind == Heading {
			return b.Text
		}
	}
	return fallback
}
