// Package docs serves the documentation pages shown next to the dashboard and
// keeps their heading outlines current while the files change.
package docs

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/folio-dash/folio-backend/internal/docs/toc"
)

// Page is one rendered documentation page with unique heading ids applied.
type Page struct {
	Slug     string        `json:"slug"`
	Title    string        `json:"title"`
	Order    int           `json:"order"`
	HTML     string        `json:"html"`
	Headings []toc.Heading `json:"headings"`
}

// PageInfo is the index entry for a page.
type PageInfo struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Order int    `json:"order"`
}

// Library holds every page under a directory. Reload rebuilds it from disk;
// readers never see a half-built set.
type Library struct {
	dir    string
	md     goldmark.Markdown
	logger *slog.Logger

	mu    sync.RWMutex
	pages map[string]*Page
}

func NewLibrary(dir string, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{
		dir:    dir,
		logger: logger,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
		pages: make(map[string]*Page),
	}
}

func (l *Library) Dir() string {
	return l.dir
}

// Reload re-reads and re-extracts every page. A file that fails to load is
// logged and left out; the rest still replace the previous set.
func (l *Library) Reload() error {
	pages := make(map[string]*Page)

	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != l.dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isPageFile(path) {
			return nil
		}

		page, err := l.load(path)
		if err != nil {
			l.logger.Warn("skipping docs page", "path", path, "error", err)
			return nil
		}
		pages[page.Slug] = page
		return nil
	})
	if err != nil {
		return fmt.Errorf("reload docs: %w", err)
	}

	l.mu.Lock()
	l.pages = pages
	l.mu.Unlock()
	return nil
}

func (l *Library) Page(slug string) (Page, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.pages[slug]
	if !ok {
		return Page{}, false
	}
	return *p, true
}

// Pages lists the index ordered by frontmatter order, then title.
func (l *Library) Pages() []PageInfo {
	l.mu.RLock()
	out := make([]PageInfo, 0, len(l.pages))
	for _, p := range l.pages {
		out = append(out, PageInfo{Slug: p.Slug, Title: p.Title, Order: p.Order})
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Title < out[j].Title
	})
	return out
}

func (l *Library) load(path string) (*Page, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fm frontmatter
	body := raw
	if isMarkdown(path) {
		var md string
		fm, md, err = splitFrontmatter(string(raw))
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := l.md.Convert([]byte(md), &buf); err != nil {
			return nil, fmt.Errorf("render markdown: %w", err)
		}
		body = buf.Bytes()
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	headings := toc.Extract(doc)

	rendered, err := renderBody(doc)
	if err != nil {
		return nil, err
	}

	slug := pageSlug(l.dir, path)
	title := fm.Title
	if title == "" {
		title = firstTitle(headings, slug)
	}

	return &Page{
		Slug:     slug,
		Title:    title,
		Order:    fm.Order,
		HTML:     rendered,
		Headings: headings,
	}, nil
}

// renderBody serializes the children of <body>, dropping the wrapper the
// parser adds around fragments.
func renderBody(doc *html.Node) (string, error) {
	body := findBody(doc)
	if body == nil {
		return "", nil
	}
	var b strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
	}
	return b.String(), nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func firstTitle(headings []toc.Heading, fallback string) string {
	for _, h := range headings {
		if h.Level == 1 {
			return strings.TrimSpace(h.Text)
		}
	}
	if len(headings) > 0 {
		return strings.TrimSpace(headings[0].Text)
	}
	return fallback
}

// pageSlug flattens the path relative to dir into a single URL segment.
func pageSlug(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return toc.Slugify(strings.ReplaceAll(filepath.ToSlash(rel), "/", " "))
}

func isPageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".md", ".markdown":
		return true
	}
	return false
}

func isMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}
