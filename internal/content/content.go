// Package content loads page bodies for a site. Markdown bodies are rendered
// to HTML and sanitized; HTML bodies are trusted as written, since they come
// from the site's own source tree.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"impractical.co/frame"
)

const (
	// FormatHTML bodies are used verbatim.
	FormatHTML = "html"
	// FormatMarkdown bodies are converted to HTML and sanitized.
	FormatMarkdown = "markdown"
)

var (
	// ErrUnknownFormat is returned when a Source names a format other
	// than FormatHTML or FormatMarkdown.
	ErrUnknownFormat = errors.New("unknown content format")
)

// Source describes where a page's body comes from. Exactly one of Body and
// File is normally set; if neither is, the page has an empty body.
type Source struct {
	Route  string
	NavID  string
	Title  string
	Body   string
	File   string
	Format string
}

// Page is a page ready to be rendered: the route it's served at and the
// frame.PageRequest for it.
type Page struct {
	Route   string
	Request frame.PageRequest
}

// Loader turns Sources into Pages. A Loader must be instantiated through
// NewLoader. It can safely be used by multiple goroutines.
type Loader struct {
	fsys     fs.FS
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

// NewLoader returns a Loader that reads page files from fsys.
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{
		fsys: fsys,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			// raw HTML survives goldmark and is cleaned up by the policy
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		policy: newPolicy(),
	}
}

func newPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("name").OnElements("a")
	policy.AllowAttrs("type").OnElements("ul", "ol")
	return policy
}

// Load reads and, if necessary, converts the body for src.
func (l *Loader) Load(src Source) (Page, error) {
	body := src.Body
	if src.File != "" {
		data, err := fs.ReadFile(l.fsys, src.File)
		if err != nil {
			return Page{}, fmt.Errorf("error reading %q for %q: %w", src.File, src.Route, err)
		}
		body = string(data)
	}

	var rendered template.HTML
	switch format := detectFormat(src); format {
	case FormatHTML:
		rendered = template.HTML(body) // #nosec G203
	case FormatMarkdown:
		var err error
		rendered, err = l.renderMarkdown(body)
		if err != nil {
			return Page{}, fmt.Errorf("error rendering markdown for %q: %w", src.Route, err)
		}
	default:
		return Page{}, fmt.Errorf("error loading %q: %w: %q", src.Route, ErrUnknownFormat, format)
	}

	return Page{
		Route: src.Route,
		Request: frame.PageRequest{
			CurrentPageID: src.NavID,
			Title:         src.Title,
			Body:          rendered,
		},
	}, nil
}

// LoadAll loads every Source, stopping at the first error.
func (l *Loader) LoadAll(sources []Source) ([]Page, error) {
	pages := make([]Page, 0, len(sources))
	for _, src := range sources {
		page, err := l.Load(src)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func (l *Loader) renderMarkdown(body string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := l.markdown.Convert([]byte(body), &buf); err != nil {
		return "", err
	}
	return template.HTML(l.policy.SanitizeBytes(buf.Bytes())), nil // #nosec G203
}

// detectFormat uses the declared format, falling back to the file
// extension. Inline bodies default to HTML.
func detectFormat(src Source) string {
	if src.Format != "" {
		return strings.ToLower(src.Format)
	}
	switch strings.ToLower(path.Ext(src.File)) {
	case ".md", ".markdown":
		return FormatMarkdown
	}
	return FormatHTML
}
