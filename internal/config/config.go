package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"impractical.co/frame"
	"impractical.co/frame/internal/content"
)

const defaultAddr = ":8080"

var (
	// ErrInvalid is wrapped by every error Validate returns.
	ErrInvalid = errors.New("invalid configuration")
)

// Config is the site file: the chrome every page shares, the navigation
// menu, and the pages themselves.
type Config struct {
	Addr      string           `yaml:"addr"`
	Log       LogConfig        `yaml:"log"`
	Fragments []FragmentConfig `yaml:"fragments"`
	Nav       []NavConfig      `yaml:"nav"`
	Pages     []PageConfig     `yaml:"pages"`

	// dir is the directory relative file paths are resolved against.
	dir string
}

// LogConfig selects the level and format of the binary's log output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// FragmentConfig declares a Fragment either inline, with Content, or as a
// File relative to the config file.
type FragmentConfig struct {
	Name    string `yaml:"name"`
	Content string `yaml:"content"`
	File    string `yaml:"file"`
}

// NavConfig declares one navigation menu entry.
type NavConfig struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

// PageConfig declares a page served at Route. Nav is the ID of the menu
// entry to highlight; it may be left empty.
type PageConfig struct {
	Route  string `yaml:"route"`
	Nav    string `yaml:"nav"`
	Title  string `yaml:"title"`
	Body   string `yaml:"body"`
	File   string `yaml:"file"`
	Format string `yaml:"format"`
}

// Load reads the config file at path. Relative file references inside it
// resolve against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse decodes a config file's contents, applies environment overrides,
// and validates the result. dir is the directory file references resolve
// against.
func Parse(data []byte, dir string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.dir = dir

	// FRAMED_ADDR wins, then Cloud Run's PORT
	if addr := os.Getenv("FRAMED_ADDR"); addr != "" {
		cfg.Addr = addr
	} else if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the config for problems that would stop the site from
// starting.
func (c *Config) Validate() error {
	names := map[string]struct{}{}
	for pos, frag := range c.Fragments {
		if frag.Name == "" {
			return fmt.Errorf("%w: fragments[%d].name is required", ErrInvalid, pos)
		}
		if _, ok := names[frag.Name]; ok {
			return fmt.Errorf("%w: fragment %q is declared twice", ErrInvalid, frag.Name)
		}
		names[frag.Name] = struct{}{}
		if frag.Content != "" && frag.File != "" {
			return fmt.Errorf("%w: fragment %q sets both content and file", ErrInvalid, frag.Name)
		}
		if frag.File != "" && !fs.ValidPath(frag.File) {
			return fmt.Errorf("%w: fragment %q has invalid file path %q", ErrInvalid, frag.Name, frag.File)
		}
	}
	if _, ok := names[frame.HeadFragment]; !ok {
		return fmt.Errorf("%w: a %q fragment is required", ErrInvalid, frame.HeadFragment)
	}

	if err := frame.ValidateEntries(c.NavEntries()); err != nil {
		return fmt.Errorf("%w: nav: %w", ErrInvalid, err)
	}

	if len(c.Pages) < 1 {
		return fmt.Errorf("%w: at least one page is required", ErrInvalid)
	}
	routes := map[string]struct{}{}
	for pos, page := range c.Pages {
		if !strings.HasPrefix(page.Route, "/") {
			return fmt.Errorf("%w: pages[%d].route must start with /", ErrInvalid, pos)
		}
		// routes are literal paths, never chi patterns
		if strings.ContainsAny(page.Route, "{}*") {
			return fmt.Errorf("%w: page %q route must not contain {, } or *", ErrInvalid, page.Route)
		}
		if _, ok := routes[page.Route]; ok {
			return fmt.Errorf("%w: route %q is declared twice", ErrInvalid, page.Route)
		}
		routes[page.Route] = struct{}{}
		if page.Body != "" && page.File != "" {
			return fmt.Errorf("%w: page %q sets both body and file", ErrInvalid, page.Route)
		}
		if page.File != "" && !fs.ValidPath(page.File) {
			return fmt.Errorf("%w: page %q has invalid file path %q", ErrInvalid, page.Route, page.File)
		}
		switch strings.ToLower(page.Format) {
		case "", content.FormatHTML, content.FormatMarkdown:
		default:
			return fmt.Errorf("%w: page %q has unknown format %q", ErrInvalid, page.Route, page.Format)
		}
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format must be 'text' or 'json'", ErrInvalid)
	}
	return nil
}

// Dir returns the directory file references resolve against.
func (c *Config) Dir() string {
	return c.dir
}

// FS returns the filesystem fragment and page files are read from.
func (c *Config) FS() fs.FS {
	return os.DirFS(c.dir)
}

// NavEntries returns the navigation menu, in order.
func (c *Config) NavEntries() []frame.NavEntry {
	entries := make([]frame.NavEntry, 0, len(c.Nav))
	for _, nav := range c.Nav {
		entries = append(entries, frame.NavEntry{
			ID:    nav.ID,
			Label: nav.Label,
			Href:  nav.Href,
		})
	}
	return entries
}

// FragmentStore reads every declared Fragment from fsys, or from the
// declaration itself, into a FragmentStore.
func (c *Config) FragmentStore(fsys fs.FS) (*frame.FragmentStore, error) {
	fragments := make([]frame.Fragment, 0, len(c.Fragments))
	for _, frag := range c.Fragments {
		text := frag.Content
		if frag.File != "" {
			data, err := fs.ReadFile(fsys, frag.File)
			if err != nil {
				return nil, fmt.Errorf("error reading fragment %q: %w", frag.Name, err)
			}
			text = string(data)
		}
		fragments = append(fragments, frame.Fragment{
			Name:    frag.Name,
			Content: text,
		})
	}
	return frame.NewFragmentStore(fragments...)
}

// Site builds the frame.Site described by the config, reading fragment
// files from fsys.
func (c *Config) Site(fsys fs.FS) (*frame.Site, error) {
	fragments, err := c.FragmentStore(fsys)
	if err != nil {
		return nil, err
	}
	return frame.NewSite(fragments, c.NavEntries())
}

// Logger returns a *slog.Logger writing to w at the configured level and
// in the configured format.
func (l LogConfig) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(l.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(l.Format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Sources returns the pages to load, in declaration order.
func (c *Config) Sources() []content.Source {
	sources := make([]content.Source, 0, len(c.Pages))
	for _, page := range c.Pages {
		sources = append(sources, content.Source{
			Route:  page.Route,
			NavID:  page.Nav,
			Title:  page.Title,
			Body:   page.Body,
			File:   page.File,
			Format: page.Format,
		})
	}
	return sources
}
