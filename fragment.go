package frame

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
)

const (
	// HeadFragment is the name of the Fragment rendered inside every
	// page's <head> element. A Site can't render anything without it.
	HeadFragment = "head"

	// StylesheetFragment is the name of an optional Fragment holding CSS
	// shared by every page. If it's registered, it's rendered in a
	// <style> element after the head Fragment.
	StylesheetFragment = "stylesheet"
)

var (
	// ErrNotFound is returned when a Fragment is requested by a name that
	// was never registered. Errors returned from FragmentStore.Get will
	// match it using errors.Is.
	ErrNotFound = errors.New("fragment not found")

	// ErrEmptyFragmentName is returned when a Fragment without a name is
	// registered.
	ErrEmptyFragmentName = errors.New("fragment name must not be empty")

	// ErrDuplicateFragment is returned when two Fragments are registered
	// under the same name.
	ErrDuplicateFragment = errors.New("duplicate fragment name")

	// ErrFragmentPatternMatchesNoFiles is returned when a pattern passed
	// to LoadFragments doesn't match any files.
	ErrFragmentPatternMatchesNoFiles = errors.New("pattern matches no files")
)

// NotFoundError is returned when a FragmentStore is asked for a Fragment it
// doesn't hold.
type NotFoundError struct {
	// Name is the Fragment name that was requested.
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrNotFound, e.Name)
}

// Is reports whether target is ErrNotFound.
func (*NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Fragment is a named block of markup shared across pages.
type Fragment struct {
	Name    string
	Content string
}

// FragmentStore holds the Fragments a Site renders with. A FragmentStore must
// be instantiated through NewFragmentStore or LoadFragments, and its contents
// never change afterwards. It can safely be used by multiple goroutines.
type FragmentStore struct {
	fragments map[string]string
}

// NewFragmentStore returns a FragmentStore holding the passed Fragments.
func NewFragmentStore(fragments ...Fragment) (*FragmentStore, error) {
	store := &FragmentStore{
		fragments: make(map[string]string, len(fragments)),
	}
	for _, frag := range fragments {
		if frag.Name == "" {
			return nil, ErrEmptyFragmentName
		}
		if _, ok := store.fragments[frag.Name]; ok {
			return nil, fmt.Errorf("error registering %q: %w", frag.Name, ErrDuplicateFragment)
		}
		store.fragments[frag.Name] = frag.Content
	}
	return store, nil
}

// LoadFragments reads every file in fsys matching patterns into a new
// FragmentStore. Each file is registered under its base name with the
// extension stripped, so "chrome/head.html" becomes the "head" Fragment.
func LoadFragments(fsys fs.FS, patterns ...string) (*FragmentStore, error) {
	var fragments []Fragment
	for _, pattern := range patterns {
		files, err := fs.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("error listing files for %q: %w", pattern, err)
		}
		if len(files) < 1 {
			return nil, fmt.Errorf("error loading %q: %w", pattern, ErrFragmentPatternMatchesNoFiles)
		}
		for _, file := range files {
			contents, err := fs.ReadFile(fsys, file)
			if err != nil {
				return nil, fmt.Errorf("error reading %q: %w", file, err)
			}
			base := path.Base(file)
			fragments = append(fragments, Fragment{
				Name:    strings.TrimSuffix(base, path.Ext(base)),
				Content: string(contents),
			})
		}
	}
	return NewFragmentStore(fragments...)
}

// Get returns the contents of the Fragment registered under name. If there
// is no such Fragment, a *NotFoundError is returned.
func (s *FragmentStore) Get(name string) (string, error) {
	content, ok := s.fragments[name]
	if !ok {
		return "", &NotFoundError{Name: name}
	}
	return content, nil
}

// Names returns the names of all registered Fragments, sorted.
func (s *FragmentStore) Names() []string {
	names := make([]string, 0, len(s.fragments))
	for name := range s.fragments {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
