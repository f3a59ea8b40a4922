package frame

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNoFragmentStore is returned when NewSite is called without a
// FragmentStore.
var ErrNoFragmentStore = errors.New("need a fragment store")

// Site is the singleton a server uses to render its pages. It holds the
// Fragments and navigation entries every page shares. A Site must be
// instantiated through NewSite, its empty value is not usable.
//
// A Site is never modified after NewSite returns, and can safely be used by
// multiple goroutines.
type Site struct {
	fragments *FragmentStore

	// entries is the navigation menu, in the order it's rendered.
	entries []NavEntry
}

// NewSite returns a Site that renders pages using the passed Fragments and
// navigation entries. The entries are validated with ValidateEntries and
// copied, so later changes to the passed slice don't affect the Site.
//
// NewSite doesn't require the head Fragment to be registered; rendering
// will fail with a *NotFoundError instead.
func NewSite(fragments *FragmentStore, entries []NavEntry) (*Site, error) {
	if fragments == nil {
		return nil, ErrNoFragmentStore
	}
	if err := ValidateEntries(entries); err != nil {
		return nil, fmt.Errorf("error building site: %w", err)
	}
	return &Site{
		fragments: fragments,
		entries:   slices.Clone(entries),
	}, nil
}

// Fragments returns the FragmentStore the Site renders with.
func (s *Site) Fragments() *FragmentStore {
	return s.fragments
}

// Entries returns a copy of the Site's navigation entries, in menu order.
func (s *Site) Entries() []NavEntry {
	return slices.Clone(s.entries)
}

// Menu returns the Site's navigation menu with the entry matching
// currentPageID marked active.
func (s *Site) Menu(currentPageID string) []MenuItem {
	return BuildMenu(s.entries, currentPageID)
}
