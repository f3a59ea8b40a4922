package frame

import (
	"errors"
	"fmt"
)

var (
	// ErrNoNavEntries is returned when a Site is built without any
	// navigation entries.
	ErrNoNavEntries = errors.New("need at least one navigation entry")

	// ErrEmptyNavID is returned when a NavEntry has no ID.
	ErrEmptyNavID = errors.New("navigation entry ID must not be empty")

	// ErrDuplicateNavID is returned when two NavEntries share an ID.
	ErrDuplicateNavID = errors.New("duplicate navigation entry ID")
)

// NavEntry is one link in the site's navigation menu.
type NavEntry struct {
	// ID identifies the entry. Pages select the entry to highlight by
	// setting PageRequest.CurrentPageID to it.
	ID string

	// Label is the text of the link.
	Label string

	// Href is where the link points.
	Href string
}

// MenuItem is a NavEntry as it appears in a rendered menu.
type MenuItem struct {
	Label  string
	Href   string
	Active bool
}

// BuildMenu returns one MenuItem per entry, in the same order. An item is
// Active only when its entry's ID is exactly currentPageID; an empty
// currentPageID means no page is current, and nothing is Active.
func BuildMenu(entries []NavEntry, currentPageID string) []MenuItem {
	items := make([]MenuItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, MenuItem{
			Label:  entry.Label,
			Href:   entry.Href,
			Active: currentPageID != "" && entry.ID == currentPageID,
		})
	}
	return items
}

// ValidateEntries checks that entries is non-empty and that every entry has
// a unique, non-empty ID.
func ValidateEntries(entries []NavEntry) error {
	if len(entries) < 1 {
		return ErrNoNavEntries
	}
	seen := map[string]struct{}{}
	for pos, entry := range entries {
		if entry.ID == "" {
			return fmt.Errorf("error validating entry %d: %w", pos, ErrEmptyNavID)
		}
		if _, ok := seen[entry.ID]; ok {
			return fmt.Errorf("error validating entry %q: %w", entry.ID, ErrDuplicateNavID)
		}
		seen[entry.ID] = struct{}{}
	}
	return nil
}
