// Package frame renders the shared chrome of a small static site around the
// pages that make it up.
//
// frame is organized around Fragments, NavEntries, and a Site. A Fragment is
// a named block of markup that every page has in common: the head metadata,
// the shared stylesheet. A NavEntry is one link in the site's navigation
// menu. A Site holds both, and is built once when the server starts and
// shared by every request from then on; it is never modified after
// NewSite returns, so it can be used from many goroutines without locking.
//
// To render a page, build a PageRequest holding the page's body and the ID
// of the NavEntry it belongs to, and pass it to Site.Render. The result is a
// complete HTML document: the head fragment, then the navigation menu with
// the matching entry marked active, then the body. A page that doesn't
// belong to any menu entry leaves CurrentPageID empty, and nothing in the
// menu is highlighted.
//
// The body is inserted as-is. Whoever supplies it is responsible for making
// sure it is well-formed and safe.
package frame
