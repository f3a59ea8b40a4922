package frame

import (
	"errors"
	"html/template"
)

// stylesheet returns the contents of the StylesheetFragment, or an empty
// string if the site doesn't register one. The stylesheet is site
// configuration, not user input, so it's trusted as-is.
func stylesheet(fragments *FragmentStore) (template.CSS, error) {
	css, err := fragments.Get(StylesheetFragment)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return template.CSS(css), nil // #nosec G203
}
