package document

import (
	"fmt"
	"net/url"
	"strings"
)

// FragmentPrefix is the reserved navigation-fragment prefix that addresses a
// highlight by id, as in https://example.com/page#sensenote-<id>.
const FragmentPrefix = "sensenote-"

// Key normalizes a document address into the identity highlights are scoped
// by: the address with any navigation fragment removed. Two addresses that
// differ only in fragment share one document.
func Key(rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", fmt.Errorf("document: empty address")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("document: parse address %q: %w", rawURL, err)
	}
	u.Fragment = ""
	return u.String(), nil
}

// FragmentFor returns the navigation fragment addressing a highlight id.
func FragmentFor(id string) string {
	return FragmentPrefix + id
}

// FragmentID extracts the highlight id addressed by a URL's fragment. ok is
// false when the fragment is absent or carries some other prefix.
func FragmentID(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	return ParseFragment(u.Fragment)
}

// ParseFragment extracts the highlight id from a bare fragment value.
func ParseFragment(fragment string) (string, bool) {
	id, ok := strings.CutPrefix(fragment, FragmentPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
