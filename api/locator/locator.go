// Package locator splits a hosted folder URL into its repository coordinates.
package locator

import (
	"net/url"
	"strings"
)

// Address identifies a folder inside a hosted repository.
// For https://raw.githubusercontent.com/acme/data/main/exports it is
// {Owner: "acme", Repository: "data", Branch: "main", BasePath: "exports"}.
type Address struct {
	Owner      string
	Repository string
	Branch     string
	BasePath   string
}

// Parse extracts the Address from baseURL.
// The second return value is false when the URL cannot be parsed or its path
// has fewer than four segments; callers treat that as "no repository known".
func Parse(baseURL string) (Address, bool) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Address{}, false
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 4 {
		return Address{}, false
	}

	return Address{
		Owner:      parts[0],
		Repository: parts[1],
		Branch:     parts[2],
		BasePath:   strings.Join(parts[3:], "/"),
	}, true
}

// FilePath returns the repository-relative path of filename inside the folder.
func (a Address) FilePath(filename string) string {
	if a.BasePath == "" {
		return filename
	}
	return a.BasePath + "/" + filename
}
