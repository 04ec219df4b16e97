package contract

import (
	"net/url"
	"regexp"
	"strings"
)

var versionSegment = regexp.MustCompile(`^v[0-9]+$`)

// Normalize maps an observed request URI onto the template form used by the
// contract, e.g. "/api/v2/users/42/orders" becomes "/users/{id}/orders".
// Everything up to and including the first version segment is dropped.
// When no template matches, the version-stripped path is returned as is and
// will simply fail to resolve.
func (t *PathTable) Normalize(uri string) string {
	segments := stripVersion(splitSegments(uriPath(uri)))

	for _, item := range t.Items {
		if matchSegments(item.segments, segments) {
			return joinSegments(item.segments)
		}
	}

	return joinSegments(segments)
}

// uriPath returns the path of uri still percent-encoded, so an encoded "/"
// stays inside its segment.
func uriPath(uri string) string {
	parsed, err := url.Parse(uri)
	if err == nil {
		return parsed.EscapedPath()
	}

	if i := strings.IndexAny(uri, "?#"); i >= 0 {
		uri = uri[:i]
	}
	if i := strings.Index(uri, "://"); i >= 0 {
		rest := uri[i+3:]
		if j := strings.Index(rest, "/"); j >= 0 {
			return rest[j:]
		}
		return ""
	}
	return uri
}

func stripVersion(segments []string) []string {
	for i, s := range segments {
		if versionSegment.MatchString(s) {
			return segments[i+1:]
		}
	}
	return segments
}

func matchSegments(template, observed []string) bool {
	if len(template) != len(observed) {
		return false
	}
	for i, s := range template {
		if !isPlaceholder(s) && s != observed[i] {
			return false
		}
	}
	return true
}
