package crawler

import (
	"net/url"
	"strings"
)

// SplitURL derives the two resolution bases for links found on pageURL:
// the origin (scheme://host, no path) and the page path (pageURL truncated
// after its last '/', or the whole URL when it has none).
// It never fails; an unparseable URL yields an empty origin.
func SplitURL(pageURL string) (baseOrigin, pagePath string) {
	if parsed, err := url.Parse(pageURL); err == nil {
		baseOrigin = parsed.Scheme + "://" + parsed.Host
	}

	if i := strings.LastIndex(pageURL, "/"); i >= 0 {
		pagePath = pageURL[:i+1]
	} else {
		pagePath = pageURL
	}

	return baseOrigin, pagePath
}

// Normalize turns a raw href into an absolute URL string.
//
//	"/about"          -> baseOrigin + "/about"
//	"team.html"       -> pagePath + "team.html"
//	"https://b.com/x" -> unchanged
//
// The result is not validated. Fragments, queries, percent-encoding and ".."
// segments are left as they are, so malformed links surface as fetch errors.
func Normalize(rawLink, baseOrigin, pagePath string) string {
	switch {
	case strings.HasPrefix(rawLink, "/"):
		return baseOrigin + rawLink
	case !strings.HasPrefix(rawLink, "http"):
		return pagePath + rawLink
	default:
		return rawLink
	}
}
