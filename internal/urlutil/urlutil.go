// Package urlutil provides the small URL and string helpers shared by the
// interaction endpoints: slash normalization, local-URL detection and query
// string construction.
package urlutil

import (
	"net/url"
	"strings"
)

// IsPresent reports whether the string has non-whitespace content.
func IsPresent(value string) bool {
	return strings.TrimSpace(value) != ""
}

// IsMissing reports whether the string is empty or whitespace only.
func IsMissing(value string) bool {
	return strings.TrimSpace(value) == ""
}

// EnsureLeadingSlash prefixes the URL with "/" if it has none.
func EnsureLeadingSlash(u string) string {
	if u != "" && !strings.HasPrefix(u, "/") {
		return "/" + u
	}
	return u
}

// EnsureTrailingSlash suffixes the URL with "/" if it has none.
func EnsureTrailingSlash(u string) string {
	if u != "" && !strings.HasSuffix(u, "/") {
		return u + "/"
	}
	return u
}

// RemoveLeadingSlash strips a single leading "/".
func RemoveLeadingSlash(u string) string {
	return strings.TrimPrefix(u, "/")
}

// RemoveTrailingSlash strips a single trailing "/".
func RemoveTrailingSlash(u string) string {
	return strings.TrimSuffix(u, "/")
}

// CleanURLPath normalizes a base path: empty becomes "/", a trailing slash is
// removed unless the path is the root itself.
func CleanURLPath(u string) string {
	if strings.TrimSpace(u) == "" {
		return "/"
	}
	if u != "/" && strings.HasSuffix(u, "/") {
		return u[:len(u)-1]
	}
	return u
}

// IsLocalURL reports whether the URL is local to this host. Allows "/" or
// "/foo" but not "//" or "/\", and "~/" or "~/foo" but not "~//" or "~/\".
// Used as the open-redirect guard before honoring a return URL.
func IsLocalURL(u string) bool {
	if u == "" {
		return false
	}

	if u[0] == '/' {
		if len(u) == 1 {
			return true
		}
		return u[1] != '/' && u[1] != '\\'
	}

	if u[0] == '~' && len(u) > 1 && u[1] == '/' {
		if len(u) == 2 {
			return true
		}
		return u[2] != '/' && u[2] != '\\'
	}

	return false
}

// AddQueryString appends a raw query fragment to the URL, inserting "?" or
// "&" as needed.
func AddQueryString(u, query string) string {
	if !strings.Contains(u, "?") {
		u += "?"
	} else if !strings.HasSuffix(u, "&") {
		u += "&"
	}
	return u + query
}

// AddQueryParam appends a single name=value pair to the URL, encoding the value.
func AddQueryParam(u, name, value string) string {
	return AddQueryString(u, name+"="+url.QueryEscape(value))
}

// AddHashFragment appends a fragment to the URL, inserting "#" if absent.
func AddHashFragment(u, query string) string {
	if !strings.Contains(u, "#") {
		u += "#"
	}
	return u + query
}

// ReadQueryStringAsValues parses the query portion of a URL (or a bare query
// string) into url.Values. Malformed pairs are dropped.
func ReadQueryStringAsValues(u string) url.Values {
	if idx := strings.IndexByte(u, '?'); idx >= 0 {
		u = u[idx+1:]
	} else if !strings.ContainsRune(u, '=') {
		// a path without a query portion has no parameters
		return url.Values{}
	}
	values, err := url.ParseQuery(u)
	if err != nil {
		return url.Values{}
	}
	return values
}

// GetOrigin returns scheme://authority for absolute http(s) URLs, or the
// empty string for anything else.
func GetOrigin(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}

// SplitCSV splits a comma separated header value into trimmed entries.
func SplitCSV(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(strings.TrimSuffix(csv, ","), ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		result = append(result, strings.TrimSpace(p))
	}
	return result
}

// ToSpaceSeparatedString joins the list with single spaces.
func ToSpaceSeparatedString(list []string) string {
	return strings.Join(list, " ")
}

// FromSpaceSeparatedString splits on whitespace, dropping empty entries.
func FromSpaceSeparatedString(input string) []string {
	return strings.Fields(input)
}
