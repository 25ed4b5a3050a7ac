package parser

import (
	"regexp"
	"strings"
)

// DefaultMethod and DefaultScheme are filled in by Base when neither the
// root request nor the query names them.
const (
	DefaultMethod = "GET"
	DefaultScheme = "https://"
)

var absoluteURL = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*://`)

// Request is a parsed HTTP query. Empty fields mean "unspecified".
// Values are never modified in place, Merge returns a new Request.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string
}

func NewRequest(method, url string) Request {
	return Request{
		Method:  method,
		URL:     url,
		Headers: make(map[string]string),
	}
}

// Base is the request every query is merged onto before the root request.
func Base() Request {
	return Request{Method: DefaultMethod, URL: DefaultScheme}
}

func (r Request) String() string {
	return r.Method + " " + r.URL
}

// Merge combines r with other, other taking precedence. A relative URL in
// other is joined onto the URL of r as a path segment. The body of other
// always wins.
func (r Request) Merge(other Request) Request {
	method := other.Method
	if method == "" {
		method = r.Method
	}
	return Request{
		Method:  method,
		URL:     joinURL(r.URL, other.URL),
		Headers: mergeHeaders(r.Headers, other.Headers),
		Body:    other.Body,
	}
}

// Chain merges requests left to right.
func Chain(requests ...Request) Request {
	var result Request
	for i, r := range requests {
		if i == 0 {
			result = r
			continue
		}
		result = result.Merge(r)
	}
	return result
}

func joinURL(base, ref string) string {
	switch {
	case ref == "":
		return base
	case base == "" || IsAbsoluteURL(ref):
		return ref
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(ref, "/")
}

// IsAbsoluteURL reports whether url starts with a scheme:// prefix.
func IsAbsoluteURL(url string) bool {
	return absoluteURL.MatchString(url)
}

func mergeHeaders(a, b map[string]string) map[string]string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	headers := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		headers[k] = v
	}
	for k, v := range b {
		headers[k] = v
	}
	return headers
}
