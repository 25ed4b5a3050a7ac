package extract

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Subtype is the structural kind of response content.
type Subtype string

const (
	Unknown Subtype = ""
	JSON    Subtype = "json"
	XML     Subtype = "xml"
	HTML    Subtype = "html"
)

// Subtypes are matched against the MIME subtype in this order, so
// application/xhtml+xml is HTML.
var Subtypes = []Subtype{JSON, HTML, XML}

func (s Subtype) String() string {
	if s == Unknown {
		return "unknown"
	}
	return string(s)
}

// ParseSubtype converts a user supplied name. The empty string is Unknown,
// meaning the subtype will be guessed.
func ParseSubtype(name string) (Subtype, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Unknown, nil
	}
	for _, s := range Subtypes {
		if string(s) == name {
			return s, nil
		}
	}
	return Unknown, fmt.Errorf("unsupported content subtype %q, expected one of json, xml, html", name)
}

// MimeType returns the lower-cased media type of a Content-Type header
// value, without parameters.
func MimeType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// GuessSubtype classifies a response by its declared MIME type, then by
// whether the body is valid JSON. Anything else is Unknown.
func GuessSubtype(r Response) Subtype {
	if mime := MimeType(r.ContentType()); mime != "" {
		sub := mime[strings.LastIndexByte(mime, '/')+1:]
		for _, s := range Subtypes {
			if strings.Contains(sub, string(s)) {
				return s
			}
		}
	}
	if gjson.ValidBytes(r.Body()) {
		return JSON
	}
	return Unknown
}
