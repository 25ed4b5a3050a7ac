package parser

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Method and URL may be separated by any whitespace, so a method given
	// on the command line can be followed by a URL on the next line.
	requestLinePattern = regexp.MustCompile(`^\s*(?:(\w+)\s+)?(\S+)(?:[ \t]+HTTP/\d+\.?\d*)?`)
	blankLinePattern   = regexp.MustCompile(`\n[ \t]*\n`)
	headerPattern      = regexp.MustCompile(`^(\S+)[ \t]*:[ \t]*(.+)$`)
)

// ParseError reports query text that does not follow the request shorthand.
type ParseError struct {
	Line    int
	Text    string
	Message string
}

func (e *ParseError) Error() string {
	if e.Text == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %q (line %d)", e.Message, e.Text, e.Line)
}

// Parse reads a request written as
//
//	[METHOD] URL [HTTP/x.y]
//	Header: value
//
//	body
//
// Headers and body are separated by the first blank line.
func Parse(text string) (Request, error) {
	loc := requestLinePattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return Request{}, &ParseError{Message: "a request line with a URL is required"}
	}

	req := NewRequest("", text[loc[4]:loc[5]])
	if loc[2] >= 0 {
		req.Method = strings.ToUpper(text[loc[2]:loc[3]])
	}

	rest := text[loc[1]:]
	// Line number of the first line following the request line.
	first := strings.Count(text[:loc[1]], "\n") + 1
	headers := rest
	if sep := blankLinePattern.FindStringIndex(rest); sep != nil {
		headers = rest[:sep[0]]
		req.Body = rest[sep[1]:]
	}

	if err := parseHeaders(headers, first, req.Headers); err != nil {
		return Request{}, err
	}
	return req, nil
}

func parseHeaders(text string, first int, headers map[string]string) error {
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		match := headerPattern.FindStringSubmatch(line)
		if match == nil {
			return &ParseError{Line: first + i, Text: line, Message: "bad header"}
		}
		headers[match[1]] = match[2]
	}
	return nil
}
