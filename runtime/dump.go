package runtime

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

const (
	requestPrefix  = "< "
	responsePrefix = "> "
)

// Dump renders the exchange as text: the request line, headers and body
// prefixed with "< ", then the status line, headers and body of the
// response prefixed with "> ". Invalid UTF-8 is replaced.
func Dump(resp *Response) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder

	method, target, proto := resp.Request.Method, resp.Request.URL, "HTTP/1.1"
	header := make(http.Header)
	for k, v := range resp.Request.Headers {
		header.Set(k, v)
	}
	if sent := resp.Sent; sent != nil {
		method, target, header = sent.Method, sent.URL.RequestURI(), sent.Header.Clone()
		if sent.Proto != "" {
			proto = sent.Proto
		}
		header.Set("Host", sent.URL.Host)
	}
	fmt.Fprintf(&b, "%s%s %s %s\n", requestPrefix, method, target, proto)
	writeHeader(&b, requestPrefix, header)
	b.WriteString(requestPrefix + "\n")
	if resp.Request.Body != "" {
		b.WriteString(resp.Request.Body + "\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s%s %s\n", responsePrefix, resp.Proto, resp.Status)
	writeHeader(&b, responsePrefix, resp.Header)
	b.WriteString(responsePrefix + "\n")
	b.Write(resp.Content)

	return strings.ToValidUTF8(b.String(), "�")
}

func writeHeader(b *strings.Builder, prefix string, header http.Header) {
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range header[name] {
			fmt.Fprintf(b, "%s%s: %s\n", prefix, name, value)
		}
	}
}
