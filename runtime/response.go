package runtime

import (
	"net/http"
	"time"

	"restmagic-cli/parser"
)

// Response is a received HTTP response together with what was sent.
type Response struct {
	// Request is the merged request that was sent.
	Request parser.Request
	// Sent is the request as it went over the wire, when known.
	Sent *http.Request

	Proto      string
	StatusCode int
	Status     string
	Header     http.Header
	Content    []byte
	Duration   time.Duration
}

func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

func (r *Response) Body() []byte {
	return r.Content
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
