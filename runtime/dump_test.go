package runtime

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restmagic-cli/parser"
)

func TestDump(t *testing.T) {
	srv := echoServer(t)
	req := parser.Request{
		Method:  "POST",
		URL:     srv.URL + "/echo?x=1",
		Headers: map[string]string{"Test-Header": "111"},
		Body:    "hello",
	}
	resp, err := New().Send(context.Background(), req, DefaultSendOptions())
	require.NoError(t, err)

	dump := Dump(resp)
	assert.Contains(t, dump, "< POST /echo?x=1 HTTP/1.1\n")
	assert.Contains(t, dump, "< Test-Header: 111\n")
	assert.Contains(t, dump, "> HTTP/1.1 200 OK\n")
	assert.Contains(t, dump, "> X-Method: POST\n")
	assert.Contains(t, dump, "hello\n")
}

func TestDumpWithoutWireRequest(t *testing.T) {
	resp := &Response{
		Request:    parser.Request{Method: "GET", URL: "http://localhost/test"},
		Proto:      "HTTP/1.1",
		StatusCode: http.StatusUnauthorized,
		Status:     "401 Unauthorized",
		Header:     http.Header{"Content-Type": {"application/octet-stream"}},
		Content:    []byte{0xff, 'o', 'k'},
	}
	dump := Dump(resp)
	assert.Contains(t, dump, "< GET http://localhost/test HTTP/1.1\n")
	assert.Contains(t, dump, "> HTTP/1.1 401 Unauthorized\n")
	assert.Contains(t, dump, "�ok")
	assert.Equal(t, "", Dump(nil))
}
