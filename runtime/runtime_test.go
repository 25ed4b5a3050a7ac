package runtime

import (
	"context"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restmagic-cli/parser"
)

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Method", r.Method)
		w.Header().Set("X-Test-Header", r.Header.Get("Test-Header"))
		_, _ = w.Write(body)
	})
	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/echo", http.StatusFound)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSend(t *testing.T) {
	srv := echoServer(t)
	req := parser.Request{
		Method:  "POST",
		URL:     srv.URL + "/echo",
		Headers: map[string]string{"Test-Header": "1234"},
		Body:    `{"π": "π"}`,
	}

	resp, err := New().Send(context.Background(), req, DefaultSendOptions())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, "POST", resp.Header.Get("X-Method"))
	assert.Equal(t, "1234", resp.Header.Get("X-Test-Header"))
	assert.Equal(t, []byte(`{"π": "π"}`), resp.Body())
	assert.Equal(t, "text/plain; charset=utf-8", resp.ContentType())
	assert.Equal(t, "HTTP/1.1", resp.Proto)
	assert.Equal(t, req, resp.Request)
}

func TestSendRedirects(t *testing.T) {
	srv := echoServer(t)
	req := parser.NewRequest("GET", srv.URL+"/redirect")

	resp, err := New().Send(context.Background(), req, DefaultSendOptions())
	require.NoError(t, err)
	assert.Equal(t, "GET", resp.Header.Get("X-Method"))

	opts := DefaultSendOptions()
	opts.MaxRedirects = 0
	_, err = New().Send(context.Background(), req, opts)
	assert.Error(t, err)
}

func TestSendTimeout(t *testing.T) {
	srv := echoServer(t)
	opts := DefaultSendOptions()
	opts.Timeout = 20 * time.Millisecond
	_, err := New().Send(context.Background(), parser.NewRequest("GET", srv.URL+"/slow"), opts)
	assert.Error(t, err)
}

func TestSendCancelled(t *testing.T) {
	srv := echoServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Send(ctx, parser.NewRequest("GET", srv.URL+"/echo"), DefaultSendOptions())
	assert.Error(t, err)
}

func TestSendTLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "secure")
	}))
	defer srv.Close()
	req := parser.NewRequest("GET", srv.URL)

	_, err := New().Send(context.Background(), req, DefaultSendOptions())
	require.Error(t, err)
	assert.True(t, IsCertificateError(err))

	opts := DefaultSendOptions()
	opts.Insecure = true
	resp, err := New().Send(context.Background(), req, opts)
	require.NoError(t, err)
	assert.Equal(t, "secure", string(resp.Body()))

	caFile := filepath.Join(t.TempDir(), "ca.pem")
	block := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	require.NoError(t, os.WriteFile(caFile, block, 0o600))
	opts = DefaultSendOptions()
	opts.CACert = caFile
	resp, err = New().Send(context.Background(), req, opts)
	require.NoError(t, err)
	assert.Equal(t, "secure", string(resp.Body()))
}

func TestSendMissingCertificateFiles(t *testing.T) {
	opts := DefaultSendOptions()
	opts.CACert = filepath.Join(t.TempDir(), "missing.pem")
	_, err := New().Send(context.Background(), parser.NewRequest("GET", "https://localhost"), opts)
	assert.Error(t, err)

	opts = DefaultSendOptions()
	opts.Cert = filepath.Join(t.TempDir(), "missing.pem")
	_, err = New().Send(context.Background(), parser.NewRequest("GET", "https://localhost"), opts)
	assert.Error(t, err)
}

func TestSessionReusesConnections(t *testing.T) {
	var (
		mu      sync.Mutex
		remotes []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		remotes = append(remotes, r.RemoteAddr)
	}))
	defer srv.Close()
	req := parser.NewRequest("GET", srv.URL)

	session := NewSession()
	assert.True(t, session.KeepAlive())
	for i := 0; i < 2; i++ {
		_, err := session.Send(context.Background(), req, DefaultSendOptions())
		require.NoError(t, err)
	}
	require.NoError(t, session.Close())
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, remotes, 2)
	assert.Equal(t, remotes[0], remotes[1])

}

func TestClientOpensNewConnections(t *testing.T) {
	var (
		mu      sync.Mutex
		remotes []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		remotes = append(remotes, r.RemoteAddr)
	}))
	defer srv.Close()
	req := parser.NewRequest("GET", srv.URL)

	client := New()
	assert.False(t, client.KeepAlive())
	for i := 0; i < 2; i++ {
		_, err := client.Send(context.Background(), req, DefaultSendOptions())
		require.NoError(t, err)
	}
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, remotes, 2)
	assert.NotEqual(t, remotes[0], remotes[1])
}

func TestIsCertificateError(t *testing.T) {
	assert.False(t, IsCertificateError(nil))
	assert.False(t, IsCertificateError(io.EOF))
}
