package runtime

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gopkg.in/resty.v1"

	"restmagic-cli/parser"
)

const (
	DefaultMaxRedirects = 30
	DefaultTimeout      = 10 * time.Second
)

// SendOptions control a single Send.
type SendOptions struct {
	// Insecure disables TLS certificate verification.
	Insecure bool
	// CACert is a PEM file of trusted roots.
	CACert string
	// Cert and Key are the PEM files of a client certificate.
	Cert string
	Key  string
	// Proxy is used for both http and https URLs.
	Proxy string
	// MaxRedirects is the number of redirects followed, 0 disables them.
	MaxRedirects int
	// Timeout of the whole exchange, 0 disables it.
	Timeout time.Duration
}

func DefaultSendOptions() SendOptions {
	return SendOptions{
		MaxRedirects: DefaultMaxRedirects,
		Timeout:      DefaultTimeout,
	}
}

// Client sends requests. A Client made by New opens a new connection for
// every request, one made by NewSession keeps connections alive between
// requests until Close. A Client must not be used concurrently.
type Client struct {
	client    *resty.Client
	transport *http.Transport
	keepAlive bool
}

func New() *Client {
	return newClient(false)
}

func NewSession() *Client {
	return newClient(true)
}

func newClient(keepAlive bool) *Client {
	transport := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		DisableKeepAlives: !keepAlive,
	}
	client := resty.New()
	client.SetTransport(transport)
	client.SetAllowGetMethodPayload(true)
	return &Client{client: client, transport: transport, keepAlive: keepAlive}
}

// KeepAlive reports whether the Client reuses connections.
func (c *Client) KeepAlive() bool {
	return c.keepAlive
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}

// Send executes req. The body is sent as UTF-8 bytes.
func (c *Client) Send(ctx context.Context, req parser.Request, opts SendOptions) (*Response, error) {
	if err := c.configure(opts); err != nil {
		return nil, err
	}

	r := c.client.R().SetContext(ctx).SetHeaders(req.Headers)
	if req.Body != "" {
		r.SetBody([]byte(req.Body))
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "sending %s", req)
	}
	return respFromResty(req, resp), nil
}

func (c *Client) configure(opts SendOptions) error {
	c.client.SetTimeout(opts.Timeout)

	if opts.Proxy != "" {
		proxy := opts.Proxy
		if !strings.Contains(proxy, "://") {
			proxy = "http://" + proxy
		}
		c.client.SetProxy(proxy)
	} else {
		c.client.RemoveProxy()
		c.transport.Proxy = http.ProxyFromEnvironment
	}

	if opts.MaxRedirects > 0 {
		c.client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(opts.MaxRedirects))
	} else {
		c.client.SetRedirectPolicy(resty.NoRedirectPolicy())
	}

	tlsConfig := &tls.Config{InsecureSkipVerify: opts.Insecure}
	if opts.Cert != "" {
		key := opts.Key
		if key == "" {
			key = opts.Cert
		}
		cert, err := tls.LoadX509KeyPair(opts.Cert, key)
		if err != nil {
			return pkgerrors.Wrap(err, "loading client certificate")
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	if opts.CACert != "" {
		pem, err := os.ReadFile(opts.CACert)
		if err != nil {
			return pkgerrors.Wrap(err, "reading CA certificate")
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return pkgerrors.Errorf("no certificates found in %s", opts.CACert)
		}
		tlsConfig.RootCAs = pool
	}
	c.client.SetTLSClientConfig(tlsConfig)
	return nil
}

func respFromResty(req parser.Request, restyResp *resty.Response) *Response {
	resp := &Response{
		Request:    req,
		StatusCode: restyResp.StatusCode(),
		Status:     restyResp.Status(),
		Header:     restyResp.Header(),
		Content:    restyResp.Body(),
		Duration:   restyResp.Time(),
	}
	if raw := restyResp.RawResponse; raw != nil {
		resp.Proto = raw.Proto
	}
	if restyResp.Request != nil && restyResp.Request.RawRequest != nil {
		resp.Sent = restyResp.Request.RawRequest
	}
	if resp.Header == nil {
		resp.Header = make(http.Header)
	}
	return resp
}

// IsCertificateError reports whether err was caused by a failed TLS
// certificate verification.
func IsCertificateError(err error) bool {
	var (
		unknownAuthority x509.UnknownAuthorityError
		hostname         x509.HostnameError
		invalid          x509.CertificateInvalidError
		verification     *tls.CertificateVerificationError
	)
	return errors.As(err, &unknownAuthority) ||
		errors.As(err, &hostname) ||
		errors.As(err, &invalid) ||
		errors.As(err, &verification)
}
