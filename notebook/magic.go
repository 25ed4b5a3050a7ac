// Package notebook implements the %rest, %rest_root and %rest_session
// magics and runs notebooks made of them.
package notebook

import (
	"context"
	"errors"
	"io"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"restmagic-cli/display"
	"restmagic-cli/extract"
	"restmagic-cli/parser"
	"restmagic-cli/runtime"
)

const (
	MagicRest        = "rest"
	MagicRestRoot    = "rest_root"
	MagicRestSession = "rest_session"
)

// Sender sends merged requests, runtime.Client implements it.
type Sender interface {
	Send(ctx context.Context, req parser.Request, opts runtime.SendOptions) (*runtime.Response, error)
	Close() error
}

// Magic holds the state shared by magics: the root request and its flags,
// and the persistent session if one is open.
type Magic struct {
	root     *parser.Request
	rootArgs map[string]string
	session  Sender

	config    *viper.Viper
	vars      parser.Namespace
	display   *display.Display
	newSender func(keepAlive bool) Sender
}

type Option func(*Magic)

func New(opts ...Option) *Magic {
	m := &Magic{
		rootArgs: make(map[string]string),
		config:   viper.New(),
		display:  display.New(),
		newSender: func(keepAlive bool) Sender {
			if keepAlive {
				return runtime.NewSession()
			}
			return runtime.New()
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithConfig supplies flag defaults, usually read from a config file.
func WithConfig(v *viper.Viper) Option {
	return func(m *Magic) {
		m.config = v
	}
}

// WithVariables sets the namespace cell text is expanded with.
func WithVariables(ns parser.Namespace) Option {
	return func(m *Magic) {
		m.vars = ns
	}
}

func WithDisplay(d *display.Display) Option {
	return func(m *Magic) {
		m.display = d
	}
}

// WithSenderFactory replaces the runtime client used to send requests.
func WithSenderFactory(fn func(keepAlive bool) Sender) Option {
	return func(m *Magic) {
		m.newSender = fn
	}
}

// Root returns the root request, or nil if none is set.
func (m *Magic) Root() *parser.Request {
	return m.root
}

// RootArgs returns the flags saved by the last %rest_root.
func (m *Magic) RootArgs() map[string]string {
	return m.rootArgs
}

// InSession reports whether a persistent session is open.
func (m *Magic) InSession() bool {
	return m.session != nil
}

// Rest runs %rest with a command line and cell text.
func (m *Magic) Rest(ctx context.Context, line, cell string) (*runtime.Response, error) {
	fs := NewFlagSet(MagicRest)
	if err := fs.Parse(parser.SplitArgs(line)); err != nil {
		m.display.Usage(MagicRest, cell != "", err)
		return nil, err
	}
	return m.Call(ctx, fs, cell)
}

// Call runs %rest with already parsed flags. The positional arguments of
// fs are the first line of the query, cell holds the rest.
func (m *Magic) Call(ctx context.Context, fs *pflag.FlagSet, cell string) (*runtime.Response, error) {
	v, err := m.options(fs)
	if err != nil {
		return nil, err
	}

	req, err := parser.Parse(m.query(fs, cell))
	if err != nil {
		m.display.Usage(MagicRest, cell != "", err)
		return nil, err
	}
	req = parser.Chain(parser.Base(), m.rootRequest(), req)

	sender := m.session
	if sender == nil {
		sender = m.newSender(false)
		defer sender.Close()
	}

	resp, err := sender.Send(ctx, req, sendOptions(v))
	if err != nil {
		if runtime.IsCertificateError(err) {
			m.display.Warn("Use `%%rest --insecure` option to disable SSL certificate verification.")
		}
		return nil, err
	}
	m.show(v, resp)
	return resp, nil
}

func (m *Magic) show(v *viper.Viper, resp *runtime.Response) {
	if v.GetBool(FlagQuiet) {
		return
	}
	if expr := v.GetString(FlagExtract); expr != "" {
		res, err := m.extract(v, resp, parser.StripQuotes(expr))
		if err == nil {
			err = m.display.Result(res, v.GetString(FlagOutput))
		}
		if err != nil {
			m.display.Error("Can't extract from the response.", err)
			if errors.Is(err, extract.ErrUnknownSubtype) {
				m.display.Warn("Use `--subtype` option to specify the response content subtype.")
			}
		}
		return
	}
	if v.GetBool(FlagVerbose) {
		m.display.Dump(runtime.Dump(resp))
		return
	}
	m.display.Status(resp)
	if err := m.display.Response(resp); err != nil {
		m.display.Error("Can't display the response.", err)
	}
}

func (m *Magic) extract(v *viper.Viper, resp *runtime.Response, expression string) (extract.Result, error) {
	subtype, err := extract.ParseSubtype(v.GetString(FlagSubtype))
	if err != nil {
		return nil, err
	}
	return extract.Extract(resp, expression, subtype)
}

// RestRoot runs %rest_root. The parsed query becomes the root request
// merged under every following query, and the changed flags become
// defaults of every following call. An empty line and cell clear both.
func (m *Magic) RestRoot(line, cell string) error {
	fs := NewFlagSet(MagicRestRoot)
	if err := fs.Parse(parser.SplitArgs(line)); err != nil {
		m.display.Usage(MagicRestRoot, cell != "", err)
		return err
	}

	args := make(map[string]string)
	fs.Visit(func(f *pflag.Flag) {
		args[f.Name] = f.Value.String()
	})

	query := m.query(fs, cell)
	if strings.TrimSpace(query) == "" {
		m.root = nil
		m.rootArgs = args
		return nil
	}

	req, err := parser.Parse(query)
	if err != nil {
		m.display.Usage(MagicRestRoot, cell != "", err)
		return err
	}
	m.root = &req
	m.rootArgs = args
	return nil
}

// RestSession runs %rest_session. It closes the current session and, unless
// end is set, opens a new one.
func (m *Magic) RestSession(line string) error {
	fs := pflag.NewFlagSet(MagicRestSession, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	end := fs.BoolP("end", "e", false, "end the persistent session")
	if err := fs.Parse(parser.SplitArgs(line)); err != nil {
		return err
	}

	if err := m.Close(); err != nil {
		return err
	}
	if !*end {
		m.session = m.newSender(true)
	}
	return nil
}

// Close ends the persistent session.
func (m *Magic) Close() error {
	if m.session == nil {
		return nil
	}
	err := m.session.Close()
	m.session = nil
	return pkgerrors.Wrap(err, "closing session")
}

func (m *Magic) query(fs *pflag.FlagSet, cell string) string {
	return strings.Join(fs.Args(), " ") + "\n" + parser.Expand(cell, m.vars)
}

func (m *Magic) rootRequest() parser.Request {
	if m.root == nil {
		return parser.Request{}
	}
	return *m.root
}

// options layers the flags of a call over the root flags, then over the
// configuration.
func (m *Magic) options(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	for _, key := range m.config.AllKeys() {
		v.SetDefault(key, m.config.Get(key))
	}
	for key, value := range m.rootArgs {
		v.SetDefault(key, value)
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, pkgerrors.Wrap(err, "binding flags")
	}
	return v, nil
}
