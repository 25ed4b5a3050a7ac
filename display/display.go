// Package display renders responses, extraction results and messages on
// the console.
package display

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"

	"restmagic-cli/extract"
	"restmagic-cli/runtime"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const lineUsage = `%{magic} --insecure GET https://httpbin.org/json`

const cellUsage = `%%{magic} --insecure
POST https://httpbin.org/post
Header: value

Message body, separated from headers by an empty line.
`

type Display struct {
	out     io.Writer
	err     io.Writer
	noColor bool
}

type Option func(*Display)

func New(opts ...Option) *Display {
	d := &Display{
		out: os.Stdout,
		err: os.Stderr,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func WithWriter(w io.Writer) Option {
	return func(d *Display) {
		d.out = w
	}
}

func WithErrWriter(w io.Writer) Option {
	return func(d *Display) {
		d.err = w
	}
}

func WithNoColor(nc bool) Option {
	return func(d *Display) {
		d.noColor = nc
	}
}

func (d *Display) colored(attr ...color.Attribute) *color.Color {
	c := color.New(attr...)
	if d.noColor {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	return c
}

// Response prints the body of resp according to its MIME type. JSON is
// indented, text is printed as is and binary content is summarised.
func (d *Display) Response(resp *runtime.Response) error {
	body := resp.Body()
	if len(body) == 0 {
		return nil
	}

	mime := extract.MimeType(resp.ContentType())
	switch {
	case mime == "application/json" || strings.HasSuffix(mime, "+json"):
		if !gjson.ValidBytes(body) {
			return errors.New("response body is not valid JSON")
		}
		out := pretty.PrettyOptions(body, &pretty.Options{Indent: "  ", Width: 80})
		if !d.noColor {
			out = pretty.Color(out, nil)
		}
		_, err := d.out.Write(out)
		return err
	case isText(mime):
		_, err := fmt.Fprintln(d.out, string(body))
		return err
	}

	_, err := fmt.Fprintf(d.out, "<%s, %s>\n", mime, bytefmt.ByteSize(uint64(len(body))))
	return err
}

func isText(mime string) bool {
	switch {
	case mime == "", strings.HasPrefix(mime, "text/"):
		return true
	case strings.HasSuffix(mime, "xml"), strings.HasSuffix(mime, "javascript"):
		return true
	}
	return false
}

// Result prints an extraction result with its keys sorted, as indented
// JSON or as YAML.
func (d *Display) Result(res extract.Result, format string) error {
	switch format {
	case "", FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return errors.Wrap(err, "encoding result as JSON")
		}
		_, err := d.out.Write(buf.Bytes())
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(d.out)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]any(res)); err != nil {
			return errors.Wrap(err, "encoding result as YAML")
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", format)
}

// Dump prints a textual log of an exchange.
func (d *Display) Dump(text string) {
	fmt.Fprintln(d.out, text)
}

// Usage prints err followed by an example of the magic.
func (d *Display) Usage(magic string, cell bool, err error) {
	if err != nil {
		d.colored(color.FgRed).Fprintln(d.err, err)
	}
	text := lineUsage
	if cell {
		text = cellUsage
	}
	fmt.Fprintln(d.out, "Usage example:")
	fmt.Fprintln(d.out, strings.ReplaceAll(text, "{magic}", magic))
}

// Error prints msg and err on the error writer.
func (d *Display) Error(msg string, err error) {
	red := d.colored(color.FgRed)
	if err == nil {
		red.Fprintln(d.err, msg)
		return
	}
	red.Fprintf(d.err, "%s\n%v\n", msg, err)
}

func (d *Display) Warn(format string, args ...any) {
	d.colored(color.FgYellow).Fprintf(d.err, format+"\n", args...)
}

// Status prints the status line of resp.
func (d *Display) Status(resp *runtime.Response) {
	attr := color.FgGreen
	if !resp.IsSuccess() {
		attr = color.FgRed
	}
	fmt.Fprintf(d.err, "%s %s\n", resp.Proto, d.colored(attr, color.Bold).Sprint(resp.Status))
}
