package parser

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	uuid "github.com/satori/go.uuid"
)

var placeholderPattern = regexp.MustCompile(`\$(?:(\$)|([_a-zA-Z][_a-zA-Z0-9]*)|\{([_a-zA-Z][_a-zA-Z0-9]*)\})`)

// Namespace holds the values available to Expand.
type Namespace map[string]string

// Builtins returns the dynamic variables: a fresh random uuid and the
// current unix timestamp.
func Builtins() Namespace {
	return Namespace{
		"uuid":      uuid.NewV4().String(),
		"timestamp": strconv.FormatInt(time.Now().Unix(), 10),
	}
}

// Environ returns the process environment as a Namespace.
func Environ() Namespace {
	ns := make(Namespace)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			ns[kv[:i]] = kv[i+1:]
		}
	}
	return ns
}

// With returns a new Namespace holding n overlaid by others, later
// namespaces taking precedence.
func (n Namespace) With(others ...Namespace) Namespace {
	ns := make(Namespace, len(n))
	for k, v := range n {
		ns[k] = v
	}
	for _, o := range others {
		for k, v := range o {
			ns[k] = v
		}
	}
	return ns
}

// Expand replaces $name and ${name} in text with values from ns. $$ is an
// escaped $. Unknown names and malformed placeholders are left untouched.
func Expand(text string, ns Namespace) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		if match == "$$" {
			return "$"
		}
		name := strings.Trim(match[1:], "{}")
		if v, ok := ns[name]; ok {
			return v
		}
		return match
	})
}
