// Package extract pulls fragments out of response bodies with JSONPath
// or XPath expressions.
package extract

import (
	"github.com/pkg/errors"
)

// ErrUnknownSubtype is returned when no subtype was given and none could be
// guessed from the response.
var ErrUnknownSubtype = errors.New("can't guess response content subtype")

// Response is the part of an HTTP response extraction needs.
type Response interface {
	ContentType() string
	Body() []byte
}

// Content is a Response held in memory.
type Content struct {
	Type string
	Data []byte
}

func (c Content) ContentType() string { return c.Type }
func (c Content) Body() []byte        { return c.Data }

// Result maps the location of every match to its value.
type Result map[string]any

// Evaluator runs an expression against a response body.
type Evaluator interface {
	Evaluate(body []byte, expression string) (Result, error)
}

// EvaluatorFor returns the evaluator handling subtype s.
func EvaluatorFor(s Subtype) (Evaluator, error) {
	switch s {
	case JSON:
		return JSONEvaluator{}, nil
	case XML:
		return XMLEvaluator{}, nil
	case HTML:
		return HTMLEvaluator{}, nil
	}
	return nil, ErrUnknownSubtype
}

// Extract evaluates expression against the body of r. When subtype is
// Unknown it is guessed from the response.
func Extract(r Response, expression string, subtype Subtype) (Result, error) {
	if subtype == Unknown {
		subtype = GuessSubtype(r)
	}
	ev, err := EvaluatorFor(subtype)
	if err != nil {
		return nil, err
	}
	res, err := ev.Evaluate(r.Body(), expression)
	if err != nil {
		return nil, errors.Wrapf(err, "evaluating %s expression", subtype)
	}
	return res, nil
}
