package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/pkg/errors"
)

const rootPath = "$"

// A bracket following a dot ("book.[1]") selects from the left operand.
var dottedBracket = regexp.MustCompile(`([^.])\.\[`)

// JSONEvaluator evaluates JSONPath expressions. Matches are keyed by their
// path rendered as dotted segments with array indices as "[N]", for
// example store.book.[1].title.
type JSONEvaluator struct{}

func (JSONEvaluator) Evaluate(body []byte, expression string) (Result, error) {
	doc, err := oj.Parse(body)
	if err != nil {
		return nil, errors.Wrap(err, "parsing JSON body")
	}

	expression = NormalizeJSONPath(expression)
	if expression == rootPath {
		return Result{rootPath: doc}, nil
	}

	x, err := jp.ParseString(dottedBracket.ReplaceAllString(expression, "$1["))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing JSONPath %q", expression)
	}

	res := make(Result)
	for _, loc := range x.Locate(doc, 0) {
		res[renderPath(loc)] = loc.First(doc)
	}
	return res, nil
}

// NormalizeJSONPath anchors expression at the document root.
func NormalizeJSONPath(expression string) string {
	switch {
	case strings.HasPrefix(expression, rootPath):
		return expression
	case expression != "" && !strings.HasPrefix(expression, "."):
		return rootPath + "." + expression
	}
	return rootPath + expression
}

func renderPath(x jp.Expr) string {
	parts := make([]string, 0, len(x))
	for _, frag := range x {
		switch f := frag.(type) {
		case jp.Child:
			parts = append(parts, string(f))
		case jp.Nth:
			parts = append(parts, "["+strconv.Itoa(int(f))+"]")
		}
	}
	if len(parts) == 0 {
		return rootPath
	}
	return strings.Join(parts, ".")
}
