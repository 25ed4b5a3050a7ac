package extract

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/pkg/errors"
)

// XMLEvaluator evaluates XPath 1.0 expressions against an XML body.
type XMLEvaluator struct{}

func (XMLEvaluator) Evaluate(body []byte, expression string) (Result, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Result{}, nil
	}
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "parsing XML body")
	}
	return evaluateXPath(xmlquery.CreateXPathNavigator(doc), expression)
}

// HTMLEvaluator evaluates XPath 1.0 expressions against an HTML body. The
// HTML parser accepts malformed markup.
type HTMLEvaluator struct{}

func (HTMLEvaluator) Evaluate(body []byte, expression string) (Result, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Result{}, nil
	}
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "parsing HTML body")
	}
	return evaluateXPath(htmlquery.CreateXPathNavigator(doc), expression)
}

// evaluateXPath keys scalar results by the expression itself. Node-set
// members are keyed by the path of the element, or of the parent element
// for attributes and text. Members sharing a path overwrite each other.
func evaluateXPath(root xpath.NodeNavigator, expression string) (res Result, err error) {
	if !hasElement(root.Copy()) {
		return Result{}, nil
	}
	expr, err := xpath.Compile(expression)
	if err != nil {
		return nil, errors.Wrapf(err, "compiling XPath %q", expression)
	}

	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("evaluating XPath %q: %v", expression, r)
		}
	}()

	switch v := expr.Evaluate(root).(type) {
	case *xpath.NodeIterator:
		res = make(Result)
		for v.MoveNext() {
			key, value := unpack(v.Current().Copy())
			res[key] = value
		}
		return res, nil
	default:
		return Result{expression: v}, nil
	}
}

func hasElement(nav xpath.NodeNavigator) bool {
	nav.MoveToRoot()
	if !nav.MoveToChild() {
		return false
	}
	for {
		if nav.NodeType() == xpath.ElementNode {
			return true
		}
		if !nav.MoveToNext() {
			return false
		}
	}
}

func unpack(nav xpath.NodeNavigator) (string, string) {
	switch nav.NodeType() {
	case xpath.ElementNode, xpath.RootNode:
		return nodePath(nav.Copy()), markup(nav) + "\n"
	}
	value := nav.Value()
	if !nav.MoveToParent() {
		return "", value
	}
	return nodePath(nav), value
}

// nodePath returns the absolute path of the element under nav. A position
// predicate is added only where same-named siblings exist.
func nodePath(nav xpath.NodeNavigator) string {
	var steps []string
	for nav.NodeType() == xpath.ElementNode {
		steps = append(steps, step(nav.Copy()))
		if !nav.MoveToParent() {
			break
		}
	}
	if len(steps) == 0 {
		return "/"
	}
	var b strings.Builder
	for i := len(steps) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(steps[i])
	}
	return b.String()
}

func step(nav xpath.NodeNavigator) string {
	name := nav.LocalName()
	if p := nav.Prefix(); p != "" {
		name = p + ":" + name
	}
	same := func(n xpath.NodeNavigator) bool {
		return n.NodeType() == xpath.ElementNode && n.LocalName() == nav.LocalName() && n.Prefix() == nav.Prefix()
	}

	index := 1
	prev := nav.Copy()
	for prev.MoveToPrevious() {
		if same(prev) {
			index++
		}
	}
	if index > 1 {
		return name + "[" + strconv.Itoa(index) + "]"
	}
	next := nav.Copy()
	for next.MoveToNext() {
		if same(next) {
			return name + "[1]"
		}
	}
	return name
}

func markup(nav xpath.NodeNavigator) string {
	switch n := nav.(type) {
	case *xmlquery.NodeNavigator:
		return n.Current().OutputXML(true)
	case *htmlquery.NodeNavigator:
		return htmlquery.OutputHTML(n.Current(), true)
	}
	return nav.Value()
}
