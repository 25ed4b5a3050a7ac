package parser

import "strings"

// StripQuotes removes one pair of matching single or double quotes
// enclosing the whole of text. Text holding more than one quoted part is
// returned unchanged.
func StripQuotes(text string) string {
	if len(text) < 2 {
		return text
	}
	q := text[0]
	if q != '\'' && q != '"' {
		return text
	}
	inner := text[1 : len(text)-1]
	if text[len(text)-1] != q || strings.IndexByte(inner, q) >= 0 {
		return text
	}
	return inner
}

// SplitArgs splits a command line on whitespace. Quoted parts are kept
// together with their quotes, use StripQuotes to remove them.
func SplitArgs(line string) []string {
	var (
		args  []string
		cur   strings.Builder
		quote rune
		inArg bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
			inArg = true
			cur.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			inArg = true
			cur.WriteRune(r)
		}
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args
}
