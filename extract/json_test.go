package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeJSONPath(t *testing.T) {
	tc := []struct {
		input, output string
	}{
		{"", "$"},
		{"$", "$"},
		{"$.a", "$.a"},
		{".a", "$.a"},
		{"..a", "$..a"},
		{"a.b", "$.a.b"},
		{"[0]", "$.[0]"},
	}
	for _, c := range tc {
		assert.Equal(t, c.output, NormalizeJSONPath(c.input), c.input)
	}
}

func TestJSONEvaluator(t *testing.T) {
	tc := []struct {
		expression string
		result     Result
	}{
		{"$.store.book[1].title", Result{"store.book.[1].title": "Book 2"}},
		{"store.book.[1].title", Result{"store.book.[1].title": "Book 2"}},
		{".store.book[0].title", Result{"store.book.[0].title": "Book 1"}},
		{"store.book[*].title", Result{
			"store.book.[0].title": "Book 1",
			"store.book.[1].title": "Book 2",
		}},
		{"$..title", Result{
			"store.book.[0].title": "Book 1",
			"store.book.[1].title": "Book 2",
		}},
		{"store.book[0]", Result{"store.book.[0]": map[string]any{"title": "Book 1"}}},
		{"store.missing", Result{}},
	}
	for _, c := range tc {
		res, err := JSONEvaluator{}.Evaluate([]byte(storeJSON), c.expression)
		require.NoError(t, err, c.expression)
		assert.Equal(t, c.result, res, c.expression)
	}
}

func TestJSONEvaluatorRoot(t *testing.T) {
	for _, expression := range []string{"", "$"} {
		res, err := JSONEvaluator{}.Evaluate([]byte(`{"a": [1, true, null]}`), expression)
		require.NoError(t, err)
		assert.Equal(t, Result{"$": map[string]any{"a": []any{int64(1), true, nil}}}, res)
	}
}

func TestJSONEvaluatorErrors(t *testing.T) {
	_, err := JSONEvaluator{}.Evaluate([]byte("not json"), "$")
	assert.Error(t, err)

	_, err = JSONEvaluator{}.Evaluate([]byte("{}"), "$.a[")
	assert.Error(t, err)
}
