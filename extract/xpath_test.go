package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXMLEvaluator(t *testing.T) {
	tc := []struct {
		expression string
		result     Result
	}{
		{"/store/book[2]/title", Result{"/store/book[2]/title": "<title>Book 2</title>\n"}},
		{"//title/text()", Result{
			"/store/book[1]/title": "Book 1",
			"/store/book[2]/title": "Book 2",
		}},
		{"//book/@id", Result{
			"/store/book[1]": "1",
			"/store/book[2]": "2",
		}},
		// Both attributes of the first book share its path, only the last is kept.
		{"/store/book[1]/@*", Result{"/store/book[1]": "en"}},
		{"count(//book)", Result{"count(//book)": float64(2)}},
		{"boolean(//book[@id='3'])", Result{"boolean(//book[@id='3'])": false}},
		{"string(//book[1]/title)", Result{"string(//book[1]/title)": "Book 1"}},
		{"//magazine", Result{}},
	}
	for _, c := range tc {
		res, err := XMLEvaluator{}.Evaluate([]byte(storeXML), c.expression)
		require.NoError(t, err, c.expression)
		assert.Equal(t, c.result, res, c.expression)
	}
}

func TestXMLEvaluatorEmptyBody(t *testing.T) {
	res, err := XMLEvaluator{}.Evaluate([]byte("  \n"), "//a")
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestHTMLEvaluator(t *testing.T) {
	body := []byte(`<html><body><p class="x">one<p>two<ul><li>a</li><li>b</li></ul>`)

	res, err := HTMLEvaluator{}.Evaluate(body, "//li[2]")
	require.NoError(t, err)
	assert.Equal(t, Result{"/html/body/ul/li[2]": "<li>b</li>\n"}, res)

	res, err = HTMLEvaluator{}.Evaluate(body, "//p/@class")
	require.NoError(t, err)
	assert.Equal(t, Result{"/html/body/p[1]": "x"}, res)

	res, err = HTMLEvaluator{}.Evaluate(body, "count(//p)")
	require.NoError(t, err)
	assert.Equal(t, Result{"count(//p)": float64(2)}, res)
}

func TestHTMLEvaluatorEmptyBody(t *testing.T) {
	res, err := HTMLEvaluator{}.Evaluate(nil, "//p")
	require.NoError(t, err)
	assert.Empty(t, res)
}
