package sanitize

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

var samples = []string{
	`<html><body><script>alert(1)</script><p class="x" onclick="y">Hi</p></body></html>`,
	`<!DOCTYPE html><html lang="en"><head><title>T</title><style id="s">p{}</style></head><body><div id="a"><img src="x.png" alt="x"><a href="/y" target="_blank">link</a></div></body></html>`,
	`<div><svg width="10"><circle r="4"></circle><script>x()</script></svg><span style="color:red">kept</span></div>`,
	`<p>unclosed <b data-x="1">bold<i>italic`,
	`<table border="1"><tr><td colspan="2">cell</td></tr></table><script src="a.js"></script>`,
	`plain text with no tags at all`,
	``,
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func TestSanitizeScenario(t *testing.T) {
	s := New(zerolog.Nop())
	got := s.Sanitize(`<html><body><script>alert(1)</script><p class="x" onclick="y">Hi</p></body></html>`)
	assert.Equal(t, `<html><head></head><body><p>Hi</p></body></html>`, got)
}

func TestSanitizeRemovesDenylistAndAttributes(t *testing.T) {
	s := New(zerolog.Nop())
	for _, in := range samples {
		out := s.Sanitize(in)
		doc, err := html.Parse(strings.NewReader(out))
		require.NoError(t, err)

		walk(doc, func(n *html.Node) {
			if n.Type != html.ElementNode {
				return
			}
			assert.NotContains(t, []string{"script", "img", "svg"}, n.Data, "input %q", in)
			assert.Empty(t, n.Attr, "element <%s> kept attributes for input %q", n.Data, in)
		})
	}
}

func TestSanitizePreservesTextAndNesting(t *testing.T) {
	s := New(zerolog.Nop())
	out := s.Sanitize(`<div class="a"><ul><li id="1">one</li><li>two <em style="x">three</em></li></ul></div>`)
	assert.Equal(t, `<html><head></head><body><div><ul><li>one</li><li>two <em>three</em></li></ul></div></body></html>`, out)
}

func TestSanitizeIdempotent(t *testing.T) {
	s := New(zerolog.Nop())
	for _, in := range samples {
		once := s.Sanitize(in)
		assert.Equal(t, once, s.Sanitize(once), "input %q", in)
	}
}

func TestSanitizeEmptyInput(t *testing.T) {
	s := New(zerolog.Nop())
	assert.Equal(t, EmptyDocument, s.Sanitize(""))
}

func TestSanitizeNoscriptContent(t *testing.T) {
	s := New(zerolog.Nop())
	out := s.Sanitize(`<html><body><noscript><img src=x onerror="alert(1)"><p class="a">fallback</p></noscript></body></html>`)

	assert.Equal(t, `<html><head></head><body><noscript><p>fallback</p></noscript></body></html>`, out)
	assert.NotContains(t, out, "img")
	assert.NotContains(t, out, "onerror")
}

