// Package sanitize reduces an HTML page to its bare element structure and text.
package sanitize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

// Denylist holds the elements removed together with their subtree.
const Denylist = "script, img, svg"

// EmptyDocument is what an unparseable input sanitizes to.
const EmptyDocument = "<html><head></head><body></body></html>"

type Sanitizer struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Sanitizer {
	return &Sanitizer{log: log.With().Str("component", "sanitizer").Logger()}
}

// Sanitize parses raw as an HTML document, removes every denylisted element
// and strips all attributes from the remaining elements. It never fails: the
// parser is lenient, and anything it cannot make sense of yields EmptyDocument.
func (s *Sanitizer) Sanitize(raw string) string {
	// With scripting disabled, <noscript> content is parsed as elements
	// instead of raw text, so it is sanitized like the rest of the page.
	root, err := html.ParseWithOptions(strings.NewReader(raw), html.ParseOptionEnableScripting(false))
	if err != nil {
		s.log.Warn().Err(err).Msg("HTML parse failed, returning empty document")
		return EmptyDocument
	}
	doc := goquery.NewDocumentFromNode(root)

	removed := doc.Find(Denylist)
	dropped := removed.Length()
	removed.Remove()

	stripped := 0
	for _, n := range doc.Nodes {
		stripped += stripAttributes(n)
	}

	out, err := doc.Html()
	if err != nil {
		s.log.Warn().Err(err).Msg("HTML render failed, returning empty document")
		return EmptyDocument
	}

	s.log.Debug().
		Int("removed_elements", dropped).
		Int("stripped_attributes", stripped).
		Int("in_bytes", len(raw)).
		Int("out_bytes", len(out)).
		Msg("HTML sanitized")
	return out
}

// stripAttributes clears attributes on n and every element below it and
// returns how many were dropped.
func stripAttributes(n *html.Node) int {
	count := 0
	if n.Type == html.ElementNode {
		count = len(n.Attr)
		n.Attr = nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count += stripAttributes(c)
	}
	return count
}
