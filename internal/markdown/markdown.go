// Package markdown renders documentation text (section descriptions and the
// overview page) to HTML with goldmark.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Options controls the goldmark pipeline.
type Options struct {
	// HeadingIDs adds id attributes to headings (overview page anchors).
	HeadingIDs bool
	// Inline strips a single wrapping <p> element, for one-line modifier descriptions.
	Inline bool
}

// Renderer converts markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md   goldmark.Markdown
	opts Options
}

// New builds a renderer. Raw HTML in the source is passed through, since
// style comments routinely embed markup.
func New(opts Options) *Renderer {
	parserOpts := []parser.Option{}
	if opts.HeadingIDs {
		parserOpts = append(parserOpts, parser.WithAutoHeadingID())
	}
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parserOpts...),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &Renderer{md: md, opts: opts}
}

// Render converts src to HTML.
func (r *Renderer) Render(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return "", err
	}
	out := strings.TrimSpace(buf.String())
	if r.opts.Inline {
		out = unwrapParagraph(out)
	}
	return out, nil
}

// Title returns the text of the first level-one heading in src, or "".
func Title(src []byte) string {
	root := goldmark.New().Parser().Parse(text.NewReader(src))
	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if h, ok := n.(*gmast.Heading); ok && h.Level == 1 {
			title = headingText(h, src)
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	return title
}

func headingText(n gmast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*gmast.Text); ok {
			b.Write(t.Segment.Value(src))
			continue
		}
		b.WriteString(headingText(c, src))
	}
	return b.String()
}

func unwrapParagraph(s string) string {
	if strings.HasPrefix(s, "<p>") && strings.HasSuffix(s, "</p>") && strings.Count(s, "<p>") == 1 {
		return s[len("<p>") : len(s)-len("</p>")]
	}
	return s
}
