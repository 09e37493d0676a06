package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	r := New(Options{})

	out, err := r.Render([]byte("Buttons *emphasize* actions."))
	require.NoError(t, err)
	require.Equal(t, "<p>Buttons <em>emphasize</em> actions.</p>", out)

	out, err = r.Render([]byte("| a | b |\n|---|---|\n| 1 | 2 |\n"))
	require.NoError(t, err)
	require.Contains(t, out, "<table>")

	out, err = r.Render([]byte("<span class=\"x\">raw</span>"))
	require.NoError(t, err)
	require.Contains(t, out, `<span class="x">raw</span>`)
}

func TestRender_Inline(t *testing.T) {
	r := New(Options{Inline: true})

	out, err := r.Render([]byte("Use for `primary` actions"))
	require.NoError(t, err)
	require.Equal(t, "Use for <code>primary</code> actions", out)

	out, err = r.Render([]byte("one\n\ntwo"))
	require.NoError(t, err)
	require.Equal(t, "<p>one</p>\n<p>two</p>", out)
}

func TestRender_HeadingIDs(t *testing.T) {
	out, err := New(Options{HeadingIDs: true}).Render([]byte("# Getting Started\n"))
	require.NoError(t, err)
	require.Equal(t, `<h1 id="getting-started">Getting Started</h1>`, out)
}

func TestTitle(t *testing.T) {
	require.Equal(t, "Acme Styleguide", Title([]byte("intro\n\n# Acme *Styleguide*\n\n# Second\n")))
	require.Empty(t, Title([]byte("## Only level two\n")))
}
