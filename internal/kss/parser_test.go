package kss

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const buttonsLess = `
// Buttons
//
// Use buttons for *primary* actions.
//
// Deprecated: use .action instead.
//
// .primary       - The main call to action
// .primary.large - A bigger one that spans
//   two lines of description
// :hover         - Highlight on hover
//
// Markup: <button class="btn {$modifiers}">Go</button>
//
// Styleguide 2.1.
.btn { color: red; }

/*
 * Forms
 *
 * Experimental: layout may change.
 *
 * Styleguide 3.0
 */

/* No styleguide reference. */

// Helpers
//
// No styleguide reference.

// Broken
//
// Styleguide buttons.primary
`

func TestParse(t *testing.T) {
	sections, warnings, err := Parse([]byte(buttonsLess), "buttons.less", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, sections, 2)

	buttons := sections[0]
	require.Equal(t, "2.1", buttons.Reference)
	require.Equal(t, "Buttons", buttons.Header)
	require.Equal(t, 2, buttons.Depth())
	require.Equal(t, "2", buttons.Root())
	require.True(t, buttons.Deprecated)
	require.False(t, buttons.Experimental)
	require.Contains(t, buttons.Description, "<em>primary</em>")
	require.Contains(t, buttons.Description, "Deprecated: use .action instead.")
	require.Equal(t, `<button class="btn {$modifiers}">Go</button>`, buttons.Markup)
	require.Equal(t, `<button class="btn ">Go</button>`, buttons.RenderedMarkup())
	require.Equal(t, "buttons.less", buttons.File)
	require.Equal(t, 2, buttons.Line)

	require.Len(t, buttons.Modifiers, 3)
	require.Equal(t, ".primary", buttons.Modifiers[0].Name)
	require.Equal(t, "primary", buttons.Modifiers[0].ClassName)
	require.Equal(t, `<button class="btn primary">Go</button>`, buttons.Modifiers[0].Markup)
	require.Equal(t, "primary large", buttons.Modifiers[1].ClassName)
	require.Equal(t, "A bigger one that spans two lines of description", buttons.Modifiers[1].Description)
	require.Equal(t, "pseudo-class-hover", buttons.Modifiers[2].ClassName)

	forms := sections[1]
	require.Equal(t, "3", forms.Reference)
	require.Equal(t, "Forms", forms.Header)
	require.True(t, forms.Experimental)
	require.Empty(t, forms.Modifiers)

	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, `"buttons.primary"`)
	require.Equal(t, "buttons.less", warnings[0].File)
}

func TestParse_PlainTextDescriptions(t *testing.T) {
	src := "// Alerts\n//\n// Use <b> sparingly & *carefully*.\n//\n// .error - Red <alert>\n//\n// Styleguide 4\n"
	opts := DefaultOptions()
	opts.Markdown = false

	sections, _, err := Parse([]byte(src), "alerts.css", opts)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	require.Equal(t, "<p>Use &lt;b&gt; sparingly &amp; *carefully*.</p>", sections[0].Description)
	require.Equal(t, "Red &lt;alert&gt;", sections[0].Modifiers[0].Description)
	require.Empty(t, sections[0].Modifiers[0].Markup)
}

func TestParse_MultilineDisabled(t *testing.T) {
	src := "/*\nForms\n\nStyleguide 3\n*/\n"
	opts := DefaultOptions()
	opts.Multiline = false

	sections, _, err := Parse([]byte(src), "forms.css", opts)
	require.NoError(t, err)
	require.Empty(t, sections)
}

func TestParse_BlockWithoutGutter(t *testing.T) {
	src := "/* Tables\n\n   Markup:\n   <table>\n     <tr></tr>\n   </table>\n\n   Styleguide 5.2.0 */\n"

	sections, _, err := Parse([]byte(src), "tables.css", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, sections, 1)
	require.Equal(t, "5.2", sections[0].Reference)
	require.Equal(t, "Tables", sections[0].Header)
	require.Equal(t, "<table>\n  <tr></tr>\n</table>", sections[0].Markup)
}

func TestParse_Docblock(t *testing.T) {
	src := `/**
 * Buttons
 *
 * .primary - The main call to action
 * .danger  - Destructive actions
 *
 * Styleguide 1
 **/

/** Badges
 *
 * Styleguide 2 */

/***/
`
	sections, warnings, err := Parse([]byte(src), "buttons.css", DefaultOptions())
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Len(t, sections, 2)

	buttons := sections[0]
	require.Equal(t, "1", buttons.Reference)
	require.Equal(t, "Buttons", buttons.Header)
	require.Empty(t, buttons.Description)
	require.Len(t, buttons.Modifiers, 2)
	require.Equal(t, ".primary", buttons.Modifiers[0].Name)
	require.Equal(t, "danger", buttons.Modifiers[1].ClassName)

	badges := sections[1]
	require.Equal(t, "2", badges.Reference)
	require.Equal(t, "Badges", badges.Header)
}

func TestParse_ReferenceOnlyBlock(t *testing.T) {
	sections, _, err := Parse([]byte("// Styleguide 7\n"), "x.css", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, sections, 1)
	require.Equal(t, "7", sections[0].Reference)
	require.Empty(t, sections[0].Header)
	require.Empty(t, sections[0].Description)
}

func TestNormalizeReference(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{"2", "2", true},
		{"2.", "2", true},
		{"2.0.", "2", true},
		{"2.1.0", "2.1", true},
		{"10.20", "10.20", true},
		{"0", "0", true},
		{"a.1", "a.1", false},
		{"", "", false},
		{"1..2", "1..2", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeReference(tt.in)
		require.Equal(t, tt.want, got, tt.in)
		require.Equal(t, tt.valid, ok, tt.in)
	}
}

func TestCompareReferences(t *testing.T) {
	require.Negative(t, CompareReferences("2", "10"))
	require.Negative(t, CompareReferences("2", "2.1"))
	require.Negative(t, CompareReferences("2.9", "2.10"))
	require.Positive(t, CompareReferences("3", "2.9"))
	require.Zero(t, CompareReferences("1.2", "1.2"))
	require.Negative(t, CompareReferences("9", "a"))
}

func TestClassName(t *testing.T) {
	require.Equal(t, "primary", ClassName(".primary"))
	require.Equal(t, "primary large", ClassName(".primary.large"))
	require.Equal(t, "pseudo-class-hover", ClassName(":hover"))
	require.Equal(t, "primary pseudo-class-focus", ClassName(".primary:focus"))
	require.Equal(t, "[disabled]", ClassName("[disabled]"))
}
