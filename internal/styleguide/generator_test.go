package styleguide

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	foundationerrors "git.home.luguber.info/inful/kssbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/kssbuilder/internal/kss"
)

func testStyleguide() *kss.Styleguide {
	return kss.NewStyleguide([]*kss.Section{
		{Reference: "1", Header: "Typography", Description: "<p>Type scale.</p>"},
		{Reference: "1.1", Header: "Headings"},
		{
			Reference:   "2",
			Header:      "Buttons",
			Description: "<p>Use buttons for actions.</p>",
			Markup:      `<button class="{$modifiers}">Go</button>`,
			Deprecated:  true,
			Modifiers: []*kss.Modifier{
				{Name: ".primary", Description: "Main action", ClassName: "primary", Markup: `<button class="primary">Go</button>`},
			},
		},
		{Reference: "2.3.1", Header: "Icon buttons"},
		{Reference: "10", Header: "Utilities"},
	}, nil, nil)
}

func writeTemplate(t *testing.T, body string) *Template {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, TemplateFile), []byte(body), 0o600))
	tpl, err := LoadTemplate(dir)
	require.NoError(t, err)
	return tpl
}

func readPage(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestGenerate_StaticPages(t *testing.T) {
	out := t.TempDir()
	tpl, err := LoadTemplate("")
	require.NoError(t, err)

	gen, err := NewGenerator(testStyleguide(), tpl, Options{
		OutputDir: out,
		Argv:      map[string]string{"title": "Acme"},
		Build:     BuildInfo{Version: "1.2.3", Revision: "abc1234"},
	})
	require.NoError(t, err)

	report, err := gen.Generate(context.Background())
	require.NoError(t, err)
	require.Empty(t, report.Failures)
	require.Equal(t, []string{"1", "2", "10"}, report.Roots)
	require.Len(t, report.Pages, 3, "no overview means no index page")
	require.Nil(t, report.Overview)

	var paths []string
	for _, p := range report.Pages {
		paths = append(paths, p.Path)
		require.True(t, p.Written)
	}
	require.Equal(t, []string{"section-1.html", "section-2.html", "section-10.html"}, paths)
	require.NoFileExists(t, filepath.Join(out, "index.html"))

	page := readPage(t, filepath.Join(out, "section-2.html"))
	require.Contains(t, page, "<title>Acme - Buttons</title>")
	require.Contains(t, page, `id="section-2.3.1"`)
	require.Contains(t, page, "<p>Use buttons for actions.</p>")
	require.Contains(t, page, `<div class="kss-example primary"><button class="primary">Go</button></div>`)
	require.Contains(t, page, `<div class="kss-example"><button class="">Go</button></div>`)
	require.Contains(t, page, "&lt;button class=&#34;&#34;&gt;Go&lt;/button&gt;")
	require.Contains(t, page, "kss-deprecated")
	require.Contains(t, page, `<li class="kss-active"><a href="section-2.html">2. Buttons</a></li>`)
	require.Contains(t, page, `<a href="section-10.html">10. Utilities</a>`)
	require.Contains(t, page, "kssbuilder 1.2.3")
	require.NotContains(t, page, "Typography</h1>")
	require.NotContains(t, page, "Overview</a>")
}

func TestGenerate_IndexWithOverview(t *testing.T) {
	out := t.TempDir()
	overview := filepath.Join(t.TempDir(), "styleguide.md")
	require.NoError(t, os.WriteFile(overview, []byte("---\nowner: design\n---\n# Acme Styleguide\n\nWelcome.\n"), 0o600))

	tpl := writeTemplate(t, `{{if .Overview}}{{.Overview}}|{{index .OverviewMeta "title"}}|{{index .OverviewMeta "owner"}}|{{range .Sections}}{{.Reference}},{{end}}{{else}}{{.RootNumber}}:{{if .HasOverview}}linked{{end}}{{end}}`)
	gen, err := NewGenerator(testStyleguide(), tpl, Options{OutputDir: out, OverviewPath: overview})
	require.NoError(t, err)

	report, err := gen.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Pages, 4)
	require.Equal(t, PageIndex, report.Pages[3].Kind)
	require.NotNil(t, report.Overview)
	require.Equal(t, "owner: design\n", string(report.Overview.FrontMatter))

	index := readPage(t, filepath.Join(out, "index.html"))
	require.Equal(t, `<h1 id="acme-styleguide">Acme Styleguide</h1>
<p>Welcome.</p>|Acme Styleguide|design|1,2,10,`, index)
	require.Equal(t, "2:linked", readPage(t, filepath.Join(out, "section-2.html")))
}

func TestGenerate_ZeroSections(t *testing.T) {
	out := t.TempDir()
	tpl, err := LoadTemplate("")
	require.NoError(t, err)
	empty := kss.NewStyleguide(nil, nil, nil)

	gen, err := NewGenerator(empty, tpl, Options{OutputDir: out, OverviewPath: filepath.Join(out, "missing.md")})
	require.NoError(t, err)
	report, err := gen.Generate(context.Background())
	require.NoError(t, err)
	require.Empty(t, report.Roots)
	require.Empty(t, report.Pages)

	overview := filepath.Join(t.TempDir(), "styleguide.md")
	require.NoError(t, os.WriteFile(overview, []byte("# Empty\n"), 0o600))
	gen, err = NewGenerator(empty, tpl, Options{OutputDir: out, OverviewPath: overview})
	require.NoError(t, err)
	report, err = gen.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Pages, 1)
	require.Equal(t, "index.html", report.Pages[0].Path)
}

func TestGenerate_WriteFailureIsIsolated(t *testing.T) {
	out := t.TempDir()
	// a directory in place of the page file makes only root 2 unwritable
	require.NoError(t, os.MkdirAll(filepath.Join(out, "section-2.html", "blocker"), 0o755))
	tpl := writeTemplate(t, `{{.RootNumber}}`)

	gen, err := NewGenerator(testStyleguide(), tpl, Options{OutputDir: out, Concurrency: 3})
	require.NoError(t, err)
	report, err := gen.Generate(context.Background())
	require.NoError(t, err)

	require.True(t, report.Partial())
	require.Len(t, report.Failures, 1)
	require.Equal(t, "2", report.Failures[0].Root)
	require.Equal(t, "section-2.html", report.Failures[0].Path)
	require.True(t, foundationerrors.HasCategory(report.Failures[0].Err, foundationerrors.CategoryFileSystem))
	require.Equal(t, "1", readPage(t, filepath.Join(out, "section-1.html")))
	require.Equal(t, "10", readPage(t, filepath.Join(out, "section-10.html")))
}

func TestGenerate_RenderFailureIsIsolated(t *testing.T) {
	out := t.TempDir()
	tpl := writeTemplate(t, `{{if eq .RootNumber "10"}}{{(index .Sections 5).Header}}{{end}}ok`)

	gen, err := NewGenerator(testStyleguide(), tpl, Options{OutputDir: out})
	require.NoError(t, err)
	report, err := gen.Generate(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Failures, 1)
	require.Equal(t, "10", report.Failures[0].Root)
	require.True(t, foundationerrors.HasCategory(report.Failures[0].Err, foundationerrors.CategoryRender))
	require.Contains(t, report.Failures[0].Error(), "section page section-10.html (root 10)")
	require.Len(t, report.Pages, 2)
}

func TestGenerate_Deterministic(t *testing.T) {
	tpl, err := LoadTemplate("")
	require.NoError(t, err)
	render := func() map[string]string {
		out := t.TempDir()
		gen, err := NewGenerator(testStyleguide(), tpl, Options{
			OutputDir:   out,
			Concurrency: 4,
			Argv:        map[string]string{"b": "2", "a": "1"},
		})
		require.NoError(t, err)
		report, err := gen.Generate(context.Background())
		require.NoError(t, err)
		pages := map[string]string{}
		for _, p := range report.Pages {
			pages[p.Path] = readPage(t, filepath.Join(out, p.Path))
		}
		return pages
	}
	require.Equal(t, render(), render())
}

func TestGenerate_RoutesMode(t *testing.T) {
	out := t.TempDir()
	tpl := writeTemplate(t, `{{range roots}}{{pageFor .Number}} {{end}}`)

	gen, err := NewGenerator(testStyleguide(), tpl, Options{
		OutputDir: out,
		Paths:     PathScheme{Mode: ModeRoutes, Ext: "hbs"},
	})
	require.NoError(t, err)
	report, err := gen.Generate(context.Background())
	require.NoError(t, err)
	require.Empty(t, report.Failures)
	require.Equal(t, "section1 section2 section10 ", readPage(t, filepath.Join(out, "section2.hbs")))
	require.FileExists(t, filepath.Join(out, "section10.hbs"))
}

func TestGenerate_Canceled(t *testing.T) {
	tpl := writeTemplate(t, `x`)
	gen, err := NewGenerator(testStyleguide(), tpl, Options{OutputDir: t.TempDir()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := gen.Generate(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, report.Failures, 3)
}

func TestGenerateIndex_ExplicitRootSections(t *testing.T) {
	out := t.TempDir()
	overview := filepath.Join(t.TempDir(), "overview.md")
	require.NoError(t, os.WriteFile(overview, []byte("Hello"), 0o600))
	tpl := writeTemplate(t, `{{range .Sections}}{{.Header}};{{end}}`)
	sg := testStyleguide()

	gen, err := NewGenerator(sg, tpl, Options{OutputDir: out, OverviewPath: overview})
	require.NoError(t, err)
	roots, _ := CollectRoots(sg.All())
	page, err := gen.GenerateIndex(context.Background(), RootSections(sg.All(), roots), roots)
	require.NoError(t, err)
	require.NotNil(t, page)
	require.Equal(t, "Typography;Buttons;Utilities;", string(page.Content))

	gen, err = NewGenerator(sg, tpl, Options{OutputDir: out})
	require.NoError(t, err)
	page, err = gen.GenerateIndex(context.Background(), nil, roots)
	require.NoError(t, err)
	require.Nil(t, page)
}

func TestHelpers(t *testing.T) {
	tpl := writeTemplate(t, strings.Join([]string{
		`{{with section "2"}}{{.Header}}{{end}}`,
		`{{with section "9"}}missing{{else}}none{{end}}`,
		`{{range sections "2.x"}}{{.Reference}}{{end}}`,
		`{{range sections "*"}}{{if depthIs 1 .}}{{.Reference}}{{end}}{{end}}`,
		`{{with section "2"}}{{range modifiers .}}{{modifierMarkup .}}{{end}}{{end}}`,
		`{{with section "2"}}{{sectionMarkup .}}{{end}}`,
		`{{html "<b>raw</b>"}}`,
		`{{pageFor "10"}}`,
	}, "|"))

	out := t.TempDir()
	gen, err := NewGenerator(testStyleguide(), tpl, Options{OutputDir: out})
	require.NoError(t, err)
	page, err := gen.GeneratePage(context.Background(), nil, "1", []string{"1"})
	require.NoError(t, err)
	require.Equal(t, strings.Join([]string{
		"Buttons",
		"none",
		"",
		"1210",
		`<button class="primary">Go</button>`,
		`<button class="">Go</button>`,
		"<b>raw</b>",
		"section-10.html",
	}, "|"), string(page.Content))
}

func TestNewGenerator_TemplateParseError(t *testing.T) {
	tpl := &Template{Origin: "inline", Source: "{{ if }"}
	_, err := NewGenerator(testStyleguide(), tpl, Options{})
	require.Error(t, err)
	require.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryRender))
}

type skippingWriter struct{}

func (skippingWriter) WritePage(context.Context, string, Page) (bool, error) { return false, nil }

func TestGenerate_WriterCanSkip(t *testing.T) {
	tpl := writeTemplate(t, `x`)
	gen, err := NewGenerator(testStyleguide(), tpl, Options{OutputDir: t.TempDir(), Writer: skippingWriter{}})
	require.NoError(t, err)
	report, err := gen.Generate(context.Background())
	require.NoError(t, err)
	for _, p := range report.Pages {
		require.False(t, p.Written)
		require.Equal(t, "x", string(p.Content))
	}
}
