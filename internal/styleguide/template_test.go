package styleguide

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadTemplate_Embedded(t *testing.T) {
	tpl, err := LoadTemplate("")
	require.NoError(t, err)
	require.Equal(t, "embedded", tpl.Origin)
	require.Contains(t, tpl.Source, "kss-main")

	less, err := fs.ReadFile(tpl.Public, "kss.less")
	require.NoError(t, err)
	require.Contains(t, string(less), `@import "kss-layout.css";`)
}

func TestLoadTemplate_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, TemplateFile), []byte("{{.RootNumber}}"), 0o600))

	tpl, err := LoadTemplate(dir)
	require.NoError(t, err)
	require.Equal(t, dir, tpl.Origin)
	require.Nil(t, tpl.Public)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "public"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "public", "kss.less"), []byte("a{}"), 0o600))
	tpl, err = LoadTemplate(dir)
	require.NoError(t, err)
	require.NotNil(t, tpl.Public)
	data, err := fs.ReadFile(tpl.Public, "kss.less")
	require.NoError(t, err)
	require.Equal(t, "a{}", string(data))
}

func TestLoadTemplate_MissingIndex(t *testing.T) {
	_, err := LoadTemplate(t.TempDir())
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestPathScheme(t *testing.T) {
	static := PathScheme{Mode: ModeStatic}
	require.Equal(t, "section-4.html", static.SectionFile("4"))
	require.Equal(t, "index.html", static.IndexFile())
	require.Equal(t, "section-4.html", static.Link("4"))
	require.Equal(t, "index.html", static.Link(""))

	routes := PathScheme{Mode: ModeRoutes, Ext: ".hbs"}
	require.Equal(t, "section4.hbs", routes.SectionFile("4"))
	require.Equal(t, "index.hbs", routes.IndexFile())
	require.Equal(t, "section4", routes.Route("4"))
	require.Equal(t, "section4", routes.Link("4"))
	require.Equal(t, "index", routes.Link(""))
}
