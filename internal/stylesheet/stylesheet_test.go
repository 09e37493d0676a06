package stylesheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	}
	return dir
}

func TestCompile_InlinesImports(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"kss.less":         "@import \"base\";\n@import url(parts/print.css) print;\n@import 'https://fonts.example.com/x.css';\n.kss { color: red; }\n",
		"base.less":        "@import \"parts/reset.css\";\nbody { margin: 0; }\n",
		"parts/reset.css":  "* { box-sizing: border-box; }\n",
		"parts/print.css":  "nav { display: none; }\n",
		"parts/unused.css": "unused { }\n",
	})

	res, err := Compile(filepath.Join(dir, "kss.less"), Options{})
	require.NoError(t, err)
	require.Equal(t, "* { box-sizing: border-box; }\nbody { margin: 0; }\n@media print {\nnav { display: none; }\n}\n@import 'https://fonts.example.com/x.css';\n.kss { color: red; }\n", string(res.CSS))
	require.Len(t, res.Sources, 4)
	require.Equal(t, filepath.Join(dir, "kss.less"), res.Sources[0])
}

func TestCompile_Minify(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"kss.css": "@import \"a.css\";\n.b {\n  color: #ff0000;\n}\n",
		"a.css":   ".a {\n  margin: 0px;\n}\n",
	})
	res, err := Compile(filepath.Join(dir, "kss.css"), Options{Minify: true})
	require.NoError(t, err)
	require.Equal(t, ".a{margin:0}.b{color:red}", string(res.CSS))
}

func TestCompile_ImportOnce(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"kss.css":    "@import \"a.css\";\n@import \"b.css\";\n",
		"a.css":      "@import \"shared.css\";\n.a{}\n",
		"b.css":      "@import \"shared.css\";\n.b{}\n",
		"shared.css": ".shared{}\n",
	})
	res, err := Compile(filepath.Join(dir, "kss.css"), Options{})
	require.NoError(t, err)
	require.Equal(t, ".shared{}\n.a{}\n\n.b{}\n", string(res.CSS))
}

func TestCompile_Errors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"cycle-a.css":  "@import \"cycle-b.css\";\n",
		"cycle-b.css":  "@import \"cycle-a.css\";\n",
		"missing.less": "@import \"nowhere\";\n",
	})

	_, err := Compile(filepath.Join(dir, "cycle-a.css"), Options{})
	require.ErrorContains(t, err, "import cycle")

	_, err = Compile(filepath.Join(dir, "missing.less"), Options{})
	require.ErrorContains(t, err, `import "nowhere" not found`)

	_, err = Compile(filepath.Join(dir, "absent.less"), Options{})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestCompile_IncludePaths(t *testing.T) {
	lib := writeFiles(t, map[string]string{"vendor.css": ".v{}\n"})
	dir := writeFiles(t, map[string]string{"kss.css": "@import \"vendor.css\";\n"})

	res, err := Compile(filepath.Join(dir, "kss.css"), Options{IncludePaths: []string{lib}})
	require.NoError(t, err)
	require.Equal(t, ".v{}\n", string(res.CSS))
}
