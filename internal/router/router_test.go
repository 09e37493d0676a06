package router

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const emberRouter = `import EmberRouter from '@ember/routing/router';

const Router = EmberRouter.extend({});

Router.map(function() {
  this.route('about');
});

export default Router;
`

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "router.js")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRegister_InsertsOnce(t *testing.T) {
	path := writeManifest(t, emberRouter)

	added, err := Register(path, "section2", Options{})
	require.NoError(t, err)
	require.True(t, added)

	added, err = Register(path, "section2", Options{})
	require.NoError(t, err)
	require.False(t, added)

	added, err = Register(path, "section10", Options{})
	require.NoError(t, err)
	require.True(t, added)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `import EmberRouter from '@ember/routing/router';

const Router = EmberRouter.extend({});

Router.map(function() {
  this.route('section10');
  this.route('section2');
  this.route('about');
});

export default Router;
`, string(data))
}

func TestRegister_CustomFormat(t *testing.T) {
	path := writeManifest(t, "routes:\r\n  - home\r\n")

	added, err := Register(path, "index", Options{Anchor: "routes:", LineFormat: "  - %s"})
	require.NoError(t, err)
	require.True(t, added)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "routes:\r\n  - index\r\n  - home\r\n", string(data))
}

func TestRegister_Errors(t *testing.T) {
	path := writeManifest(t, "export default {};\n")

	_, err := Register(path, "section1", Options{})
	require.ErrorIs(t, err, ErrAnchorNotFound)

	_, err = Register(path, "../evil", Options{})
	require.ErrorContains(t, err, "invalid route name")

	_, err = Register(filepath.Join(t.TempDir(), "missing.js"), "section1", Options{})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteStub(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "routes")

	written, err := WriteStub(dir, "section2", Options{})
	require.NoError(t, err)
	require.True(t, written)
	data, err := os.ReadFile(filepath.Join(dir, "section2.js"))
	require.NoError(t, err)
	require.Equal(t, DefaultStub, string(data))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "section2.js"), []byte("custom"), 0o644))
	written, err = WriteStub(dir, "section2", Options{})
	require.NoError(t, err)
	require.False(t, written)
	data, err = os.ReadFile(filepath.Join(dir, "section2.js"))
	require.NoError(t, err)
	require.Equal(t, "custom", string(data))
}
