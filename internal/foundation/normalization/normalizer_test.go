package normalization

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type mode string

const (
	modeStatic mode = "static"
	modeRoutes mode = "routes"
)

func newModeNormalizer() *Normalizer[mode] {
	return NewNormalizer(map[string]mode{
		"static": modeStatic,
		"Routes": modeRoutes,
	}, modeStatic)
}

func TestNormalizer_Normalize(t *testing.T) {
	n := newModeNormalizer()

	tests := []struct {
		name  string
		input string
		want  mode
	}{
		{"exact match", "static", modeStatic},
		{"case insensitive", "ROUTES", modeRoutes},
		{"surrounding spaces", "  routes ", modeRoutes},
		{"unknown falls back", "spa", modeStatic},
		{"empty falls back", "", modeStatic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, n.Normalize(tt.input))
		})
	}
}

func TestNormalizer_NormalizeWithError(t *testing.T) {
	n := newModeNormalizer()

	got, err := n.NormalizeWithError("Routes")
	require.NoError(t, err)
	require.Equal(t, modeRoutes, got)

	got, err = n.NormalizeWithError("")
	require.NoError(t, err)
	require.Equal(t, modeStatic, got)

	_, err = n.NormalizeWithError("spa")
	require.Error(t, err)
	require.Contains(t, err.Error(), "[routes static]")
}

func TestNormalizer_ValidKeysIsACopy(t *testing.T) {
	n := newModeNormalizer()
	keys := n.ValidKeys()
	keys[0] = "mutated"
	require.Equal(t, []string{"routes", "static"}, n.ValidKeys())
}
