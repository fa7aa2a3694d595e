package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBuiltinPlugins(t *testing.T) {
	for _, name := range []string{"javascript", "typescript", "go"} {
		t.Run(name, func(t *testing.T) {
			p, err := Get(name)
			require.NoError(t, err)
			assert.Equal(t, name, p.Name())
			assert.NotEmpty(t, p.InputExtensions())
			assert.NotEmpty(t, p.OutputExtension())
		})
	}
}

func TestGetDefaultLanguage(t *testing.T) {
	p, err := Get(DefaultLanguage)
	require.NoError(t, err)
	assert.Equal(t, "javascript", p.Name())
}

func TestGetUnknownLanguage(t *testing.T) {
	_, err := Get("custom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"custom"`)
	assert.Contains(t, err.Error(), "relaygen-language-custom")
}

func TestNamesIncludesBuiltins(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "go")
	assert.Contains(t, names, "javascript")
	assert.Contains(t, names, "typescript")
}
