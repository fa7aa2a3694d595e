package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apiplustech/relaygen/plugin"
)

func TestTagParser(t *testing.T) {
	p, err := plugin.Get("javascript")
	require.NoError(t, err)

	parser := NewTagParser(p)
	docs, err := parser.Parse("home.js", []byte("const q = graphql`query HomeQuery { hello }`;\n"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "query HomeQuery { hello }", docs[0].Text)
	assert.Equal(t, "home.js", docs[0].SourceFile)
	assert.Equal(t, 1, docs[0].Line)
}

func TestTagParserNoTags(t *testing.T) {
	p, err := plugin.Get("javascript")
	require.NoError(t, err)

	docs, err := NewTagParser(p).Parse("util.js", []byte("module.exports = 1;\n"))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSDLParser(t *testing.T) {
	docs, err := NewSDLParser().Parse("user.graphql", []byte("fragment UserFields on User { id }\n"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "fragment UserFields on User { id }\n", docs[0].Text)
	assert.Equal(t, 1, docs[0].Line)
}
