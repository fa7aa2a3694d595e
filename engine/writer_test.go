package engine

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/validator"

	"github.com/apiplustech/relaygen/plugin"
)

const testSchema = `
type Query {
  hello: String
  me: User
}

type User {
  id: ID!
  name: String
}
`

func loadTestSchema(t *testing.T) *ast.Schema {
	t.Helper()
	schema, err := validator.LoadSchema(
		&ast.Source{Name: "scalars", Input: "scalar Int\nscalar Float\nscalar String\nscalar Boolean\nscalar ID\n", BuiltIn: true},
		&ast.Source{Name: "directives", Input: "directive @include(if: Boolean) on FRAGMENT_SPREAD | FIELD\ndirective @skip(if: Boolean) on FRAGMENT_SPREAD | FIELD\n", BuiltIn: true},
		&ast.Source{Name: "schema.graphql", Input: testSchema},
	)
	require.NoError(t, err)
	return schema
}

func newTestWriter(t *testing.T, dir string) ArtifactWriter {
	t.Helper()
	p, err := plugin.Get("javascript")
	require.NoError(t, err)
	return NewArtifactWriter(loadTestSchema(t), p, WriterOptions{
		ArtifactDir:      dir,
		FutureProofEnums: true,
	})
}

func discardReporter() Reporter {
	return NewReporter(io.Discard, false, true)
}

func TestWriterWritesArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "__generated__")
	w := newTestWriter(t, dir)
	docs := []RawDocument{{Text: "query HelloQuery { hello }", SourceFile: "app.js", Line: 1}}

	res, err := w.Write(context.Background(), docs, nil, false, discardReporter())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Written)
	assert.True(t, res.Changed())

	content, err := os.ReadFile(filepath.Join(dir, "HelloQuery.graphql.js"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "@generated")
	assert.Contains(t, string(content), "HelloQuery")

	// Identical rerun writes nothing.
	res, err = w.Write(context.Background(), docs, nil, false, discardReporter())
	require.NoError(t, err)
	assert.Equal(t, WriteResult{Unchanged: 1}, res)
	assert.False(t, res.Changed())
}

func TestWriterBaseDocumentsResolveFragments(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "__generated__")
	w := newTestWriter(t, dir)
	docs := []RawDocument{{Text: "query MeQuery { me { ...UserFields } }", SourceFile: "app.js", Line: 1}}
	base := []RawDocument{{Text: "fragment UserFields on User { id name }", SourceFile: "user.graphql", Line: 1}}

	res, err := w.Write(context.Background(), docs, base, false, discardReporter())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Written)
	assert.FileExists(t, filepath.Join(dir, "MeQuery.graphql.js"))
	assert.FileExists(t, filepath.Join(dir, "UserFields.graphql.js"))
}

func TestWriterStandaloneFragment(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "__generated__")
	w := newTestWriter(t, dir)
	base := []RawDocument{{Text: "fragment UserFields on User { id }", SourceFile: "user.graphql", Line: 1}}

	res, err := w.Write(context.Background(), nil, base, false, discardReporter())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Written)
}

func TestWriterValidateOnly(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "__generated__")
	w := newTestWriter(t, dir)
	docs := []RawDocument{{Text: "query HelloQuery { hello }", SourceFile: "app.js", Line: 1}}

	res, err := w.Write(context.Background(), docs, nil, true, discardReporter())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Written)
	assert.NoFileExists(t, filepath.Join(dir, "HelloQuery.graphql.js"))
}

func TestWriterRemovesStaleArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "__generated__")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	stale := filepath.Join(dir, "OldQuery.graphql.js")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0o644))
	// Files without the generated marker are left alone.
	kept := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(kept, []byte("keep"), 0o644))

	w := newTestWriter(t, dir)
	docs := []RawDocument{{Text: "query HelloQuery { hello }", SourceFile: "app.js", Line: 1}}
	res, err := w.Write(context.Background(), docs, nil, false, discardReporter())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted)
	assert.NoFileExists(t, stale)
	assert.FileExists(t, kept)
}

func TestWriterRejectsInvalidDocuments(t *testing.T) {
	w := newTestWriter(t, t.TempDir())
	docs := []RawDocument{{Text: "query BadQuery { nope }", SourceFile: "app.js", Line: 3}}

	_, err := w.Write(context.Background(), docs, nil, false, discardReporter())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestWriterRejectsUnknownArguments(t *testing.T) {
	// Only document validation catches a bogus argument; type generation
	// never looks at arguments.
	w := newTestWriter(t, t.TempDir())
	docs := []RawDocument{{Text: "query BadArgs { hello(bogus: 1) }", SourceFile: "app.js", Line: 1}}

	_, err := w.Write(context.Background(), docs, nil, false, discardReporter())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, err.Error(), "bogus")
}

func TestWriterRejectsUnusedVariables(t *testing.T) {
	// Unused fragments are tolerated, unused variables are not.
	w := newTestWriter(t, t.TempDir())
	docs := []RawDocument{{Text: "query Unused($id: ID!) { hello }", SourceFile: "app.js", Line: 1}}

	_, err := w.Write(context.Background(), docs, nil, false, discardReporter())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, err.Error(), "$id")
}

func TestWriterRejectsAnonymousOperations(t *testing.T) {
	w := newTestWriter(t, t.TempDir())
	docs := []RawDocument{{Text: "{ hello }", SourceFile: "app.js", Line: 1}}

	_, err := w.Write(context.Background(), docs, nil, false, discardReporter())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anonymous operations")
}

func TestWriterRejectsDuplicateNames(t *testing.T) {
	w := newTestWriter(t, t.TempDir())
	docs := []RawDocument{{Text: "query Dup { hello }", SourceFile: "a.js", Line: 1}}
	base := []RawDocument{{Text: "fragment Dup on User { id }", SourceFile: "b.graphql", Line: 1}}

	_, err := w.Write(context.Background(), docs, base, false, discardReporter())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate document name")
}

func TestIsGeneratedName(t *testing.T) {
	assert.True(t, IsGeneratedName("AppQuery.graphql.js", "js"))
	assert.False(t, IsGeneratedName("AppQuery.js", "js"))
	assert.False(t, IsGeneratedName("AppQuery.graphql.ts", "js"))
	assert.False(t, IsGeneratedName(".graphql.js", "js"))
}
