package compile

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apiplustech/relaygen/engine"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name         string
		result       engine.Result
		onlyValidate bool
		want         int
	}{
		{"success", engine.ResultSuccess, false, ExitSuccess},
		{"no changes", engine.ResultNoChanges, false, ExitSuccess},
		{"engine error", engine.ResultError, false, ExitEngineError},
		{"validate pending", engine.ResultSuccess, true, ExitValidateChanged},
		{"validate clean", engine.ResultNoChanges, true, ExitSuccess},
		{"validate error", engine.ResultError, true, ExitEngineError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.result, tt.onlyValidate))
		})
	}
}

// endToEndTree builds a project: a schema, a page with an embedded query
// spreading a fragment from a standalone .graphql file, and an excluded
// file that would fail to parse if it were ever picked up.
func endToEndTree(t *testing.T) Options {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "src")

	write := func(rel, content string) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("schema.graphql", `
type Query {
  hello: String
  me: User
}

type User {
  id: ID!
  name: String
}
`)
	write("src/pages/home.js",
		"const homeQuery = graphql`query HomeQuery { hello me { ...UserFields } }`;\n")
	write("src/fragments/user.graphql",
		"fragment UserFields on User { id name }\n")
	write("src/skip/broken.js",
		"const broken = graphql`query {{{`;\n")

	return Options{
		Schema:  filepath.Join(root, "schema.graphql"),
		Src:     src,
		Exclude: []string{"skip/**"},
	}
}

func TestRunEndToEnd(t *testing.T) {
	opts := endToEndTree(t)
	ctx := context.Background()

	result, err := Run(ctx, opts, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, engine.ResultSuccess, result)
	assert.Equal(t, ExitSuccess, ExitCode(result, false))

	genDir := filepath.Join(opts.Src, "__generated__")
	assert.FileExists(t, filepath.Join(genDir, "HomeQuery.graphql.js"))
	assert.FileExists(t, filepath.Join(genDir, "UserFields.graphql.js"))

	content, err := os.ReadFile(filepath.Join(genDir, "HomeQuery.graphql.js"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "@generated")
	assert.Contains(t, string(content), "HomeQuery")

	// A rerun with nothing modified writes nothing.
	result, err = Run(ctx, opts, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, engine.ResultNoChanges, result)
}

func TestRunValidateOnlyReportsPendingChanges(t *testing.T) {
	opts := endToEndTree(t)
	ctx := context.Background()

	result, err := Run(ctx, opts, io.Discard)
	require.NoError(t, err)
	require.Equal(t, engine.ResultSuccess, result)

	about := filepath.Join(opts.Src, "pages", "about.js")
	require.NoError(t, os.WriteFile(about,
		[]byte("const aboutQuery = graphql`query AboutQuery { hello }`;\n"), 0o644))

	opts.OnlyValidate = true
	result, err = Run(ctx, opts, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, engine.ResultSuccess, result)
	assert.Equal(t, ExitValidateChanged, ExitCode(result, true))
	assert.NoFileExists(t, filepath.Join(opts.Src, "__generated__", "AboutQuery.graphql.js"))
}

func TestRunUnknownLanguage(t *testing.T) {
	opts := endToEndTree(t)
	opts.Language = "custom"

	_, err := Run(context.Background(), opts, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relaygen-language-custom")
}

func TestRunInvalidOptions(t *testing.T) {
	opts := endToEndTree(t)
	opts.Verbose = true
	opts.Quiet = true

	_, err := Run(context.Background(), opts, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}
