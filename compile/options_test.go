package compile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture builds a source tree with a schema file and returns base options
// that validate cleanly.
func fixture(t *testing.T) Options {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	schema := filepath.Join(root, "schema.graphql")
	require.NoError(t, os.WriteFile(schema, []byte("type Query { hello: String }\n"), 0o644))
	return Options{Schema: schema, Src: src, Watchman: true}
}

func TestValidateOptions(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *Options)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(o *Options) {},
		},
		{
			name:    "missing schema",
			mutate:  func(o *Options) { o.Schema = filepath.Join(o.Src, "nope.graphql") },
			wantErr: "does not exist",
		},
		{
			name:    "missing src",
			mutate:  func(o *Options) { o.Src = filepath.Join(o.Src, "nope") },
			wantErr: "does not exist",
		},
		{
			name:    "src is a file",
			mutate:  func(o *Options) { o.Src = o.Schema },
			wantErr: "does not exist",
		},
		{
			name:    "verbose and quiet",
			mutate:  func(o *Options) { o.Verbose = true; o.Quiet = true },
			wantErr: "mutually exclusive",
		},
		{
			name:    "watch without watchman",
			mutate:  func(o *Options) { o.Watch = true; o.Watchman = false },
			wantErr: "requires watchman",
		},
		{
			name:    "watch without root marker",
			mutate:  func(o *Options) { o.Watch = true },
			wantErr: "root marker",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := fixture(t)
			tt.mutate(&opts)
			err := opts.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateWatchWithRootMarker(t *testing.T) {
	opts := fixture(t)
	opts.Watch = true
	require.NoError(t, os.MkdirAll(filepath.Join(filepath.Dir(opts.Src), ".git"), 0o755))
	assert.NoError(t, opts.Validate())
}

func TestFindRootMarkerInAncestor(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".watchmanconfig"), []byte("{}"), 0o644))
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	dir, ok := findRootMarker(nested)
	require.True(t, ok)
	assert.Equal(t, root, dir)
}

func TestFindRootMarkerMissing(t *testing.T) {
	// A fresh temp dir has no marker; the walk must stop at the filesystem
	// root without finding one, unless an ancestor of TMPDIR carries a
	// marker, which no sane CI layout does.
	_, ok := findRootMarker(t.TempDir())
	assert.False(t, ok)
}

func TestArtifactDirDefaults(t *testing.T) {
	opts := Options{Src: "/work/app"}
	assert.Equal(t, filepath.Join("/work/app", "__generated__"), opts.artifactDir())
	assert.Equal(t, "__generated__", opts.artifactDirName())

	opts.ArtifactDirectory = "gen/artifacts"
	assert.Equal(t, filepath.Join("/work/app", "gen/artifacts"), opts.artifactDir())
	assert.Equal(t, "artifacts", opts.artifactDirName())
}

func TestWithDefaults(t *testing.T) {
	opts := Options{}.withDefaults()
	assert.Equal(t, "javascript", opts.Language)
	assert.Equal(t, []string{"**"}, opts.Include)
}
