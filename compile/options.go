package compile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apiplustech/relaygen/plugin"
)

// DefaultArtifactDirectory is the directory name artifacts are written to
// when the caller does not choose one.
const DefaultArtifactDirectory = "__generated__"

// rootMarkers are the filenames whose presence marks a repository root.
// Watch mode needs one in the source directory or an ancestor so the watch
// service has a stable project root.
var rootMarkers = []string{".git", ".hg", ".watchmanconfig"}

// Options is the full configuration of one run. Zero values mean "use the
// default"; Validate must pass before the options are used.
type Options struct {
	// Schema is the path to the schema file, .graphql SDL or introspection
	// .json.
	Schema string
	// Src is the root directory scanned for source files and standalone
	// .graphql documents.
	Src string
	// Extensions are the source file extensions to scan, without dots.
	// Defaults to the language plugin's input extensions.
	Extensions []string
	// Include and Exclude are glob patterns relative to Src.
	Include []string
	Exclude []string

	Verbose bool
	Quiet   bool
	// Watch keeps the run alive, recompiling on file changes. Requires
	// Watchman.
	Watch bool
	// Watchman enables use of the watchman service when it is available.
	Watchman bool
	// OnlyValidate reports pending artifact changes without writing them.
	OnlyValidate bool
	// NoFutureProofEnums disables the catch-all member added to generated
	// enum types.
	NoFutureProofEnums bool

	// Language selects the language plugin. Defaults to javascript.
	Language string
	// ArtifactDirectory overrides the default artifact directory name or
	// path, relative to Src unless absolute.
	ArtifactDirectory string
	// CustomScalars maps schema scalar names to target-language type names.
	CustomScalars map[string]string
}

// withDefaults fills unset options from their defaults. Extension defaults
// depend on the resolved plugin and are applied in Run.
func (o Options) withDefaults() Options {
	if o.Language == "" {
		o.Language = plugin.DefaultLanguage
	}
	if len(o.Include) == 0 {
		o.Include = []string{"**"}
	}
	return o
}

// Validate checks paths and flag combinations. It has no side effects and
// reports the first problem found.
func (o *Options) Validate() error {
	if o.Verbose && o.Quiet {
		return fmt.Errorf("--verbose and --quiet are mutually exclusive")
	}
	if o.Schema == "" {
		return fmt.Errorf("--schema is required")
	}
	if _, err := os.Stat(o.Schema); err != nil {
		return fmt.Errorf("--schema path does not exist: %s", o.Schema)
	}
	if o.Src == "" {
		return fmt.Errorf("--src is required")
	}
	if info, err := os.Stat(o.Src); err != nil || !info.IsDir() {
		return fmt.Errorf("--src path does not exist: %s", o.Src)
	}
	if o.Watch && !o.Watchman {
		return fmt.Errorf("watch mode requires watchman to be enabled")
	}
	if o.Watch {
		if _, ok := findRootMarker(o.Src); !ok {
			return fmt.Errorf(
				"watch mode requires a repository root marker (%s) in %s or an ancestor directory",
				strings.Join(rootMarkers, ", "), o.Src)
		}
	}
	return nil
}

// findRootMarker walks from dir upward looking for a repository root marker
// and returns the directory containing one.
func findRootMarker(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		for _, marker := range rootMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// artifactDir resolves the absolute artifact directory for a run.
func (o *Options) artifactDir() string {
	dir := o.ArtifactDirectory
	if dir == "" {
		dir = DefaultArtifactDirectory
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(o.Src, dir)
	}
	return dir
}

// artifactDirName is the path segment used to recognize generated files.
func (o *Options) artifactDirName() string {
	if o.ArtifactDirectory != "" {
		return filepath.Base(o.ArtifactDirectory)
	}
	return DefaultArtifactDirectory
}
