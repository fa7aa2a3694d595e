package compile

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/apiplustech/relaygen/engine"
	"github.com/apiplustech/relaygen/watchman"
)

// SearchOptions describe one logical file set as (extensions, include
// patterns, exclude patterns), all relative to the source root.
type SearchOptions struct {
	Extensions []string
	Include    []string
	Exclude    []string
}

// sourceSearchOptions builds the application-source file set. Generated
// artifacts are always excluded, on top of the user's excludes.
func sourceSearchOptions(o *Options, extensions []string, outputExtension string) SearchOptions {
	exclude := append([]string{}, o.Exclude...)
	exclude = append(exclude, "**/*"+engine.GeneratedMarker+outputExtension)
	return SearchOptions{
		Extensions: extensions,
		Include:    o.Include,
		Exclude:    exclude,
	}
}

// graphqlSearchOptions builds the standalone-document file set. The main
// schema file is always excluded so it is not compiled as a document.
func graphqlSearchOptions(o *Options) SearchOptions {
	exclude := append([]string{}, o.Exclude...)
	if rel, err := filepath.Rel(o.Src, o.Schema); err == nil && !strings.HasPrefix(rel, "..") {
		exclude = append(exclude, filepath.ToSlash(rel))
	}
	return SearchOptions{
		Extensions: []string{"graphql"},
		Include:    o.Include,
		Exclude:    exclude,
	}
}

// WatchExpression builds the file-watch query for a file set: regular files
// with a matching extension, under at least one include pattern, under no
// exclude pattern.
func (s SearchOptions) WatchExpression() watchman.Expr {
	expr := watchman.Allof(
		watchman.TypeFile(),
		watchman.Suffix(s.Extensions),
		watchman.MatchAny(s.Include),
	)
	if len(s.Exclude) > 0 {
		expr = append(expr, watchman.Not(watchman.MatchAny(s.Exclude)))
	}
	return expr
}

// ListFiles evaluates the file set against the filesystem: one glob per
// include pattern, matching any configured extension, minus excludes.
// Results are slash-separated paths relative to base, sorted.
func (s SearchOptions) ListFiles(base string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	for _, include := range s.Include {
		pattern := path.Join(strings.TrimSuffix(include, "/"), "*."+extensionAlternatives(s.Extensions))
		matches, err := doublestar.FilepathGlob(filepath.Join(base, filepath.FromSlash(pattern)))
		if err != nil {
			return nil, fmt.Errorf("evaluating include pattern %q: %w", include, err)
		}
	match:
		for _, m := range matches {
			rel, err := filepath.Rel(base, m)
			if err != nil {
				return nil, err
			}
			rel = filepath.ToSlash(rel)
			if seen[rel] {
				continue
			}
			for _, exclude := range s.Exclude {
				ok, err := doublestar.Match(exclude, rel)
				if err != nil {
					return nil, fmt.Errorf("evaluating exclude pattern %q: %w", exclude, err)
				}
				if ok {
					continue match
				}
			}
			seen[rel] = true
			files = append(files, rel)
		}
	}
	sort.Strings(files)
	return files, nil
}

// extensionAlternatives renders extensions as a glob alternative, e.g.
// {js,jsx} or plain js for a single extension.
func extensionAlternatives(extensions []string) string {
	if len(extensions) == 1 {
		return extensions[0]
	}
	return "{" + strings.Join(extensions, ",") + "}"
}
