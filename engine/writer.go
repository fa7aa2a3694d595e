package engine

import (
	"bytes"
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
	// The validation rules register themselves with the validator at init
	// time; without this import Validate runs with an empty rule set.
	_ "github.com/vektah/gqlparser/v2/validator/rules"

	"github.com/apiplustech/relaygen/plugin"
)

// GeneratedMarker is the filename segment that distinguishes generated
// artifacts, inserted before the output extension.
const GeneratedMarker = ".graphql."

// WriteResult counts one writer invocation's outcome. In validate-only mode
// Written and Deleted count pending changes instead of performed ones.
type WriteResult struct {
	Written   int
	Unchanged int
	Deleted   int
}

// Changed reports whether the invocation produced (or, when validating,
// would produce) any difference on disk.
func (r WriteResult) Changed() bool {
	return r.Written > 0 || r.Deleted > 0
}

func (r WriteResult) add(other WriteResult) WriteResult {
	return WriteResult{
		Written:   r.Written + other.Written,
		Unchanged: r.Unchanged + other.Unchanged,
		Deleted:   r.Deleted + other.Deleted,
	}
}

// ArtifactWriter turns parsed documents into generated files. Validate-only
// invocations report differences without touching disk.
type ArtifactWriter interface {
	Write(ctx context.Context, docs, baseDocs []RawDocument, validateOnly bool, rep Reporter) (WriteResult, error)
}

// WriterConfig names a writer's parser dependencies. Parser supplies the
// writer's own documents; BaseParsers supply documents that must already be
// available when the writer runs. Both are validated when the runner is
// constructed.
type WriterConfig struct {
	Parser      string
	BaseParsers []string
	Writer      ArtifactWriter
}

// WriterOptions configures an artifact writer.
type WriterOptions struct {
	// ArtifactDir is the absolute directory artifacts are written under.
	ArtifactDir string
	// IsGeneratedFile recognizes paths this writer owns; stale matches in
	// the artifact directory are removed.
	IsGeneratedFile  func(path string) bool
	CustomScalars    map[string]string
	FutureProofEnums bool
}

type artifactWriter struct {
	schema *ast.Schema
	plug   plugin.Plugin
	opts   WriterOptions
}

// NewArtifactWriter builds the writer for one target language: documents are
// validated against the schema, rendered through the plugin, and written one
// artifact per operation or fragment.
func NewArtifactWriter(schema *ast.Schema, p plugin.Plugin, opts WriterOptions) ArtifactWriter {
	return &artifactWriter{schema: schema, plug: p, opts: opts}
}

func (w *artifactWriter) Write(ctx context.Context, docs, baseDocs []RawDocument, validateOnly bool, rep Reporter) (WriteResult, error) {
	merged, err := w.parseAll(append(append([]RawDocument{}, baseDocs...), docs...))
	if err != nil {
		return WriteResult{}, err
	}
	if errs := filterValidationErrors(validator.Validate(w.schema, merged)); len(errs) > 0 {
		return WriteResult{}, fmt.Errorf("GraphQL validation failed: %w", errs)
	}

	expected := map[string][]byte{}
	sources := map[string]string{}
	for _, op := range merged.Operations {
		if op.Name == "" {
			return WriteResult{}, fmt.Errorf("%s: anonymous operations cannot be compiled; name the %s", op.Position.Src.Name, op.Operation)
		}
		content, err := w.renderOperation(op)
		if err != nil {
			return WriteResult{}, err
		}
		if err := w.expect(expected, sources, op.Name, op.Position.Src.Name, content); err != nil {
			return WriteResult{}, err
		}
	}
	for _, frag := range merged.Fragments {
		content, err := w.renderFragment(frag)
		if err != nil {
			return WriteResult{}, err
		}
		if err := w.expect(expected, sources, frag.Name, frag.Position.Src.Name, content); err != nil {
			return WriteResult{}, err
		}
	}

	var result WriteResult
	names := make([]string, 0, len(expected))
	for name := range expected {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		res, err := w.sync(name, expected[name], validateOnly, rep)
		if err != nil {
			return result, err
		}
		result = result.add(res)
	}
	res, err := w.removeOrphans(expected, validateOnly, rep)
	if err != nil {
		return result, err
	}
	return result.add(res), nil
}

// filterValidationErrors drops unused-fragment errors: every fragment is a
// compilation unit of its own here, whether or not an operation in the same
// run spreads it.
func filterValidationErrors(errs gqlerror.List) gqlerror.List {
	var kept gqlerror.List
	for _, err := range errs {
		if err.Rule == "NoUnusedFragments" {
			continue
		}
		kept = append(kept, err)
	}
	return kept
}

func (w *artifactWriter) parseAll(docs []RawDocument) (*ast.QueryDocument, error) {
	merged := &ast.QueryDocument{}
	for _, doc := range docs {
		parsed, err := parser.ParseQuery(&ast.Source{Name: doc.SourceFile, Input: doc.Text})
		if err != nil {
			return nil, fmt.Errorf("parsing GraphQL in %s (line %d): %w", doc.SourceFile, doc.Line, err)
		}
		merged.Operations = append(merged.Operations, parsed.Operations...)
		merged.Fragments = append(merged.Fragments, parsed.Fragments...)
	}
	return merged, nil
}

func (w *artifactWriter) renderOperation(op *ast.OperationDefinition) ([]byte, error) {
	text := formatDocument(&ast.QueryDocument{Operations: ast.OperationList{op}})
	in := plugin.TypeGenInput{
		Schema:           w.schema,
		Operation:        op,
		CustomScalars:    w.opts.CustomScalars,
		FutureProofEnums: w.opts.FutureProofEnums,
	}
	return w.render(op.Name, "operation", string(op.Operation), text, op.Position.Src.Name, in)
}

func (w *artifactWriter) renderFragment(frag *ast.FragmentDefinition) ([]byte, error) {
	text := formatDocument(&ast.QueryDocument{Fragments: ast.FragmentDefinitionList{frag}})
	in := plugin.TypeGenInput{
		Schema:           w.schema,
		Fragment:         frag,
		CustomScalars:    w.opts.CustomScalars,
		FutureProofEnums: w.opts.FutureProofEnums,
	}
	return w.render(frag.Name, "fragment", "", text, frag.Position.Src.Name, in)
}

func (w *artifactWriter) render(name, kind, opType, text, sourceFile string, in plugin.TypeGenInput) ([]byte, error) {
	typeText, err := w.plug.GenerateTypes(in)
	if err != nil {
		return nil, fmt.Errorf("generating types for %s: %w", name, err)
	}
	content, err := w.plug.FormatModule(plugin.ModuleProps{
		Name:          name,
		Kind:          kind,
		OperationType: opType,
		DocumentText:  text,
		TypeText:      typeText,
		Hash:          fmt.Sprintf("%x", md5.Sum([]byte(text))),
		SourceFile:    sourceFile,
	})
	if err != nil {
		return nil, fmt.Errorf("formatting module for %s: %w", name, err)
	}
	return content, nil
}

func (w *artifactWriter) expect(expected map[string][]byte, sources map[string]string, name, source string, content []byte) error {
	filename := name + GeneratedMarker + w.plug.OutputExtension()
	if prev, dup := sources[filename]; dup {
		return fmt.Errorf("duplicate document name %s (defined in %s and %s)", name, prev, source)
	}
	sources[filename] = source
	expected[filename] = content
	return nil
}

func (w *artifactWriter) sync(name string, content []byte, validateOnly bool, rep Reporter) (WriteResult, error) {
	target := filepath.Join(w.opts.ArtifactDir, name)
	existing, err := os.ReadFile(target)
	if err == nil && bytes.Equal(existing, content) {
		rep.Debugf("unchanged: %s", name)
		return WriteResult{Unchanged: 1}, nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return WriteResult{}, fmt.Errorf("reading existing artifact %s: %w", target, err)
	}
	if validateOnly {
		rep.Logf("pending: %s", name)
		return WriteResult{Written: 1}, nil
	}
	if err := os.MkdirAll(w.opts.ArtifactDir, 0o755); err != nil {
		return WriteResult{}, fmt.Errorf("creating artifact directory: %w", err)
	}
	if err := os.WriteFile(target, content, 0o644); err != nil {
		return WriteResult{}, fmt.Errorf("writing artifact %s: %w", target, err)
	}
	rep.Debugf("wrote: %s", name)
	return WriteResult{Written: 1}, nil
}

// removeOrphans deletes generated files no compiled document produced,
// typically left behind after a document is renamed or removed.
func (w *artifactWriter) removeOrphans(expected map[string][]byte, validateOnly bool, rep Reporter) (WriteResult, error) {
	entries, err := os.ReadDir(w.opts.ArtifactDir)
	if errors.Is(err, fs.ErrNotExist) {
		return WriteResult{}, nil
	}
	if err != nil {
		return WriteResult{}, fmt.Errorf("scanning artifact directory: %w", err)
	}
	var result WriteResult
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || expected[name] != nil {
			continue
		}
		path := filepath.Join(w.opts.ArtifactDir, name)
		if !IsGeneratedName(name, w.plug.OutputExtension()) {
			continue
		}
		if w.opts.IsGeneratedFile != nil && !w.opts.IsGeneratedFile(path) {
			continue
		}
		if validateOnly {
			rep.Logf("stale: %s", name)
			result.Deleted++
			continue
		}
		if err := os.Remove(path); err != nil {
			return result, fmt.Errorf("removing stale artifact %s: %w", path, err)
		}
		rep.Debugf("removed: %s", name)
		result.Deleted++
	}
	return result, nil
}

// IsGeneratedName reports whether a filename carries the generated-artifact
// marker for the given output extension, e.g. Foo.graphql.js for "js".
func IsGeneratedName(name, outputExtension string) bool {
	return strings.HasSuffix(name, GeneratedMarker+outputExtension) &&
		len(name) > len(GeneratedMarker)+len(outputExtension)
}

func formatDocument(doc *ast.QueryDocument) string {
	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatQueryDocument(doc)
	return buf.String()
}
