package compile

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/apiplustech/relaygen/engine"
	"github.com/apiplustech/relaygen/plugin"
	"github.com/apiplustech/relaygen/watchman"
)

// graphqlParserName keys the standalone-document parser. The source-language
// writer always declares it as a base dependency so fragments defined in
// .graphql files are visible when application documents compile.
const graphqlParserName = "graphql"

// Run validates options, wires the engine, and executes one compile or watch
// invocation. Reporter output goes to out. Configuration, schema and plugin
// failures return an error before the engine is invoked; engine outcomes are
// returned as a Result.
func Run(ctx context.Context, opts Options, out io.Writer) (engine.Result, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return engine.ResultError, err
	}

	plug, err := plugin.Get(opts.Language)
	if err != nil {
		return engine.ResultError, err
	}

	schema, err := LoadSchema(ctx, opts.Schema)
	if err != nil {
		return engine.ResultError, err
	}

	client := watchman.New()
	useWatchman := opts.Watchman && client.Available(ctx)
	if opts.Watch && !useWatchman {
		return engine.ResultError, fmt.Errorf("watch mode requires a reachable watchman service")
	}

	cfg := runnerConfig(opts, plug, schema, useWatchman)
	cfg.Reporter = engine.NewReporter(out, opts.Verbose, opts.Quiet)
	cfg.Watch = client

	runner, err := engine.New(cfg)
	if err != nil {
		return engine.ResultError, err
	}
	if opts.Watch {
		return runner.WatchAll(ctx), nil
	}
	return runner.CompileAll(ctx), nil
}

// runnerConfig assembles the parser and writer maps for one run: one parser
// per logical file set, one writer for the target language.
func runnerConfig(opts Options, plug plugin.Plugin, schema *ast.Schema, useWatchman bool) engine.Config {
	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = plug.InputExtensions()
	}
	src, err := filepath.Abs(opts.Src)
	if err != nil {
		src = opts.Src
	}

	sourceSearch := sourceSearchOptions(&opts, extensions, plug.OutputExtension())
	graphqlSearch := graphqlSearchOptions(&opts)

	sourceParserName := strings.Join(extensions, "/")
	parsers := map[string]engine.ParserConfig{
		sourceParserName: {
			BaseDir:    src,
			ListFiles:  func() ([]string, error) { return sourceSearch.ListFiles(src) },
			Parser:     engine.NewTagParser(plug),
			Expression: watchExpr(sourceSearch, useWatchman),
		},
		graphqlParserName: {
			BaseDir:    src,
			ListFiles:  func() ([]string, error) { return graphqlSearch.ListFiles(src) },
			Parser:     engine.NewSDLParser(),
			Expression: watchExpr(graphqlSearch, useWatchman),
		},
	}

	dirName := opts.artifactDirName()
	outExt := plug.OutputExtension()
	writers := map[string]engine.WriterConfig{
		outExt: {
			Parser:      sourceParserName,
			BaseParsers: []string{graphqlParserName},
			Writer: engine.NewArtifactWriter(schema, plug, engine.WriterOptions{
				ArtifactDir: opts.artifactDir(),
				IsGeneratedFile: func(path string) bool {
					return strings.Contains(filepath.ToSlash(path), dirName) &&
						engine.IsGeneratedName(filepath.Base(path), outExt)
				},
				CustomScalars:    opts.CustomScalars,
				FutureProofEnums: !opts.NoFutureProofEnums,
			}),
		},
	}

	return engine.Config{
		Parsers:      parsers,
		Writers:      writers,
		OnlyValidate: opts.OnlyValidate,
	}
}

func watchExpr(s SearchOptions, useWatchman bool) watchman.Expr {
	if !useWatchman {
		return nil
	}
	return s.WatchExpression()
}
