// Package engine compiles GraphQL documents discovered in source trees into
// generated artifacts. A Runner is assembled from named parser and writer
// configurations, then driven either once (CompileAll) or continuously
// against a file-watch service (WatchAll).
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/apiplustech/relaygen/watchman"
)

// Result is the outcome tag of one engine run.
type Result int

const (
	// ResultSuccess means documents compiled and artifacts changed.
	ResultSuccess Result = iota
	// ResultNoChanges means documents compiled and every artifact was
	// already up to date.
	ResultNoChanges
	// ResultError means the run failed; details went to the reporter.
	ResultError
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultNoChanges:
		return "no-changes"
	default:
		return "error"
	}
}

// Config assembles a Runner.
type Config struct {
	Reporter Reporter
	Parsers  map[string]ParserConfig
	Writers  map[string]WriterConfig
	// OnlyValidate reports pending artifact changes without writing.
	OnlyValidate bool
	// Watch is the file-watch client used by WatchAll; may be nil for
	// one-shot runs.
	Watch *watchman.Client
	// PollInterval is how often WatchAll asks the watch service for
	// changes. Zero means one second.
	PollInterval time.Duration
}

// Runner drives compilation over a fixed set of parsers and writers.
type Runner struct {
	cfg Config
}

// New validates the configuration's parser references and returns a Runner.
// Every writer's Parser and BaseParsers must name a configured parser.
func New(cfg Config) (*Runner, error) {
	for name, wc := range cfg.Writers {
		if _, ok := cfg.Parsers[wc.Parser]; !ok {
			return nil, fmt.Errorf("writer %q depends on unknown parser %q", name, wc.Parser)
		}
		for _, base := range wc.BaseParsers {
			if _, ok := cfg.Parsers[base]; !ok {
				return nil, fmt.Errorf("writer %q depends on unknown base parser %q", name, base)
			}
		}
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = time.Second
	}
	return &Runner{cfg: cfg}, nil
}

// CompileAll runs every parser and writer once.
func (r *Runner) CompileAll(ctx context.Context) Result {
	result, err := r.compileOnce(ctx)
	if err != nil {
		r.cfg.Reporter.Errorf("%v", err)
		return ResultError
	}
	return result
}

func (r *Runner) compileOnce(ctx context.Context) (Result, error) {
	start := time.Now()
	parsed := map[string][]RawDocument{}
	for _, name := range sortedParserNames(r.cfg.Parsers) {
		docs, err := r.parseFileSet(name, r.cfg.Parsers[name])
		if err != nil {
			return ResultError, err
		}
		parsed[name] = docs
	}

	var total WriteResult
	for _, name := range sortedWriterNames(r.cfg.Writers) {
		wc := r.cfg.Writers[name]
		docs := parsed[wc.Parser]
		var baseDocs []RawDocument
		for _, base := range wc.BaseParsers {
			baseDocs = append(baseDocs, parsed[base]...)
		}
		res, err := wc.Writer.Write(ctx, docs, baseDocs, r.cfg.OnlyValidate, r.cfg.Reporter)
		if err != nil {
			return ResultError, fmt.Errorf("writer %q: %w", name, err)
		}
		total = total.add(res)
	}

	r.cfg.Reporter.Logf("compiled in %s: %d written, %d unchanged, %d removed",
		time.Since(start).Round(time.Millisecond), total.Written, total.Unchanged, total.Deleted)
	if !total.Changed() {
		return ResultNoChanges, nil
	}
	return ResultSuccess, nil
}

func (r *Runner) parseFileSet(name string, pc ParserConfig) ([]RawDocument, error) {
	files, err := pc.ListFiles()
	if err != nil {
		return nil, fmt.Errorf("discovering files for parser %q: %w", name, err)
	}
	var docs []RawDocument
	for _, file := range files {
		content, err := os.ReadFile(filepath.Join(pc.BaseDir, file))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		fileDocs, err := pc.Parser.Parse(file, content)
		if err != nil {
			return nil, err
		}
		docs = append(docs, fileDocs...)
	}
	r.cfg.Reporter.Debugf("parser %q: %d files, %d documents", name, len(files), len(docs))
	return docs, nil
}

func sortedParserNames(m map[string]ParserConfig) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedWriterNames(m map[string]WriterConfig) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
