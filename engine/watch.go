package engine

import (
	"context"
	"time"

	"github.com/apiplustech/relaygen/watchman"
)

type watchedRoot struct {
	// dir is the parser base directory being watched.
	dir string
	// root and rel come from watch-project: the watched project root and
	// dir's path within it.
	root  string
	rel   string
	clock string
	expr  watchman.Expr
}

// WatchAll compiles once, then recompiles whenever the file-watch service
// reports a change matching any parser's watch expression. It runs until the
// context is cancelled and returns the last compile result.
func (r *Runner) WatchAll(ctx context.Context) Result {
	client := r.cfg.Watch
	if client == nil || !client.Available(ctx) {
		r.cfg.Reporter.Errorf("watch mode requires a running watchman service")
		return ResultError
	}

	roots, err := r.watchRoots(ctx, client)
	if err != nil {
		r.cfg.Reporter.Errorf("%v", err)
		return ResultError
	}

	last := r.CompileAll(ctx)
	r.cfg.Reporter.Logf("watching for changes...")

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return last
		case <-ticker.C:
		}
		changed := false
		for _, root := range roots {
			res, err := client.RunQuery(ctx, root.root, watchman.Query{
				Expression:   root.expr,
				Since:        root.clock,
				RelativeRoot: root.rel,
			})
			if err != nil {
				r.cfg.Reporter.Errorf("watch query: %v", err)
				continue
			}
			root.clock = res.Clock
			if len(res.Files) > 0 {
				r.cfg.Reporter.Debugf("%d files changed under %s", len(res.Files), root.dir)
				changed = true
			}
		}
		if changed {
			last = r.CompileAll(ctx)
		}
	}
}

// watchRoots establishes one watch per distinct parser base directory,
// combining the parsers' expressions that share it.
func (r *Runner) watchRoots(ctx context.Context, client *watchman.Client) ([]*watchedRoot, error) {
	byDir := map[string]*watchedRoot{}
	var roots []*watchedRoot
	for _, name := range sortedParserNames(r.cfg.Parsers) {
		pc := r.cfg.Parsers[name]
		if pc.Expression == nil {
			continue
		}
		root, ok := byDir[pc.BaseDir]
		if !ok {
			watchRoot, rel, err := client.WatchProject(ctx, pc.BaseDir)
			if err != nil {
				return nil, err
			}
			clock, err := client.Clock(ctx, watchRoot)
			if err != nil {
				return nil, err
			}
			root = &watchedRoot{dir: pc.BaseDir, root: watchRoot, rel: rel, clock: clock}
			byDir[pc.BaseDir] = root
			roots = append(roots, root)
		}
		if root.expr == nil {
			root.expr = pc.Expression
		} else {
			root.expr = watchman.Expr{"anyof", root.expr, pc.Expression}
		}
	}
	return roots, nil
}
