package compile

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alexflint/go-arg"

	"github.com/apiplustech/relaygen/engine"
)

// Exit codes. Configuration, schema and plugin failures exit 1; engine
// outcomes map to the codes below so calling scripts can branch without
// parsing output.
const (
	ExitSuccess         = 0
	ExitFailure         = 1
	ExitEngineError     = 100
	ExitValidateChanged = 101
)

type cliArgs struct {
	Schema             string   `arg:"--schema" help:"path to a .graphql SDL file or .json introspection file"`
	Src                string   `arg:"--src" help:"root directory of the source files to scan"`
	Extensions         []string `arg:"--extensions" help:"source file extensions to scan (default: the language's extensions)"`
	Include            []string `arg:"--include" help:"glob patterns of files to include, relative to --src (default: **)"`
	Exclude            []string `arg:"--exclude" help:"glob patterns of files to exclude, relative to --src"`
	Verbose            bool     `arg:"--verbose" help:"log at debug level"`
	Quiet              bool     `arg:"--quiet" help:"log errors only"`
	Watch              bool     `arg:"--watch" help:"recompile when files change (requires watchman)"`
	Watchman           bool     `arg:"--watchman" default:"true" help:"use watchman when it is available"`
	Validate           bool     `arg:"--validate" help:"report pending changes without writing artifacts"`
	NoFutureProofEnums bool     `arg:"--no-future-proof-enums" help:"do not add a catch-all member to generated enum types"`
	Language           string   `arg:"--language" help:"target language plugin (default: javascript)"`
	ArtifactDirectory  string   `arg:"--artifact-directory" help:"directory generated artifacts are written to (default: __generated__)"`
}

func (cliArgs) Description() string {
	return "relaygen compiles GraphQL documents embedded in source files into generated artifacts."
}

func (a cliArgs) options() Options {
	return Options{
		Schema:             a.Schema,
		Src:                a.Src,
		Extensions:         a.Extensions,
		Include:            a.Include,
		Exclude:            a.Exclude,
		Verbose:            a.Verbose,
		Quiet:              a.Quiet,
		Watch:              a.Watch,
		Watchman:           a.Watchman,
		OnlyValidate:       a.Validate,
		NoFutureProofEnums: a.NoFutureProofEnums,
		Language:           a.Language,
		ArtifactDirectory:  a.ArtifactDirectory,
	}
}

// Main parses the command line, merges the optional relaygen.yaml config,
// runs the compiler, and returns the process exit code. The caller decides
// whether to terminate the process.
func Main() int {
	var args cliArgs
	arg.MustParse(&args)
	opts := args.options()

	cfgPath, err := findConfigFile(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "relaygen: %v\n", err)
		return ExitFailure
	}
	if cfgPath != "" {
		cfg, err := loadConfigFile(cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "relaygen: %v\n", err)
			return ExitFailure
		}
		opts = cfg.apply(opts, filepath.Dir(cfgPath))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	result, err := Run(ctx, opts, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "relaygen: %v\n", err)
		return ExitFailure
	}
	return ExitCode(result, opts.OnlyValidate)
}

// ExitCode maps an engine result to a process exit code. In validate-only
// mode any result other than no-changes means artifacts are out of date.
func ExitCode(result engine.Result, onlyValidate bool) int {
	if result == engine.ResultError {
		return ExitEngineError
	}
	if onlyValidate && result != engine.ResultNoChanges {
		return ExitValidateChanged
	}
	return ExitSuccess
}
