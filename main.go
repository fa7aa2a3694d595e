// relaygen compiles GraphQL documents embedded in application source files
// into generated artifacts, once or continuously in watch mode.
//
// To run relaygen:
//
//	go run github.com/apiplustech/relaygen
//
// For programmatic access, see the "compile" package, below.  For
// user documentation, see the project [GitHub].
//
// [GitHub]: https://github.com/apiplustech/relaygen
package main

import (
	"os"

	"github.com/apiplustech/relaygen/compile"
)

func main() {
	os.Exit(compile.Main())
}
