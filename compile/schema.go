package compile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/suessflorian/gqlfetch"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

// injectedDirectives are declared on every loaded schema so documents can
// use @include and @skip without the schema author declaring them.
const injectedDirectives = `directive @include(if: Boolean) on FRAGMENT_SPREAD | FIELD
directive @skip(if: Boolean) on FRAGMENT_SPREAD | FIELD
`

// builtinScalars mirrors the GraphQL built-in scalar types. They are loaded
// alongside the user schema instead of the full prelude so that the schema
// carries exactly the two injected directives.
const builtinScalars = `scalar Int
scalar Float
scalar String
scalar Boolean
scalar ID
`

// LoadSchema reads a schema file, converts introspection JSON to SDL when
// needed, injects the @include and @skip directive declarations, and builds
// the schema. The input is assumed valid; parse failures are reported with
// remediation guidance.
func LoadSchema(ctx context.Context, path string) (*ast.Schema, error) {
	var sdl string
	fromIntrospection := strings.EqualFold(filepath.Ext(path), ".json")
	if fromIntrospection {
		converted, err := gqlfetch.BuildClientSchemaFromFile(ctx, path, true)
		if err != nil {
			return nil, fmt.Errorf(
				"error loading schema: could not convert introspection JSON %s to SDL; "+
					"re-export the schema or provide it as a .graphql file: %w", path, err)
		}
		// A mis-shaped but decodable file (e.g. a bare __schema object
		// without the {"data": ...} response envelope) converts to an
		// empty document rather than an error.
		if strings.TrimSpace(converted) == "" {
			return nil, fmt.Errorf(
				"error loading schema: introspection JSON %s contained no schema; "+
					"expected the standard introspection response envelope {\"data\":{\"__schema\":...}}", path)
		}
		sdl = converted
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error loading schema: could not read %s: %w", path, err)
		}
		sdl = string(data)
	}

	doc, parseErr := parser.ParseSchema(&ast.Source{Name: path, Input: sdl})
	if parseErr != nil {
		return nil, fmt.Errorf(
			"error loading schema: expected %s to contain a valid GraphQL schema as SDL "+
				"or introspection JSON: %w", path, parseErr)
	}
	for _, d := range doc.Directives {
		if d.Name == "include" || d.Name == "skip" {
			return nil, fmt.Errorf(
				"error loading schema: %s declares the @%s directive, which is declared "+
					"automatically; remove the declaration from the schema", path, d.Name)
		}
	}

	schema, err := validator.LoadSchema(
		&ast.Source{Name: "builtin scalars", Input: builtinScalars, BuiltIn: true},
		&ast.Source{Name: "injected directives", Input: injectedDirectives, BuiltIn: true},
		&ast.Source{Name: path, Input: sdl},
	)
	if err != nil {
		return nil, fmt.Errorf(
			"error loading schema: expected %s to contain a valid GraphQL schema as SDL "+
				"or introspection JSON: %w", path, err)
	}
	if fromIntrospection && schema.Query == nil {
		return nil, fmt.Errorf(
			"error loading schema: introspection JSON %s declares no query root type; "+
				"re-export the schema with the standard introspection query", path)
	}
	return schema, nil
}
