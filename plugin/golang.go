package plugin

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/99designs/gqlgen/codegen/templates"
	"golang.org/x/tools/imports"
)

func init() {
	Register(&golangPlugin{})
}

var goScalars = map[string]string{
	"ID":      "string",
	"String":  "string",
	"Int":     "int",
	"Float":   "float64",
	"Boolean": "bool",
}

// golangPlugin emits one Go source file per document. Documents are embedded
// as graphql(`...`) raw-string calls in application code.
type golangPlugin struct{}

func (golangPlugin) Name() string              { return "go" }
func (golangPlugin) InputExtensions() []string { return []string{"go"} }
func (golangPlugin) OutputExtension() string   { return "go" }

func (golangPlugin) FindTags(text, sourceFile string) []Tag {
	var tags []Tag
	pos := 0
	const marker = "graphql(`"
	for {
		idx := strings.Index(text[pos:], marker)
		if idx < 0 {
			return tags
		}
		start := pos + idx
		if start > 0 && isIdentRune(rune(text[start-1])) {
			pos = start + len(marker)
			continue
		}
		open := start + len(marker)
		end := strings.IndexByte(text[open:], '`')
		if end < 0 {
			return tags
		}
		tags = append(tags, Tag{
			Template:   text[open : open+end],
			SourceFile: sourceFile,
			Line:       1 + strings.Count(text[:open], "\n"),
		})
		pos = open + end + 1
	}
}

func (golangPlugin) FormatModule(props ModuleProps) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by relaygen. DO NOT EDIT.\n// @generated %s\n\n", props.Hash)
	buf.WriteString("package generated\n\n")
	fmt.Fprintf(&buf, "// %s %s from %s\n", props.Kind, props.Name, props.SourceFile)
	fmt.Fprintf(&buf, "const %sDocument = `%s`\n", templates.ToGo(props.Name), props.DocumentText)
	if props.TypeText != "" {
		buf.WriteString("\n")
		buf.WriteString(props.TypeText)
	}
	src, err := imports.Process(props.Name+".graphql.go", buf.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("formatting generated Go for %s: %w", props.Name, err)
	}
	return src, nil
}

func (golangPlugin) GenerateTypes(in TypeGenInput) (string, error) {
	name := templates.ToGo(definitionName(in))
	var buf bytes.Buffer
	vars, err := in.VariablesType()
	if err != nil {
		return "", err
	}
	if vars != nil {
		fmt.Fprintf(&buf, "type %sVariables %s\n\n", name, goType(in, vars, 0))
	}
	data, err := in.DataType()
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&buf, "type %sData %s\n", name, goType(in, data, 0))
	return buf.String(), nil
}

func goType(in TypeGenInput, t *TypeNode, depth int) string {
	switch t.Kind {
	case KindScalar:
		s := in.MappedScalar(t.Name, goScalars, "any")
		if !t.NonNull {
			s = "*" + s
		}
		return s
	case KindEnum:
		// Enum values are validated server side; a future-proof client
		// treats them as opaque strings.
		if !t.NonNull {
			return "*string"
		}
		return "string"
	case KindList:
		return "[]" + goType(in, t.Elem, depth)
	default:
		indent := strings.Repeat("\t", depth+1)
		var b strings.Builder
		b.WriteString("struct {\n")
		for _, f := range t.Fields {
			fmt.Fprintf(&b, "%s%s %s `json:%q`\n", indent, templates.ToGo(f.Name), goType(in, f.Type, depth+1), f.Name)
		}
		b.WriteString(strings.Repeat("\t", depth) + "}")
		s := b.String()
		if !t.NonNull {
			s = "*" + s
		}
		return s
	}
}
