package plugin

import (
	"bytes"
	"fmt"
	"strings"
)

func init() {
	Register(&typescriptPlugin{})
}

var tsScalars = map[string]string{
	"ID":      "string",
	"String":  "string",
	"Int":     "number",
	"Float":   "number",
	"Boolean": "boolean",
}

// typescriptPlugin emits ES modules with exported type declarations.
type typescriptPlugin struct{}

func (typescriptPlugin) Name() string              { return "typescript" }
func (typescriptPlugin) InputExtensions() []string { return []string{"ts", "tsx"} }
func (typescriptPlugin) OutputExtension() string   { return "ts" }

func (typescriptPlugin) FindTags(text, sourceFile string) []Tag {
	return findTaggedTemplates(text, sourceFile, "graphql")
}

func (typescriptPlugin) FormatModule(props ModuleProps) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "/**\n * @generated %s\n */\n\n", props.Hash)
	buf.WriteString("/* eslint-disable */\n\n")
	if props.TypeText != "" {
		buf.WriteString(props.TypeText)
		buf.WriteString("\n")
	}
	fmt.Fprintf(&buf, "// %s %s from %s\n", props.Kind, props.Name, props.SourceFile)
	fmt.Fprintf(&buf, "const node = %s;\n\n", jsStringLiteral(props.DocumentText))
	buf.WriteString("export default node;\n")
	return buf.Bytes(), nil
}

func (typescriptPlugin) GenerateTypes(in TypeGenInput) (string, error) {
	name := definitionName(in)
	var buf bytes.Buffer
	vars, err := in.VariablesType()
	if err != nil {
		return "", err
	}
	if vars != nil {
		fmt.Fprintf(&buf, "export type %s$variables = %s;\n", name, tsType(in, vars, 0))
	}
	data, err := in.DataType()
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&buf, "export type %s$data = %s;\n", name, tsType(in, data, 0))
	return buf.String(), nil
}

func tsType(in TypeGenInput, t *TypeNode, depth int) string {
	var s string
	switch t.Kind {
	case KindScalar:
		s = in.MappedScalar(t.Name, tsScalars, "unknown")
	case KindEnum:
		s = quoteUnion(t.EnumValues)
	case KindList:
		s = "ReadonlyArray<" + tsType(in, t.Elem, depth) + ">"
	case KindObject:
		indent := strings.Repeat("  ", depth+1)
		var b strings.Builder
		b.WriteString("{\n")
		for _, f := range t.Fields {
			fmt.Fprintf(&b, "%sreadonly %s: %s;\n", indent, f.Name, tsType(in, f.Type, depth+1))
		}
		b.WriteString(strings.Repeat("  ", depth) + "}")
		s = b.String()
	}
	if !t.NonNull {
		s = s + " | null"
	}
	return s
}
