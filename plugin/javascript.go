package plugin

import (
	"bytes"
	"fmt"
	"strings"
)

// DefaultLanguage is the plugin used when no language is configured.
const DefaultLanguage = "javascript"

func init() {
	Register(&javascriptPlugin{})
}

var flowScalars = map[string]string{
	"ID":      "string",
	"String":  "string",
	"Int":     "number",
	"Float":   "number",
	"Boolean": "boolean",
}

// javascriptPlugin is the built-in default target: CommonJS modules with
// Flow type comments.
type javascriptPlugin struct{}

func (javascriptPlugin) Name() string              { return "javascript" }
func (javascriptPlugin) InputExtensions() []string { return []string{"js", "jsx", "mjs"} }
func (javascriptPlugin) OutputExtension() string   { return "js" }

func (javascriptPlugin) FindTags(text, sourceFile string) []Tag {
	return findTaggedTemplates(text, sourceFile, "graphql")
}

func (javascriptPlugin) FormatModule(props ModuleProps) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "/**\n * @flow\n * @generated %s\n */\n\n", props.Hash)
	buf.WriteString("/* eslint-disable */\n\n'use strict';\n\n")
	if props.TypeText != "" {
		fmt.Fprintf(&buf, "/*::\n%s*/\n\n", props.TypeText)
	}
	fmt.Fprintf(&buf, "// %s %s from %s\n", props.Kind, props.Name, props.SourceFile)
	fmt.Fprintf(&buf, "const node = %s;\n\n", jsStringLiteral(props.DocumentText))
	buf.WriteString("module.exports = node;\n")
	return buf.Bytes(), nil
}

func (javascriptPlugin) GenerateTypes(in TypeGenInput) (string, error) {
	return renderFlowTypes(in)
}

func renderFlowTypes(in TypeGenInput) (string, error) {
	name := definitionName(in)
	var buf bytes.Buffer
	vars, err := in.VariablesType()
	if err != nil {
		return "", err
	}
	if vars != nil {
		fmt.Fprintf(&buf, "export type %s$variables = %s;\n", name, flowType(in, vars, 0))
	}
	data, err := in.DataType()
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&buf, "export type %s$data = %s;\n", name, flowType(in, data, 0))
	return buf.String(), nil
}

func flowType(in TypeGenInput, t *TypeNode, depth int) string {
	var s string
	switch t.Kind {
	case KindScalar:
		s = in.MappedScalar(t.Name, flowScalars, "any")
	case KindEnum:
		s = "(" + quoteUnion(t.EnumValues) + ")"
	case KindList:
		s = "$ReadOnlyArray<" + flowType(in, t.Elem, depth) + ">"
	case KindObject:
		indent := strings.Repeat("  ", depth+1)
		var b strings.Builder
		b.WriteString("{|\n")
		for _, f := range t.Fields {
			fmt.Fprintf(&b, "%s%s: %s,\n", indent, f.Name, flowType(in, f.Type, depth+1))
		}
		b.WriteString(strings.Repeat("  ", depth) + "|}")
		s = b.String()
	}
	if !t.NonNull {
		s = "?" + s
	}
	return s
}

func quoteUnion(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, " | ")
}

func definitionName(in TypeGenInput) string {
	if in.Operation != nil {
		return in.Operation.Name
	}
	return in.Fragment.Name
}

// jsStringLiteral renders a GraphQL document as a single-quoted JS string.
func jsStringLiteral(s string) string {
	r := strings.NewReplacer("\\", "\\\\", "'", "\\'", "\n", "\\n")
	return "'" + r.Replace(s) + "'"
}
