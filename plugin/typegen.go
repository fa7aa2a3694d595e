package plugin

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
)

// FutureEnumValue is the catch-all member added to generated enum types so
// that client code keeps compiling when the server adds values.
const FutureEnumValue = "%future added value"

// TypeGenInput carries one compiled definition into a plugin's type
// generator. Exactly one of Operation and Fragment is set.
type TypeGenInput struct {
	Schema           *ast.Schema
	Operation        *ast.OperationDefinition
	Fragment         *ast.FragmentDefinition
	CustomScalars    map[string]string
	FutureProofEnums bool
}

// TypeKind discriminates TypeNode variants.
type TypeKind int

const (
	KindScalar TypeKind = iota
	KindEnum
	KindObject
	KindList
)

// TypeNode is a language-neutral type shape derived from a schema type and a
// selection set. Plugins render it into their own type syntax.
type TypeNode struct {
	Kind    TypeKind
	NonNull bool
	// Name is the schema type name for scalars and enums.
	Name string
	// Elem is the element type for lists.
	Elem *TypeNode
	// Fields are the selected fields for objects, in selection order.
	Fields []TypeField
	// EnumValues are the declared values for enums, in declaration order,
	// with FutureEnumValue appended when future-proofing is on.
	EnumValues []string
}

// TypeField is one selected field of an object TypeNode.
type TypeField struct {
	Name string
	Type *TypeNode
}

// VariablesType builds the type shape of an operation's variables. Returns
// nil for fragments and for operations without variables.
func (in TypeGenInput) VariablesType() (*TypeNode, error) {
	if in.Operation == nil || len(in.Operation.VariableDefinitions) == 0 {
		return nil, nil
	}
	node := &TypeNode{Kind: KindObject, NonNull: true}
	for _, v := range in.Operation.VariableDefinitions {
		t, err := in.typeFromAST(v.Type, nil)
		if err != nil {
			return nil, fmt.Errorf("variable $%s: %w", v.Variable, err)
		}
		node.Fields = append(node.Fields, TypeField{Name: v.Variable, Type: t})
	}
	return node, nil
}

// DataType builds the type shape of the definition's response data.
func (in TypeGenInput) DataType() (*TypeNode, error) {
	var parent *ast.Definition
	var sel ast.SelectionSet
	switch {
	case in.Operation != nil:
		sel = in.Operation.SelectionSet
		switch in.Operation.Operation {
		case ast.Mutation:
			parent = in.Schema.Mutation
		case ast.Subscription:
			parent = in.Schema.Subscription
		default:
			parent = in.Schema.Query
		}
	case in.Fragment != nil:
		sel = in.Fragment.SelectionSet
		parent = in.Schema.Types[in.Fragment.TypeCondition]
	}
	if parent == nil {
		return nil, fmt.Errorf("no schema type for definition root")
	}
	node, err := in.selectionType(parent, sel)
	if err != nil {
		return nil, err
	}
	node.NonNull = true
	return node, nil
}

func (in TypeGenInput) selectionType(parent *ast.Definition, sel ast.SelectionSet) (*TypeNode, error) {
	node := &TypeNode{Kind: KindObject}
	for _, s := range sel {
		switch s := s.(type) {
		case *ast.Field:
			name := s.Alias
			if name == "" {
				name = s.Name
			}
			if s.Name == "__typename" {
				node.Fields = append(node.Fields, TypeField{
					Name: name,
					Type: &TypeNode{Kind: KindScalar, Name: "String", NonNull: true},
				})
				continue
			}
			def := parent.Fields.ForName(s.Name)
			if def == nil {
				return nil, fmt.Errorf("field %s not found on type %s", s.Name, parent.Name)
			}
			t, err := in.fieldType(def.Type, s.SelectionSet)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", name, err)
			}
			node.Fields = append(node.Fields, TypeField{Name: name, Type: t})
		case *ast.InlineFragment:
			// Flattened into the parent shape; the concrete type refines
			// nullability at runtime, not in the generated shape.
			cond := parent
			if s.TypeCondition != "" {
				cond = in.Schema.Types[s.TypeCondition]
				if cond == nil {
					return nil, fmt.Errorf("unknown type condition %s", s.TypeCondition)
				}
			}
			inner, err := in.selectionType(cond, s.SelectionSet)
			if err != nil {
				return nil, err
			}
			node.Fields = append(node.Fields, inner.Fields...)
		case *ast.FragmentSpread:
			// Spread fragments get their own artifact and type text; the
			// spread site contributes no fields here.
		}
	}
	return node, nil
}

func (in TypeGenInput) fieldType(t *ast.Type, sel ast.SelectionSet) (*TypeNode, error) {
	if t.Elem != nil {
		elem, err := in.fieldType(t.Elem, sel)
		if err != nil {
			return nil, err
		}
		return &TypeNode{Kind: KindList, NonNull: t.NonNull, Elem: elem}, nil
	}
	return in.typeFromAST(t, sel)
}

func (in TypeGenInput) typeFromAST(t *ast.Type, sel ast.SelectionSet) (*TypeNode, error) {
	if t.Elem != nil {
		elem, err := in.typeFromAST(t.Elem, sel)
		if err != nil {
			return nil, err
		}
		return &TypeNode{Kind: KindList, NonNull: t.NonNull, Elem: elem}, nil
	}
	name := t.NamedType
	def := in.Schema.Types[name]
	if def == nil {
		return nil, fmt.Errorf("unknown type %s", name)
	}
	switch def.Kind {
	case ast.Enum:
		values := make([]string, 0, len(def.EnumValues)+1)
		for _, v := range def.EnumValues {
			values = append(values, v.Name)
		}
		if in.FutureProofEnums {
			values = append(values, FutureEnumValue)
		}
		return &TypeNode{Kind: KindEnum, NonNull: t.NonNull, Name: name, EnumValues: values}, nil
	case ast.Scalar:
		return &TypeNode{Kind: KindScalar, NonNull: t.NonNull, Name: name}, nil
	case ast.InputObject:
		node := &TypeNode{Kind: KindObject, NonNull: t.NonNull}
		for _, f := range def.Fields {
			ft, err := in.typeFromAST(f.Type, nil)
			if err != nil {
				return nil, err
			}
			node.Fields = append(node.Fields, TypeField{Name: f.Name, Type: ft})
		}
		return node, nil
	default:
		if len(sel) == 0 {
			return nil, fmt.Errorf("composite type %s selected without fields", name)
		}
		node, err := in.selectionType(def, sel)
		if err != nil {
			return nil, err
		}
		node.NonNull = t.NonNull
		return node, nil
	}
}

// MappedScalar resolves a scalar's target-language type name, preferring the
// caller's custom scalar mapping over the plugin's builtin table.
func (in TypeGenInput) MappedScalar(name string, builtin map[string]string, fallback string) string {
	if mapped, ok := in.CustomScalars[name]; ok {
		return mapped
	}
	if mapped, ok := builtin[name]; ok {
		return mapped
	}
	return fallback
}
