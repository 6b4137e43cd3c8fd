package discovery

import (
	"go/ast"
	"go/token"
	"go/types"
	"reflect"
	"strconv"
)

const markerName = "Registration"

// Metadata is the payload of one marker field as written in source.
type Metadata struct {
	// Base and KeyType are nil when the type argument is missing or did not
	// resolve.
	Base    types.Type
	KeyType types.Type
	Key     string
	HasKey  bool
	Pos     token.Pos
}

// Prefilter reports whether spec is a struct type with at least one field
// whose type is spelled like the marker. It only looks at syntax.
func Prefilter(spec *ast.TypeSpec) bool {
	st, ok := spec.Type.(*ast.StructType)
	if !ok || st.Fields == nil {
		return false
	}
	for _, field := range st.Fields.List {
		if markerIdent(field.Type) != nil {
			return true
		}
	}
	return false
}

// markerIdent returns the identifier naming the type in expr when that
// name is Registration, with or without type arguments.
func markerIdent(expr ast.Expr) *ast.Ident {
	switch e := expr.(type) {
	case *ast.IndexExpr:
		expr = e.X
	case *ast.IndexListExpr:
		expr = e.X
	}

	var id *ast.Ident
	switch e := expr.(type) {
	case *ast.Ident:
		id = e
	case *ast.SelectorExpr:
		id = e.Sel
	}
	if id == nil || id.Name != markerName {
		return nil
	}
	return id
}

func typeArgExprs(expr ast.Expr) []ast.Expr {
	switch e := expr.(type) {
	case *ast.IndexExpr:
		return []ast.Expr{e.Index}
	case *ast.IndexListExpr:
		return e.Indices
	}
	return nil
}

// isMarker reports whether id refers to the Registration type declared in
// markerPkg.
func isMarker(info *types.Info, id *ast.Ident, markerPkg string) bool {
	obj, ok := info.Uses[id].(*types.TypeName)
	if !ok || obj.Pkg() == nil {
		return false
	}
	return obj.Pkg().Path() == markerPkg && obj.Name() == markerName
}

func extractMetadata(info *types.Info, field *ast.Field, tagName string) Metadata {
	m := Metadata{Pos: field.Pos()}

	args := typeArgExprs(field.Type)
	if len(args) > 0 {
		m.Base = resolved(info.TypeOf(args[0]))
	}
	if len(args) > 1 {
		m.KeyType = resolved(info.TypeOf(args[1]))
	}

	if field.Tag != nil {
		if raw, err := strconv.Unquote(field.Tag.Value); err == nil {
			m.Key, m.HasKey = reflect.StructTag(raw).Lookup(tagName)
		}
	}
	return m
}

func resolved(t types.Type) types.Type {
	if t == nil {
		return nil
	}
	if b, ok := t.(*types.Basic); ok && b.Kind() == types.Invalid {
		return nil
	}
	return t
}
