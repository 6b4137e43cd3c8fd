package discovery

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/parser"
	"go/token"
	"go/types"
	"strconv"
	"strings"
)

// KeyKind says how a key is written into generated code.
type KeyKind int

const (
	// KeyString is a quoted string literal of the tag text.
	KeyString KeyKind = iota + 1
	// KeyEnum is a reference to a declared constant of a named key type,
	// or a conversion to that type when no constant has the value.
	KeyEnum
	// KeyType is the identity of a type, for reflect.Type keys.
	KeyType
	// KeyLiteral is any other constant expression.
	KeyLiteral
)

func (k KeyKind) String() string {
	switch k {
	case KeyString:
		return "string"
	case KeyEnum:
		return "enum"
	case KeyType:
		return "type"
	case KeyLiteral:
		return "literal"
	}
	return "unknown"
}

// Key is a resolved marker key.
type Key struct {
	Kind KeyKind
	// Text is the tag text as written.
	Text string
	// Expr is the Go expression used in the generated file.
	Expr string
}

// resolvedKey is a validated key whose expression is only rendered once
// the whole marker is accepted, so rejected markers add no imports.
type resolvedKey struct {
	kind    KeyKind
	text    string
	typ     types.Type   // KeyType: the type whose identity is the key
	konst   *types.Const // KeyEnum/KeyLiteral: a declared constant
	cast    *types.Named // KeyEnum: conversion target when no constant matches
	value   constant.Value
	// wrap is the conversion applied to value for interface key types, so
	// the key keeps its dynamic type.
	wrap    types.Type
	literal string
}

func (k resolvedKey) render(im *imports) Key {
	key := Key{Kind: k.kind, Text: k.text}
	switch {
	case k.typ != nil:
		key.Expr = im.selector("reflect", "reflect") + "TypeFor[" + im.typeString(k.typ) + "]()"
	case k.konst != nil:
		key.Expr = im.ref(k.konst)
	case k.cast != nil:
		key.Expr = im.typeString(k.cast) + "(" + constLiteral(k.value) + ")"
	case k.wrap != nil:
		key.Expr = im.typeString(k.wrap) + "(" + constLiteral(k.value) + ")"
	case k.value != nil:
		key.Expr = constLiteral(k.value)
	default:
		key.Expr = k.literal
	}
	return key
}

// keyError is a rejected key. missing marks a nil key, which is reported
// as missing-key rather than invalid-key.
type keyError struct {
	missing bool
	msg     string
}

func (e *keyError) Error() string { return e.msg }

func invalidKey(format string, args ...any) *keyError {
	return &keyError{msg: fmt.Sprintf(format, args...)}
}

// keyResolver interprets tag text in the scope of the file declaring the
// marker.
type keyResolver struct {
	fset *token.FileSet
	pkg  *types.Package
	pos  token.Pos
}

func (r *keyResolver) resolve(keyType types.Type, raw string) (resolvedKey, *keyError) {
	named := declaredNamed(keyType)
	text := strings.TrimSpace(raw)

	if isReflectType(keyType) {
		return r.resolveType(raw, text)
	}

	if isString(keyType) {
		if named != nil {
			if c := r.constByName(named, text); c != nil {
				return resolvedKey{kind: KeyEnum, text: raw, konst: c}, nil
			}
		}
		return resolvedKey{kind: KeyString, text: raw, literal: strconv.Quote(raw)}, nil
	}

	if text == "nil" {
		return resolvedKey{}, &keyError{missing: true, msg: "key is nil"}
	}

	expr, err := parser.ParseExpr(text)
	if err != nil {
		return resolvedKey{}, invalidKey("key %q is not a Go expression: %v", raw, err)
	}

	if named != nil {
		if id, ok := expr.(*ast.Ident); ok {
			if c := r.constByName(named, id.Name); c != nil {
				return resolvedKey{kind: KeyEnum, text: raw, konst: c}, nil
			}
		}
	}

	if c := r.constRef(expr); c != nil {
		if !types.AssignableTo(c.Type(), keyType) {
			return resolvedKey{}, invalidKey("constant %s of type %s cannot be used as %s", c.Name(), c.Type(), keyType)
		}
		kind := KeyLiteral
		if named != nil {
			kind = KeyEnum
		}
		return resolvedKey{kind: kind, text: raw, konst: c}, nil
	}

	tv, err := types.Eval(r.fset, r.pkg, r.pos, text)
	if err != nil {
		return resolvedKey{}, invalidKey("key %q: %v", raw, err)
	}
	if tv.IsNil() {
		return resolvedKey{}, &keyError{missing: true, msg: "key is nil"}
	}
	if tv.Value == nil {
		return resolvedKey{}, invalidKey("key %q is not a constant", raw)
	}
	if err := r.checkRepresentable(tv, keyType, text); err != nil {
		return resolvedKey{}, err
	}

	if named != nil && isInteger(keyType) && tv.Value.Kind() == constant.Int {
		if c := r.constByValue(named, tv.Value); c != nil {
			return resolvedKey{kind: KeyEnum, text: raw, konst: c}, nil
		}
		return resolvedKey{kind: KeyEnum, text: raw, cast: named, value: tv.Value}, nil
	}

	key := resolvedKey{kind: KeyLiteral, text: raw, value: tv.Value}
	if types.IsInterface(keyType) {
		key.wrap = types.Default(tv.Type)
		if !accessible(key.wrap, r.pkg) {
			return resolvedKey{}, invalidKey("type %s of key %q is not accessible from %s", key.wrap, raw, r.pkg.Path())
		}
	}
	return key, nil
}

// constLiteral spells v as a Go constant literal. The expression never
// refers to other declarations, so it needs no imports.
func constLiteral(v constant.Value) string {
	if v.Kind() != constant.Float {
		return v.ExactString()
	}
	if f, exact := constant.Float64Val(v); exact {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return "(" + constant.Num(v).ExactString() + ".0 / " + constant.Denom(v).ExactString() + ")"
}

func (r *keyResolver) resolveType(raw, text string) (resolvedKey, *keyError) {
	if text == "" || text == "nil" {
		return resolvedKey{}, &keyError{missing: true, msg: "key is nil"}
	}
	tv, err := types.Eval(r.fset, r.pkg, r.pos, text)
	if err != nil {
		return resolvedKey{}, invalidKey("key %q: %v", raw, err)
	}
	if !tv.IsType() {
		return resolvedKey{}, invalidKey("key %q of a reflect.Type table must name a type", raw)
	}
	if !accessible(tv.Type, r.pkg) {
		return resolvedKey{}, invalidKey("type %s is not accessible from %s", tv.Type, r.pkg.Path())
	}
	return resolvedKey{kind: KeyType, text: raw, typ: tv.Type}, nil
}

func (r *keyResolver) checkRepresentable(tv types.TypeAndValue, keyType types.Type, text string) *keyError {
	basic, isBasic := keyType.Underlying().(*types.Basic)
	if b, ok := tv.Type.(*types.Basic); ok && b.Info()&types.IsUntyped != 0 {
		if !isBasic {
			// Untyped constants convert to interface key types by default.
			if types.AssignableTo(types.Default(tv.Type), keyType) {
				return nil
			}
			return invalidKey("key %q cannot be used as %s", text, keyType)
		}
		if _, err := types.Eval(r.fset, r.pkg, r.pos, basic.Name()+"("+text+")"); err != nil {
			return invalidKey("key %q is not a valid %s: %v", text, keyType, err)
		}
		return nil
	}
	if !types.AssignableTo(tv.Type, keyType) {
		return invalidKey("key %q of type %s cannot be used as %s", text, tv.Type, keyType)
	}
	return nil
}

// constByName looks name up among the constants of named's own type.
func (r *keyResolver) constByName(named *types.Named, name string) *types.Const {
	if !token.IsIdentifier(name) {
		return nil
	}
	c, ok := named.Obj().Pkg().Scope().Lookup(name).(*types.Const)
	if !ok || !types.Identical(c.Type(), named) || !r.visible(c) {
		return nil
	}
	return c
}

// constByValue returns the first declared constant of named's type with
// value v.
func (r *keyResolver) constByValue(named *types.Named, v constant.Value) *types.Const {
	scope := named.Obj().Pkg().Scope()
	var match *types.Const
	for _, name := range scope.Names() {
		c, ok := scope.Lookup(name).(*types.Const)
		if !ok || !types.Identical(c.Type(), named) || !r.visible(c) {
			continue
		}
		if !constant.Compare(c.Val(), token.EQL, v) {
			continue
		}
		if match == nil || c.Pos() < match.Pos() {
			match = c
		}
	}
	return match
}

// constRef resolves an identifier or pkg.Name selector to a constant in
// the scope of the marker's file.
func (r *keyResolver) constRef(expr ast.Expr) *types.Const {
	scope := r.pkg.Scope().Innermost(r.pos)
	if scope == nil {
		scope = r.pkg.Scope()
	}

	switch e := expr.(type) {
	case *ast.Ident:
		_, obj := scope.LookupParent(e.Name, r.pos)
		if c, ok := obj.(*types.Const); ok && c.Pkg() != nil {
			return c
		}
	case *ast.SelectorExpr:
		x, ok := e.X.(*ast.Ident)
		if !ok {
			return nil
		}
		_, obj := scope.LookupParent(x.Name, r.pos)
		pkgName, ok := obj.(*types.PkgName)
		if !ok {
			return nil
		}
		if c, ok := pkgName.Imported().Scope().Lookup(e.Sel.Name).(*types.Const); ok && c.Exported() {
			return c
		}
	}
	return nil
}

func (r *keyResolver) visible(obj types.Object) bool {
	return obj.Exported() || obj.Pkg() == r.pkg
}

// declaredNamed returns t as a named type declared in a package, or nil
// for predeclared and unnamed types.
func declaredNamed(t types.Type) *types.Named {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return nil
	}
	return named
}

func isReflectType(t types.Type) bool {
	named := declaredNamed(t)
	return named != nil && named.Obj().Pkg().Path() == "reflect" && named.Obj().Name() == "Type"
}

func isString(t types.Type) bool {
	b, ok := t.Underlying().(*types.Basic)
	return ok && b.Info()&types.IsString != 0
}

func isInteger(t types.Type) bool {
	b, ok := t.Underlying().(*types.Basic)
	return ok && b.Info()&types.IsInteger != 0
}

// accessible reports whether t can be spelled in a file of pkg.
func accessible(t types.Type, pkg *types.Package) bool {
	switch t := types.Unalias(t).(type) {
	case *types.Named:
		obj := t.Obj()
		if obj.Pkg() != nil && obj.Pkg() != pkg && !obj.Exported() {
			return false
		}
		args := t.TypeArgs()
		for i := 0; i < args.Len(); i++ {
			if !accessible(args.At(i), pkg) {
				return false
			}
		}
		return true
	case *types.Pointer:
		return accessible(t.Elem(), pkg)
	case *types.Slice:
		return accessible(t.Elem(), pkg)
	case *types.Array:
		return accessible(t.Elem(), pkg)
	case *types.Map:
		return accessible(t.Key(), pkg) && accessible(t.Elem(), pkg)
	case *types.Chan:
		return accessible(t.Elem(), pkg)
	}
	return true
}
