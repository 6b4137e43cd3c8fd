package discovery

import (
	"go/ast"
	"go/token"
	"go/types"
)

// Package is one type-checked package handed to the pass. The loader
// builds these from go/packages; tests build them with go/types directly.
type Package struct {
	Path   string
	Name   string
	Dir    string
	Fset   *token.FileSet
	Syntax []*ast.File
	Types  *types.Package
	Info   *types.Info
}
