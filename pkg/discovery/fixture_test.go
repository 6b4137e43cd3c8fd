package discovery_test

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/keyfactory/pkg/discovery"
)

// stubSources stand in for the real packages a fixture imports, so the
// fixtures type-check without a Go toolchain or module cache.
var stubSources = map[string]string{
	discovery.DefaultMarkerPackage: `package factory

type Registration[V any, K comparable] struct{}
`,
	"reflect": `package reflect

type Type interface{ Name() string }
`,
	"example.com/kinds": `package kinds

type Kind int

const (
	Create Kind = iota + 1
	Delete
	Remove = Delete
)

const hidden Kind = 9
`,
	"example.com/other/factory": `package factory

type Registration[V any, K comparable] struct{}
`,
}

type stubImporter struct {
	fset *token.FileSet
	pkgs map[string]*types.Package
}

func (im *stubImporter) Import(path string) (*types.Package, error) {
	if pkg, ok := im.pkgs[path]; ok {
		return pkg, nil
	}
	src, ok := stubSources[path]
	if !ok {
		return nil, fmt.Errorf("no stub for %q", path)
	}
	file, err := parser.ParseFile(im.fset, "/stubs/"+path+"/stub.go", src, 0)
	if err != nil {
		return nil, err
	}
	conf := types.Config{Importer: im}
	pkg, err := conf.Check(path, im.fset, []*ast.File{file}, nil)
	if err != nil {
		return nil, err
	}
	im.pkgs[path] = pkg
	return pkg, nil
}

const fixturePrelude = `package app

import (
	"reflect"

	"example.com/kinds"
	"github.com/arthur-debert/keyfactory/pkg/factory"
)

var (
	_ reflect.Type
	_ kinds.Kind
)

type Handler interface{ Handle() string }

type Kind uint8

const (
	KindCreate Kind = iota + 1
	KindDelete
)

type Topic string

const TopicAlerts Topic = "alerts"

const answer = 42
`

// checkFixture type-checks the prelude plus decls as package example.com/app.
func checkFixture(t *testing.T, decls string) *discovery.Package {
	t.Helper()
	return checkSource(t, "handlers.go", fixturePrelude+decls)
}

// checkSource type-checks src as the only file of package example.com/app.
// Type errors are tolerated, as the loader tolerates them.
func checkSource(t *testing.T, filename, src string) *discovery.Package {
	t.Helper()

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "/src/example.com/app/"+filename, src, parser.ParseComments)
	require.NoError(t, err)

	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}
	conf := types.Config{
		Importer: &stubImporter{fset: fset, pkgs: make(map[string]*types.Package)},
		Error:    func(error) {},
	}
	pkg, _ := conf.Check("example.com/app", fset, []*ast.File{file}, info)

	return &discovery.Package{
		Path:   "example.com/app",
		Name:   pkg.Name(),
		Dir:    "/src/example.com/app",
		Fset:   fset,
		Syntax: []*ast.File{file},
		Types:  pkg,
		Info:   info,
	}
}

func runFixture(t *testing.T, decls string, opts discovery.Options) (*discovery.Result, error) {
	t.Helper()
	return discovery.New(opts).Run([]*discovery.Package{checkFixture(t, decls)})
}

func unitFor(t *testing.T, res *discovery.Result, typeName string) discovery.Unit {
	t.Helper()
	for _, u := range res.Units {
		if u.TypeName == typeName {
			return u
		}
	}
	require.Failf(t, "unit not found", "no unit for %s in %+v", typeName, res.Units)
	return discovery.Unit{}
}
