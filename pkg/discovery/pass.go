package discovery

import (
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/keyfactory/pkg/logging"
)

// DefaultMarkerPackage is the import path of the package declaring
// Registration.
const DefaultMarkerPackage = "github.com/arthur-debert/keyfactory/pkg/factory"

// DefaultTagName is the struct tag key carrying the marker key.
const DefaultTagName = "factory"

// Options configures a Pass.
type Options struct {
	MarkerPackage string
	TagName       string
	OnInvalid     Policy
	Logger        *zerolog.Logger
}

// Binding is one accepted marker, ready to be rendered.
type Binding struct {
	// Base and KeyType are the type arguments as spelled in the generated file.
	Base    string
	KeyType string
	Key     Key
	// Construct builds a new instance, e.g. "&CreateHandler{}".
	Construct string
	Pos       token.Position
}

// Unit is the generated initialization unit of one concrete type.
type Unit struct {
	PkgPath string
	PkgName string
	Dir     string
	// TypeName is the concrete type the unit registers.
	TypeName string
	// Source is the file declaring TypeName.
	Source   string
	Imports  []Import
	Factory  string
	Reflect  string
	Bindings []Binding
}

// Result is the outcome of one Run.
type Result struct {
	Units       []Unit
	Diagnostics []Diagnostic
}

// Pass finds marked types in type-checked packages. It keeps no state
// between runs.
type Pass struct {
	opts   Options
	logger zerolog.Logger
}

// New creates a Pass, filling in defaults for unset options.
func New(opts Options) *Pass {
	if opts.MarkerPackage == "" {
		opts.MarkerPackage = DefaultMarkerPackage
	}
	if opts.TagName == "" {
		opts.TagName = DefaultTagName
	}
	if opts.OnInvalid == "" {
		opts.OnInvalid = PolicySkip
	}
	logger := logging.GetLogger("discovery")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Pass{opts: opts, logger: logger}
}

// Run scans pkgs and returns one Unit per accepted candidate, in source
// order. With PolicyError, rejected markers also produce an error; the
// Result is complete either way.
func (p *Pass) Run(pkgs []*Package) (*Result, error) {
	res := &Result{}

	for _, pkg := range pkgs {
		if pkg.Types == nil || pkg.Info == nil {
			p.logger.Debug().Str("package", pkg.Path).Msg("Skipping package without type information")
			continue
		}
		for _, file := range pkg.Syntax {
			filename := pkg.Fset.Position(file.Pos()).Filename
			if strings.HasSuffix(filename, "_test.go") {
				continue
			}
			for _, decl := range file.Decls {
				gen, ok := decl.(*ast.GenDecl)
				if !ok || gen.Tok != token.TYPE {
					continue
				}
				for _, spec := range gen.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok || !Prefilter(ts) {
						continue
					}
					unit, diags := p.candidate(pkg, filename, ts)
					for _, d := range diags {
						p.report(d)
					}
					res.Diagnostics = append(res.Diagnostics, diags...)
					if unit != nil {
						res.Units = append(res.Units, *unit)
					}
				}
			}
		}
	}

	p.logger.Debug().
		Int("units", len(res.Units)).
		Int("rejected", len(res.Diagnostics)).
		Msg("Discovery pass completed")

	if p.opts.OnInvalid == PolicyError && len(res.Diagnostics) > 0 {
		return res, diagnosticsError(res.Diagnostics)
	}
	return res, nil
}

func (p *Pass) report(d Diagnostic) {
	var event *zerolog.Event
	if p.opts.OnInvalid == PolicySkip {
		event = p.logger.Debug()
	} else {
		event = p.logger.Warn()
	}
	event.
		Str("type", d.Package+"."+d.TypeName).
		Str("reason", string(d.Reason)).
		Str("position", d.Pos.String()).
		Msg(d.Message)
}

func (p *Pass) candidate(pkg *Package, filename string, ts *ast.TypeSpec) (*Unit, []Diagnostic) {
	if ts.Assign.IsValid() {
		return nil, nil
	}
	obj, ok := pkg.Info.Defs[ts.Name].(*types.TypeName)
	if !ok {
		return nil, nil
	}
	named, ok := obj.Type().(*types.Named)
	if !ok {
		return nil, nil
	}

	var (
		markers   []*ast.Field
		markerPkg string
	)
	for _, field := range ts.Type.(*ast.StructType).Fields.List {
		if id := markerIdent(field.Type); id != nil && isMarker(pkg.Info, id, p.opts.MarkerPackage) {
			markers = append(markers, field)
			markerPkg = pkg.Info.Uses[id].Pkg().Name()
		}
	}
	if len(markers) == 0 {
		p.logger.Trace().Str("type", obj.Name()).Msg("Marker-like field does not refer to the marker package")
		return nil, nil
	}

	reject := func(field *ast.Field, reason Reason, msg string) Diagnostic {
		return Diagnostic{
			Pos:      pkg.Fset.Position(field.Pos()),
			Package:  pkg.Path,
			TypeName: obj.Name(),
			Reason:   reason,
			Message:  msg,
		}
	}

	if named.TypeParams().Len() > 0 {
		return nil, []Diagnostic{reject(markers[0], ReasonGeneric, "generic types cannot be constructed without type arguments")}
	}

	type accepted struct {
		meta      Metadata
		key       resolvedKey
		construct string
	}
	var (
		diags []Diagnostic
		valid []accepted
	)
	for _, field := range markers {
		m := extractMetadata(pkg.Info, field, p.opts.TagName)
		switch {
		case m.Base == nil:
			diags = append(diags, reject(field, ReasonMissingBase, "base type is missing or unresolved"))
			continue
		case m.KeyType == nil:
			diags = append(diags, reject(field, ReasonUnresolvedKeyType, "key type is missing or unresolved"))
			continue
		case !types.Comparable(m.KeyType):
			diags = append(diags, reject(field, ReasonUnresolvedKeyType, "key type "+m.KeyType.String()+" is not comparable"))
			continue
		case !m.HasKey || m.Key == "":
			diags = append(diags, reject(field, ReasonMissingKey, "`"+p.opts.TagName+"` tag is missing or empty"))
			continue
		}

		var construct string
		switch {
		case types.AssignableTo(types.NewPointer(named), m.Base):
			construct = "&" + obj.Name() + "{}"
		case types.AssignableTo(named, m.Base):
			construct = obj.Name() + "{}"
		default:
			diags = append(diags, reject(field, ReasonNotAssignable, obj.Name()+" does not implement "+m.Base.String()))
			continue
		}

		resolver := &keyResolver{fset: pkg.Fset, pkg: pkg.Types, pos: field.Pos()}
		key, kerr := resolver.resolve(m.KeyType, m.Key)
		if kerr != nil {
			reason := ReasonInvalidKey
			if kerr.missing {
				reason = ReasonMissingKey
			}
			diags = append(diags, reject(field, reason, kerr.Error()))
			continue
		}
		valid = append(valid, accepted{meta: m, key: key, construct: construct})
	}

	if len(valid) == 0 {
		return nil, diags
	}

	im := newImports(pkg.Types)
	unit := &Unit{
		PkgPath:  pkg.Path,
		PkgName:  pkg.Types.Name(),
		Dir:      pkg.Dir,
		TypeName: obj.Name(),
		Source:   filepath.Base(filename),
		Factory:  im.selector(p.opts.MarkerPackage, markerPkg),
		Reflect:  im.selector("reflect", "reflect"),
	}
	for _, a := range valid {
		unit.Bindings = append(unit.Bindings, Binding{
			Base:      im.typeString(a.meta.Base),
			KeyType:   im.typeString(a.meta.KeyType),
			Key:       a.key.render(im),
			Construct: a.construct,
			Pos:       pkg.Fset.Position(a.meta.Pos),
		})
	}
	unit.Imports = im.list()
	if unit.Dir == "" {
		unit.Dir = filepath.Dir(filename)
	}

	p.logger.Debug().
		Str("type", pkg.Path+"."+obj.Name()).
		Int("bindings", len(unit.Bindings)).
		Msg("Accepted candidate")
	return unit, diags
}
