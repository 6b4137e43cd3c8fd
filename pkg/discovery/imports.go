package discovery

import (
	"go/types"
	"sort"
	"strconv"
)

// Import is one import spec of a generated file.
type Import struct {
	Name string
	Path string
	// Renamed is set when Name differs from the imported package's own name.
	Renamed bool
}

// imports qualifies identifiers for a file generated into pkg and records
// the imports that qualification needs. Import names never collide with
// each other or with pkg's package-level identifiers.
type imports struct {
	pkg    *types.Package
	byPath map[string]Import
	taken  map[string]bool
}

func newImports(pkg *types.Package) *imports {
	im := &imports{
		pkg:    pkg,
		byPath: make(map[string]Import),
		taken:  make(map[string]bool),
	}
	for _, name := range pkg.Scope().Names() {
		im.taken[name] = true
	}
	return im
}

// add returns the name under which path is imported, adding the import if
// needed. An empty result means path is the generated file's own package.
func (im *imports) add(path, name string) string {
	if path == im.pkg.Path() {
		return ""
	}
	if imp, ok := im.byPath[path]; ok {
		return imp.Name
	}

	alias := name
	for i := 2; im.taken[alias]; i++ {
		alias = name + strconv.Itoa(i)
	}
	im.taken[alias] = true
	im.byPath[path] = Import{Name: alias, Path: path, Renamed: alias != name}
	return alias
}

func (im *imports) qualifier(p *types.Package) string {
	return im.add(p.Path(), p.Name())
}

func (im *imports) typeString(t types.Type) string {
	return types.TypeString(t, im.qualifier)
}

// ref returns the qualified reference to a package-level object.
func (im *imports) ref(obj types.Object) string {
	if name := im.qualifier(obj.Pkg()); name != "" {
		return name + "." + obj.Name()
	}
	return obj.Name()
}

// selector returns "name." for an imported package, or "" for the file's
// own package.
func (im *imports) selector(path, name string) string {
	if alias := im.add(path, name); alias != "" {
		return alias + "."
	}
	return ""
}

func (im *imports) list() []Import {
	out := make([]Import, 0, len(im.byPath))
	for _, imp := range im.byPath {
		out = append(out, imp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
