// Package codegen renders discovery units into Go source files and keeps
// the generated files of scanned directories in sync.
package codegen

import (
	"bytes"
	_ "embed"
	"go/format"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arthur-debert/keyfactory/pkg/discovery"
	"github.com/arthur-debert/keyfactory/pkg/errors"
	"github.com/arthur-debert/keyfactory/pkg/logging"
)

// Header marks files written by keyfactory. Only files carrying it are
// ever overwritten or pruned.
const Header = "// Code generated by keyfactory. DO NOT EDIT."

const (
	DefaultSuffix  = "_factory.go"
	DefaultSkipTag = "keyfactory"
	DefaultWorkers = 4
)

//go:embed unit.go.tmpl
var unitTemplate string

var unitTmpl = template.Must(template.New("unit").Parse(unitTemplate))

// Options configures a Generator.
type Options struct {
	// Suffix is appended to the snake_case type name to form file names.
	Suffix string
	// BuildConstraint guards each file with "//go:build !<SkipTag>".
	BuildConstraint bool
	SkipTag         string
	// Workers bounds concurrent renders and writes.
	Workers int
	// DryRun reports what would change without touching the filesystem.
	DryRun bool
	Fs     afero.Fs
	Logger *zerolog.Logger
}

// Generator renders and writes generated units.
type Generator struct {
	opts   Options
	fs     afero.Fs
	logger zerolog.Logger
}

// New creates a Generator, filling in defaults for unset options.
func New(opts Options) *Generator {
	if opts.Suffix == "" {
		opts.Suffix = DefaultSuffix
	}
	if opts.SkipTag == "" {
		opts.SkipTag = DefaultSkipTag
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	logger := logging.GetLogger("codegen")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Generator{opts: opts, fs: fs, logger: logger}
}

type unitData struct {
	Constraint   string
	Source       string
	Package      string
	StdImports   []discovery.Import
	OtherImports []discovery.Import
	Factory      string
	Reflect      string
	TypeName     string
	Bindings     []discovery.Binding
}

// Render returns the gofmt-ed source of unit.
func (g *Generator) Render(unit discovery.Unit) ([]byte, error) {
	if len(unit.Bindings) == 0 {
		return nil, errors.Newf(errors.ErrGenerate, "unit %s.%s has no bindings", unit.PkgPath, unit.TypeName)
	}

	data := unitData{
		Source:   unit.Source,
		Package:  unit.PkgName,
		Factory:  unit.Factory,
		Reflect:  unit.Reflect,
		TypeName: unit.TypeName,
		Bindings: unit.Bindings,
	}
	if g.opts.BuildConstraint {
		data.Constraint = "!" + g.opts.SkipTag
	}
	for _, imp := range unit.Imports {
		if isStdlib(imp.Path) {
			data.StdImports = append(data.StdImports, imp)
		} else {
			data.OtherImports = append(data.OtherImports, imp)
		}
	}

	var buf bytes.Buffer
	if err := unitTmpl.Execute(&buf, data); err != nil {
		return nil, errors.Wrapf(err, errors.ErrGenerate, "rendering %s.%s", unit.PkgPath, unit.TypeName)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrGenerate, "formatting %s.%s", unit.PkgPath, unit.TypeName).
			WithDetail("source", buf.String())
	}
	return src, nil
}

// FileName returns the base name of the file generated for unit.
func (g *Generator) FileName(unit discovery.Unit) string {
	return SnakeCase(unit.TypeName) + g.opts.Suffix
}

// Path returns where the file generated for unit is written.
func (g *Generator) Path(unit discovery.Unit) string {
	return filepath.Join(unit.Dir, g.FileName(unit))
}

// SnakeCase converts a Go identifier to snake_case, keeping initialisms
// together: "HTTPServer" becomes "http_server".
func SnakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// isStdlib reports whether path looks like a standard library import,
// i.e. its first element has no dot.
func isStdlib(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}
