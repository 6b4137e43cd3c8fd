// Package loader enumerates and type-checks the packages the discovery
// pass scans.
package loader

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/tools/go/packages"

	"github.com/arthur-debert/keyfactory/pkg/discovery"
	"github.com/arthur-debert/keyfactory/pkg/errors"
	"github.com/arthur-debert/keyfactory/pkg/logging"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports |
	packages.NeedDeps

// Options configures a Loader.
type Options struct {
	// Dir is the directory patterns are resolved in. Empty means the
	// current directory.
	Dir string
	// SkipTag is passed as a build tag so previously generated units, which
	// are guarded by "//go:build !<SkipTag>", are left out of the scan.
	SkipTag string
	Env     []string
	Logger  *zerolog.Logger
}

// Loader lists and type-checks packages with the go command.
type Loader struct {
	opts   Options
	logger zerolog.Logger
}

// New creates a Loader.
func New(opts Options) *Loader {
	logger := logging.GetLogger("loader")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Loader{opts: opts, logger: logger}
}

// Load resolves patterns and returns the matched packages ready for
// discovery. Type errors inside a package are logged and tolerated; a
// package that could not be listed at all fails the load.
func (l *Loader) Load(ctx context.Context, patterns ...string) ([]*discovery.Package, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     l.opts.Dir,
		Env:     l.opts.Env,
		Logf: func(format string, args ...interface{}) {
			l.logger.Trace().Msgf(format, args...)
		},
	}
	if l.opts.SkipTag != "" {
		cfg.BuildFlags = []string{"-tags=" + l.opts.SkipTag}
	}

	l.logger.Debug().
		Strs("patterns", patterns).
		Str("dir", l.opts.Dir).
		Str("skip_tag", l.opts.SkipTag).
		Msg("Loading packages")

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLoadPackages, "failed to load %s", strings.Join(patterns, " "))
	}

	var (
		out    []*discovery.Package
		failed []string
	)
	for _, pkg := range pkgs {
		if listErr := listError(pkg); listErr != "" {
			failed = append(failed, listErr)
			continue
		}
		for _, e := range pkg.Errors {
			l.logger.Debug().Str("package", pkg.PkgPath).Str("error", e.Error()).Msg("Tolerating package error")
		}
		out = append(out, convert(pkg))
	}

	if len(failed) > 0 {
		return nil, errors.Newf(errors.ErrLoadPackages, "failed to list packages:\n- %s", strings.Join(failed, "\n- ")).
			WithDetail("patterns", patterns)
	}

	l.logger.Debug().Int("packages", len(out)).Msg("Packages loaded")
	return out, nil
}

// listError returns the first error that kept the go command from
// listing pkg, or "" when pkg was listed.
func listError(pkg *packages.Package) string {
	if pkg.Types != nil && len(pkg.Syntax) > 0 {
		return ""
	}
	for _, e := range pkg.Errors {
		if e.Kind == packages.ListError {
			return e.Error()
		}
	}
	if len(pkg.GoFiles) == 0 && len(pkg.Errors) > 0 {
		return pkg.Errors[0].Error()
	}
	return ""
}

func convert(pkg *packages.Package) *discovery.Package {
	out := &discovery.Package{
		Path:   pkg.PkgPath,
		Name:   pkg.Name,
		Fset:   pkg.Fset,
		Syntax: pkg.Syntax,
		Types:  pkg.Types,
		Info:   pkg.TypesInfo,
	}
	if len(pkg.GoFiles) > 0 {
		out.Dir = filepath.Dir(pkg.GoFiles[0])
	}
	return out
}
