package core

import (
	"context"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/arthur-debert/keyfactory/pkg/codegen"
	"github.com/arthur-debert/keyfactory/pkg/config"
	"github.com/arthur-debert/keyfactory/pkg/discovery"
	"github.com/arthur-debert/keyfactory/pkg/errors"
	"github.com/arthur-debert/keyfactory/pkg/loader"
	"github.com/arthur-debert/keyfactory/pkg/logging"
)

// PackageLoader supplies type-checked packages to scan.
type PackageLoader interface {
	Load(ctx context.Context, patterns ...string) ([]*discovery.Package, error)
}

// Options contains the inputs shared by all flows.
type Options struct {
	Config *config.Config
	// Dir is the directory patterns are resolved in.
	Dir string
	// Patterns override Config.Discovery.Patterns when set.
	Patterns []string
	DryRun   bool
	// Fs receives generated files. Defaults to the OS filesystem.
	Fs afero.Fs
	// Loader defaults to a go/packages based loader.
	Loader PackageLoader
}

// Result is the outcome of a flow.
type Result struct {
	Packages    int
	Units       []discovery.Unit
	Diagnostics []discovery.Diagnostic
	// Files are the generated files, sorted by path.
	Files []codegen.FileResult
	// Pruned are stale generated files removed, or pending removal.
	Pruned []codegen.FileResult
	DryRun bool
}

// Bindings returns the number of bindings across all units.
func (r *Result) Bindings() int {
	n := 0
	for _, u := range r.Units {
		n += len(u.Bindings)
	}
	return n
}

// Count returns the number of generated files with the given status.
func (r *Result) Count(status codegen.Status) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}

type scan struct {
	packages []*discovery.Package
	result   *discovery.Result
}

func (o Options) config() *config.Config {
	if o.Config != nil {
		return o.Config
	}
	return config.Default()
}

func (o Options) patterns() []string {
	if len(o.Patterns) > 0 {
		return o.Patterns
	}
	return o.config().Discovery.Patterns
}

func (o Options) generator(dryRun bool) *codegen.Generator {
	cfg := o.config()
	return codegen.New(codegen.Options{
		Suffix:          cfg.Output.Suffix,
		BuildConstraint: cfg.Output.BuildConstraint,
		SkipTag:         cfg.Discovery.SkipTag,
		Workers:         cfg.Output.Workers,
		DryRun:          dryRun,
		Fs:              o.Fs,
	})
}

// discover loads packages and runs the discovery pass with policy.
func discover(ctx context.Context, opts Options, policy discovery.Policy) (*scan, error) {
	logger := logging.GetLogger("core.discover")
	cfg := opts.config()

	l := opts.Loader
	if l == nil {
		l = loader.New(loader.Options{Dir: opts.Dir, SkipTag: cfg.Discovery.SkipTag})
	}

	patterns := opts.patterns()
	pkgs, err := l.Load(ctx, patterns...)
	if err != nil {
		return nil, err
	}
	logger.Debug().Strs("patterns", patterns).Int("packages", len(pkgs)).Msg("Loaded packages")

	pass := discovery.New(discovery.Options{
		MarkerPackage: cfg.Marker.Package,
		TagName:       cfg.Marker.Tag,
		OnInvalid:     policy,
	})
	res, err := pass.Run(pkgs)
	return &scan{packages: pkgs, result: res}, err
}

func configuredPolicy(cfg *config.Config) (discovery.Policy, error) {
	return discovery.ParsePolicy(cfg.Discovery.OnInvalid)
}

// Generate writes the initialization units of every accepted type and
// prunes stale ones. Nothing is written when the invalid-marker policy
// fails the scan.
func Generate(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.GetLogger("core.generate")
	defer logging.LogOperationStart(logger, "generate")()
	cfg := opts.config()

	policy, err := configuredPolicy(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Strs("patterns", opts.patterns()).
		Str("on_invalid", string(policy)).
		Bool("dryRun", opts.DryRun).
		Msg("Starting generation")

	sc, err := discover(ctx, opts, policy)
	if err != nil {
		if sc != nil {
			return newResult(sc, opts.DryRun), err
		}
		return nil, err
	}
	result := newResult(sc, opts.DryRun)

	gen := opts.generator(opts.DryRun)
	report, err := gen.Write(ctx, sc.result.Units)
	if err != nil {
		return result, err
	}
	result.Files = report.Files

	if cfg.Output.Prune {
		pruned, err := prune(gen, sc, report)
		if err != nil {
			return result, err
		}
		result.Pruned = pruned.Files
	}

	logger.Info().
		Int("units", len(result.Units)).
		Int("written", result.Count(codegen.StatusWritten)).
		Int("unchanged", result.Count(codegen.StatusUnchanged)).
		Int("pruned", len(result.Pruned)).
		Msg("Generation completed")
	return result, nil
}

// Check reports rejected markers and generated files that are missing,
// outdated or stale, without writing anything.
func Check(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.GetLogger("core.check")
	defer logging.LogOperationStart(logger, "check")()
	cfg := opts.config()

	sc, err := discover(ctx, opts, discovery.PolicyWarn)
	if err != nil {
		return nil, err
	}
	result := newResult(sc, true)

	gen := opts.generator(true)
	report, err := gen.Write(ctx, sc.result.Units)
	if err != nil {
		return result, err
	}
	result.Files = report.Files

	if cfg.Output.Prune {
		pruned, err := prune(gen, sc, report)
		if err != nil {
			return result, err
		}
		result.Pruned = pruned.Files
	}

	if len(result.Diagnostics) > 0 {
		return result, errors.Newf(errors.ErrCandidateInvalid, "%d invalid registration marker(s)", len(result.Diagnostics)).
			WithDetail("diagnostics", result.Diagnostics)
	}

	outdated := report.Paths(codegen.StatusPending)
	for _, f := range result.Pruned {
		outdated = append(outdated, f.Path)
	}
	if len(outdated) > 0 {
		logger.Info().Strs("files", outdated).Msg("Generated files are out of date")
		return result, errors.Newf(errors.ErrOutOfDate, "%d generated file(s) out of date, run keyfactory generate", len(outdated)).
			WithDetail("files", outdated)
	}
	return result, nil
}

// List discovers marked types without generating anything.
func List(ctx context.Context, opts Options) (*Result, error) {
	sc, err := discover(ctx, opts, discovery.PolicySkip)
	if err != nil {
		return nil, err
	}
	return newResult(sc, true), nil
}

func newResult(sc *scan, dryRun bool) *Result {
	return &Result{
		Packages:    len(sc.packages),
		Units:       sc.result.Units,
		Diagnostics: sc.result.Diagnostics,
		DryRun:      dryRun,
	}
}

func prune(gen *codegen.Generator, sc *scan, report *codegen.Report) (*codegen.Report, error) {
	dirs := make([]string, 0, len(sc.packages))
	for _, pkg := range sc.packages {
		if pkg.Dir != "" {
			dirs = append(dirs, filepath.Clean(pkg.Dir))
		}
	}
	keep := make([]string, 0, len(report.Files))
	for _, f := range report.Files {
		keep = append(keep, f.Path)
	}
	return gen.Prune(dirs, keep)
}
