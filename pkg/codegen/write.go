package codegen

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/keyfactory/pkg/discovery"
	"github.com/arthur-debert/keyfactory/pkg/errors"
)

// Status is what happened to one generated file.
type Status string

const (
	StatusWritten   Status = "written"
	StatusUnchanged Status = "unchanged"
	// StatusPending is a file that differs on disk but was not written
	// because of DryRun.
	StatusPending Status = "pending"
	StatusPruned  Status = "pruned"
)

// FileResult is the outcome for one file.
type FileResult struct {
	Path   string
	Type   string
	Status Status
}

// Report lists the files a Write or Prune touched, sorted by path.
type Report struct {
	Files []FileResult
}

// Paths returns the paths of files with the given status.
func (r *Report) Paths(status Status) []string {
	var out []string
	for _, f := range r.Files {
		if f.Status == status {
			out = append(out, f.Path)
		}
	}
	return out
}

// Count returns the number of files with the given status.
func (r *Report) Count(status Status) int {
	return len(r.Paths(status))
}

// Write renders every unit and writes it next to its source, skipping files
// whose content would not change. Units are processed concurrently.
func (g *Generator) Write(ctx context.Context, units []discovery.Unit) (*Report, error) {
	owners := make(map[string]string, len(units))
	for _, u := range units {
		path := g.Path(u)
		if other, ok := owners[path]; ok {
			return nil, errors.Newf(errors.ErrGenerate, "types %s and %s would both be generated to %s", other, u.TypeName, path)
		}
		owners[path] = u.TypeName
	}

	results := make([]FileResult, len(units))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.Workers)

	for i, u := range units {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := g.writeUnit(u)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return &Report{Files: results}, nil
}

func (g *Generator) writeUnit(u discovery.Unit) (FileResult, error) {
	path := g.Path(u)
	res := FileResult{Path: path, Type: u.PkgPath + "." + u.TypeName}

	src, err := g.Render(u)
	if err != nil {
		return res, err
	}

	existing, err := afero.ReadFile(g.fs, path)
	switch {
	case err == nil:
		if bytes.Equal(existing, src) {
			res.Status = StatusUnchanged
			g.logger.Debug().Str("path", path).Msg("Generated file is up to date")
			return res, nil
		}
		if !isGenerated(existing) {
			return res, errors.Newf(errors.ErrFileWrite, "refusing to overwrite %s: not generated by keyfactory", path).
				WithDetail("path", path)
		}
	case !os.IsNotExist(err):
		return res, errors.Wrapf(err, errors.ErrFileAccess, "reading %s", path)
	}

	if g.opts.DryRun {
		res.Status = StatusPending
		g.logger.Info().Str("path", path).Msg("Would write generated file")
		return res, nil
	}

	if err := afero.WriteFile(g.fs, path, src, 0644); err != nil {
		return res, errors.Wrapf(err, errors.ErrFileWrite, "writing %s", path)
	}
	res.Status = StatusWritten
	g.logger.Info().Str("path", path).Str("type", res.Type).Msg("Wrote generated file")
	return res, nil
}

// Prune removes generated files in dirs that are not listed in keep. Only
// files with the configured suffix that carry Header are considered.
func (g *Generator) Prune(dirs []string, keep []string) (*Report, error) {
	kept := make(map[string]bool, len(keep))
	for _, p := range keep {
		kept[filepath.Clean(p)] = true
	}

	seen := make(map[string]bool, len(dirs))
	report := &Report{}
	for _, dir := range dirs {
		dir = filepath.Clean(dir)
		if seen[dir] {
			continue
		}
		seen[dir] = true

		entries, err := afero.ReadDir(g.fs, dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "reading directory %s", dir)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), g.opts.Suffix) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if kept[path] {
				continue
			}
			content, err := afero.ReadFile(g.fs, path)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrFileAccess, "reading %s", path)
			}
			if !isGenerated(content) {
				continue
			}

			status := StatusPruned
			if g.opts.DryRun {
				status = StatusPending
				g.logger.Info().Str("path", path).Msg("Would remove stale generated file")
			} else {
				if err := g.fs.Remove(path); err != nil {
					return nil, errors.Wrapf(err, errors.ErrFileWrite, "removing %s", path)
				}
				g.logger.Info().Str("path", path).Msg("Removed stale generated file")
			}
			report.Files = append(report.Files, FileResult{Path: path, Status: status})
		}
	}

	sort.Slice(report.Files, func(i, j int) bool { return report.Files[i].Path < report.Files[j].Path })
	return report, nil
}

// isGenerated reports whether Header appears before the package clause.
func isGenerated(src []byte) bool {
	sc := bufio.NewScanner(bytes.NewReader(src))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == Header {
			return true
		}
		if strings.HasPrefix(line, "package ") {
			return false
		}
	}
	return false
}
