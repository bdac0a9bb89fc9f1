package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/dynresolve/internal/ctxlog"
	"github.com/specialistvlad/dynresolve/internal/fsutil"
	"golang.org/x/sync/errgroup"
)

// ErrUnresolved is returned by Run when at least one entry has no
// representation of the requested type.
var ErrUnresolved = errors.New("some entries could not be resolved")

// Result is the outcome of resolving one top-level entry.
type Result struct {
	File  string
	Name  string
	OK    bool
	Value any
}

// Run resolves every input and writes the results to the output writer.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	results, err := a.Resolve(ctx)
	if err != nil {
		return err
	}
	if err := render(a.outW, a.config.OutputFormat, results); err != nil {
		return fmt.Errorf("failed to render results: %w", err)
	}

	unresolved := 0
	for _, r := range results {
		if !r.OK {
			unresolved++
		}
	}
	a.logger.Info("Resolution finished.", "entries", len(results), "unresolved", unresolved)
	if unresolved > 0 {
		return fmt.Errorf("%w: %d of %d", ErrUnresolved, unresolved, len(results))
	}
	return nil
}

// Resolve loads all input files and resolves their entries. Files are
// processed concurrently by up to WorkerCount workers; results keep the
// order of files and of entries within a file.
func (a *App) Resolve(ctx context.Context) ([]Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	files, err := fsutil.FindFiles(a.config.Paths, inputExtensions...)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Discovered input files.", "count", len(files), "workers", a.config.WorkerCount)

	perFile := make([][]Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.WorkerCount)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := a.loadDocument(gctx, path)
			if err != nil {
				return err
			}
			res, err := a.resolveDocument(gctx, doc)
			if err != nil {
				return fmt.Errorf("in %s: %w", path, err)
			}
			perFile[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var results []Result
	for _, res := range perFile {
		results = append(results, res...)
	}
	return results, nil
}

func (a *App) resolveDocument(ctx context.Context, doc *document) ([]Result, error) {
	logger := ctxlog.FromContext(ctx).With("file", doc.path)
	r := a.tables
	if doc.hcl {
		r = a.values
	}

	var results []Result
	for _, e := range doc.entries {
		if a.config.Attribute != "" && e.name != a.config.Attribute {
			continue
		}
		v, ok, err := r.ResolveTarget(ctx, e.value, a.target)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", e.name, err)
		}
		if !ok {
			logger.Warn("No representation matches the requested type.", "entry", e.name, "type", a.target.String())
		}
		results = append(results, Result{File: doc.path, Name: e.name, OK: ok, Value: v})
	}
	logger.Debug("Document resolved.", "entries", len(results))
	return results, nil
}
