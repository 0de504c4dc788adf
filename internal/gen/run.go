package gen

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bindweave/bindweave/internal/depgraph"
	"github.com/bindweave/bindweave/internal/diag"
	"github.com/bindweave/bindweave/internal/extract"
	"github.com/bindweave/bindweave/internal/model"
	"github.com/bindweave/bindweave/internal/render"
	"github.com/bindweave/bindweave/internal/source"
	"github.com/bindweave/bindweave/internal/typemap"
)

// Options configures one generation run.
type Options struct {
	// Backends selects which targets to render. Empty means all.
	Backends []typemap.Backend

	// Package is the Java package or .NET namespace.
	Package string

	// Library is the native library name.
	Library string

	// Prefix is prepended to exported symbol names.
	Prefix string

	// StripDocs drops source doc comments from the output.
	StripDocs bool

	// Logger receives per-phase progress; nil discards.
	Logger *slog.Logger
}

func (o *Options) backends() []typemap.Backend {
	if len(o.Backends) == 0 {
		return typemap.All
	}
	want := make(map[typemap.Backend]bool, len(o.Backends))
	for _, b := range o.Backends {
		want[b] = true
	}
	// Canonical order regardless of how the caller listed them.
	var out []typemap.Backend
	for _, b := range typemap.All {
		if want[b] {
			out = append(out, b)
		}
	}
	return out
}

// Run executes the full pipeline over the parsed modules and returns the
// per-backend outputs with all collected diagnostics. Run never writes
// files; the caller owns output placement.
func Run(ctx context.Context, modules []source.Module, opts Options) *Report {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	report := &Report{RunID: uuid.NewString()}
	log = log.With("run_id", report.RunID)

	shared := &diag.Collector{}
	raws := extract.Extract(modules, shared)
	m := model.Build(raws, shared)
	log.Info("model built",
		"modules", len(modules),
		"extracted", len(raws),
		"declarations", m.Len())

	g := depgraph.Build(m)
	if cycleErr := g.Err(); cycleErr != nil {
		shared.Add(cycleErr)
		report.Diags = shared.All()
		log.Error("dependency ordering failed", "error", cycleErr)
		return report
	}
	order := g.Order()
	report.Diags = shared.All()

	backends := opts.backends()
	results := make([]Output, len(backends))
	renderOpts := render.Options{
		Package:   opts.Package,
		Library:   opts.Library,
		Prefix:    opts.Prefix,
		StripDocs: opts.StripDocs,
	}

	// One goroutine per backend over the read-only model. Render
	// functions never fail; mapping failures land in the per-backend
	// collector instead.
	eg, _ := errgroup.WithContext(ctx)
	for i, backend := range backends {
		i, backend := i, backend
		eg.Go(func() error {
			c := &diag.Collector{}
			var res render.Result
			switch backend {
			case typemap.BackendC:
				res = render.C(m, g, order, renderOpts, c)
			case typemap.BackendJava:
				res = render.Java(m, g, order, renderOpts, c)
			case typemap.BackendDotNet:
				res = render.DotNet(m, g, order, renderOpts, c)
			}
			results[i] = Output{
				Backend:  backend,
				Text:     res.Text,
				Rendered: res.Rendered,
				Diags:    c.All(),
			}
			log.Info("backend rendered",
				"backend", string(backend),
				"declarations", res.Rendered,
				"diagnostics", len(c.All()))
			return nil
		})
	}
	// The group never carries an error; Wait only joins the goroutines.
	_ = eg.Wait()

	report.Outputs = results
	return report
}
