package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/dynresolve/internal/ctxlog"
	"github.com/specialistvlad/dynresolve/internal/ctyrt"
	"github.com/specialistvlad/dynresolve/internal/hcl"
	"github.com/specialistvlad/dynresolve/internal/resolve"
	"github.com/specialistvlad/dynresolve/internal/table"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	target resolve.Target

	// One resolver per input runtime: YAML documents become tables, HCL
	// attributes stay cty values.
	tables *resolve.Resolver
	values *resolve.Resolver
}

// NewApp is the constructor for the main application. Results are written to
// outW and logs to logW.
func NewApp(outW, logW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	typ, err := hcl.ParseType(ctx, cfg.TypeExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid type: %w", err)
	}
	target := resolve.TargetOf(typ)
	logger.Debug("Target type parsed.", "expr", cfg.TypeExpr, "type", target.String())

	enc, err := resolve.EncodingByName(cfg.TextEncoding)
	if err != nil {
		return nil, err
	}
	rcfg, err := resolve.NewConfig(resolve.Config{MaxDepth: cfg.MaxDepth, TextEncoding: enc})
	if err != nil {
		return nil, err
	}

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		target: target,
		tables: resolve.New(table.Runtime{}, rcfg),
		values: resolve.New(ctyrt.Runtime{}, rcfg),
	}, nil
}
