package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/dynresolve/internal/resolve"
)

// Output formats.
const (
	OutputYAML = "yaml"
	OutputJSON = "json"
	OutputDump = "dump"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Paths     []string // .hcl, .yaml and .yml files or directories
	TypeExpr  string   // HCL type expression; empty means any
	Attribute string   // resolve only this entry of every document

	OutputFormat string
	LogFormat    string
	LogLevel     string
	WorkerCount  int
	MaxDepth     int
	TextEncoding string
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("Paths is a required configuration field and cannot be empty")
	}

	switch cfg.OutputFormat {
	case "":
		cfg.OutputFormat = OutputYAML
	case OutputYAML, OutputJSON, OutputDump:
	default:
		return nil, fmt.Errorf("unknown output format %q", cfg.OutputFormat)
	}

	if cfg.WorkerCount < 0 {
		return nil, fmt.Errorf("WorkerCount must not be negative, got %d", cfg.WorkerCount)
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 1
	}
	if cfg.MaxDepth < 0 {
		return nil, fmt.Errorf("MaxDepth must not be negative, got %d", cfg.MaxDepth)
	}
	if _, err := resolve.EncodingByName(cfg.TextEncoding); err != nil {
		return nil, err
	}

	return &cfg, nil
}
