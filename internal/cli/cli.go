package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/dynresolve/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("dynresolve", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
dynresolve - Resolve dynamic values from HCL and YAML documents into typed data.

Usage:
  dynresolve [options] PATH...

Arguments:
  PATH
    An .hcl, .yaml or .yml file, or a directory searched for them. Every
    top-level attribute or mapping entry is resolved against the type.

Type expressions:
  string bytes blob number integer bool any hashable handle pointer
  frozen_list frozen_map list(T) map(V) map(K, V) array(T, N)

Options:
`)
		flagSet.PrintDefaults()
	}

	typeFlag := flagSet.String("type", "any", "Type expression every entry is resolved against.")
	tFlag := flagSet.String("t", "", "Type expression (shorthand).")
	attrFlag := flagSet.String("attr", "", "Resolve only the entry with this name.")
	outputFlag := flagSet.String("output", app.OutputYAML, "Result format. Options: 'yaml', 'json' or 'dump'.")
	encodingFlag := flagSet.String("encoding", "utf-8", "Text encoding of strings. Options: 'utf-8', 'latin1', 'windows-1252', 'utf-16le', 'utf-16be'.")
	maxDepthFlag := flagSet.Int("max-depth", 0, "Maximum nesting depth. 0 uses the default.")
	workersFlag := flagSet.Int("workers", 4, "Number of files resolved concurrently.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() == 0 {
		slog.Debug("No input path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	typeExpr := *typeFlag
	if *tFlag != "" {
		typeExpr = *tFlag
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Paths:        flagSet.Args(),
		TypeExpr:     typeExpr,
		Attribute:    *attrFlag,
		OutputFormat: strings.ToLower(*outputFlag),
		LogFormat:    logFormat,
		LogLevel:     logLevel,
		WorkerCount:  *workersFlag,
		MaxDepth:     *maxDepthFlag,
		TextEncoding: strings.ToLower(*encodingFlag),
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
