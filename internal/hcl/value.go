package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/tryfunc"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/dynresolve/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// functions is the function table available to every expression.
var functions = map[string]function.Function{
	"can":        tryfunc.CanFunc,
	"chunklist":  stdlib.ChunklistFunc,
	"coalesce":   stdlib.CoalesceFunc,
	"concat":     stdlib.ConcatFunc,
	"distinct":   stdlib.DistinctFunc,
	"flatten":    stdlib.FlattenFunc,
	"format":     stdlib.FormatFunc,
	"join":       stdlib.JoinFunc,
	"jsondecode": stdlib.JSONDecodeFunc,
	"jsonencode": stdlib.JSONEncodeFunc,
	"keys":       stdlib.KeysFunc,
	"length":     stdlib.LengthFunc,
	"lower":      stdlib.LowerFunc,
	"merge":      stdlib.MergeFunc,
	"range":      stdlib.RangeFunc,
	"reverse":    stdlib.ReverseListFunc,
	"split":      stdlib.SplitFunc,
	"try":        tryfunc.TryFunc,
	"upper":      stdlib.UpperFunc,
	"values":     stdlib.ValuesFunc,
	"zipmap":     stdlib.ZipmapFunc,
}

// evalContext returns a fresh evaluation context. Expressions have no
// variables.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{Functions: functions}
}

// ParseValue parses and evaluates a single HCL expression.
func ParseValue(ctx context.Context, src []byte, filename string) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing value expression.", "filename", filename, "bytes", len(src))

	expr, diags := hclsyntax.ParseExpression(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("failed to parse expression in %s: %w", filename, diags)
	}
	v, diags := expr.Value(evalContext())
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("failed to evaluate expression in %s: %w", filename, diags)
	}
	logger.Debug("Evaluated value expression.", "type", v.Type().FriendlyName())
	return v, nil
}
