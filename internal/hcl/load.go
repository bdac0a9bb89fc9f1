package hcl

import (
	"context"
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/dynresolve/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Attribute is an evaluated top-level attribute.
type Attribute struct {
	Name  string
	Value cty.Value
	Range hcl.Range
}

// LoadFile parses the HCL file at path and evaluates its attributes.
func LoadFile(ctx context.Context, path string) ([]Attribute, error) {
	ctxlog.FromContext(ctx).Debug("Loading HCL file.", "path", path)

	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return evaluateBody(ctx, file.Body, path)
}

// ParseAttributes parses src as an HCL body and evaluates its attributes.
func ParseAttributes(ctx context.Context, src []byte, filename string) ([]Attribute, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return evaluateBody(ctx, file.Body, filename)
}

// evaluateBody evaluates every attribute of body in source order. Blocks are
// not allowed.
func evaluateBody(ctx context.Context, body hcl.Body, filename string) ([]Attribute, error) {
	logger := ctxlog.FromContext(ctx)

	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to read attributes of %s: %w", filename, diags)
	}

	sorted := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		sorted = append(sorted, attr)
	}
	slices.SortFunc(sorted, func(a, b *hcl.Attribute) int {
		return a.Range.Start.Byte - b.Range.Start.Byte
	})

	evalCtx := evalContext()
	out := make([]Attribute, 0, len(sorted))
	for _, attr := range sorted {
		v, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to evaluate attribute %q in %s: %w", attr.Name, filename, diags)
		}
		out = append(out, Attribute{Name: attr.Name, Value: v, Range: attr.Range})
	}
	logger.Debug("Evaluated HCL attributes.", "filename", filename, "count", len(out))
	return out, nil
}
