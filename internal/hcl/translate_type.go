// This file contains the logic for parsing HCL type expressions (e.g., `string`,
// `list(integer)`) into the Go types values are resolved against.

package hcl

import (
	"context"
	"fmt"
	"reflect"
	"unsafe"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/dynresolve/internal/ctxlog"
	"github.com/specialistvlad/dynresolve/internal/dyn"
	"github.com/specialistvlad/dynresolve/internal/resolve"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// keywords maps the primitive type keywords to Go types.
var keywords = map[string]reflect.Type{
	"string":      reflect.TypeFor[string](),
	"bytes":       reflect.TypeFor[[]byte](),
	"blob":        reflect.TypeFor[resolve.Blob](),
	"number":      reflect.TypeFor[float64](),
	"integer":     reflect.TypeFor[int64](),
	"bool":        reflect.TypeFor[bool](),
	"any":         reflect.TypeFor[any](),
	"hashable":    reflect.TypeFor[resolve.Hashable](),
	"handle":      reflect.TypeFor[dyn.Handle](),
	"pointer":     reflect.TypeFor[unsafe.Pointer](),
	"frozen_list": reflect.TypeFor[resolve.FrozenList](),
	"frozen_map":  reflect.TypeFor[resolve.FrozenMap](),
}

// ParseType parses a type expression. An empty expression means any.
func ParseType(ctx context.Context, src string) (reflect.Type, error) {
	if src == "" {
		ctxlog.FromContext(ctx).Debug("Type expression is empty, defaulting to any.")
		return keywords["any"], nil
	}
	expr, diags := hclsyntax.ParseExpression([]byte(src), "<type>", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse type expression %q: %w", src, diags)
	}
	return typeExprToGoType(ctx, expr)
}

// typeExprToGoType converts an HCL type expression into its Go type.
func typeExprToGoType(ctx context.Context, expr hcl.Expression) (reflect.Type, error) {
	logger := ctxlog.FromContext(ctx)

	switch v := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		logger.Debug("Parsing type expression as a function call.", "call", v.Name)
		switch v.Name {
		case "list":
			if len(v.Args) != 1 {
				return nil, fmt.Errorf("type constructor list requires exactly one argument, got %d", len(v.Args))
			}
			elem, err := typeExprToGoType(ctx, v.Args[0])
			if err != nil {
				return nil, err
			}
			return reflect.SliceOf(elem), nil

		case "map":
			if len(v.Args) != 1 && len(v.Args) != 2 {
				return nil, fmt.Errorf("type constructor map requires one or two arguments, got %d", len(v.Args))
			}
			key := keywords["string"]
			if len(v.Args) == 2 {
				var err error
				if key, err = typeExprToGoType(ctx, v.Args[0]); err != nil {
					return nil, err
				}
				if !key.Comparable() {
					return nil, fmt.Errorf("map key type %s is not comparable", key)
				}
			}
			elem, err := typeExprToGoType(ctx, v.Args[len(v.Args)-1])
			if err != nil {
				return nil, err
			}
			logger.Debug("Parsed map type.", "key", key.String(), "value", elem.String())
			return reflect.MapOf(key, elem), nil

		case "array":
			if len(v.Args) != 2 {
				return nil, fmt.Errorf("type constructor array requires exactly two arguments, got %d", len(v.Args))
			}
			elem, err := typeExprToGoType(ctx, v.Args[0])
			if err != nil {
				return nil, err
			}
			n, err := arrayLength(v.Args[1])
			if err != nil {
				return nil, err
			}
			return reflect.ArrayOf(n, elem), nil

		default:
			return nil, fmt.Errorf("unknown type constructor function %q", v.Name)
		}

	case *hclsyntax.ScopeTraversalExpr:
		// Primitive keywords like `string` or `integer`.
		if len(v.Traversal) != 1 {
			return nil, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		rootName := v.Traversal.RootName()
		logger.Debug("Parsing type expression as a primitive.", "keyword", rootName)
		t, ok := keywords[rootName]
		if !ok {
			return nil, fmt.Errorf("unknown primitive type %q", rootName)
		}
		return t, nil

	default:
		return nil, fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}

func arrayLength(expr hcl.Expression) (int, error) {
	lit, ok := expr.(*hclsyntax.LiteralValueExpr)
	if !ok || lit.Val.Type() != cty.Number {
		return 0, fmt.Errorf("array length must be a number literal")
	}
	var n int
	if err := gocty.FromCtyValue(lit.Val, &n); err != nil {
		return 0, fmt.Errorf("invalid array length: %w", err)
	}
	if n < 0 {
		return 0, fmt.Errorf("array length must not be negative, got %d", n)
	}
	return n, nil
}
