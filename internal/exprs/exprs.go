// Package exprs provides shared helpers for working with HCL expressions:
// a canonical rendering for traversals, source-snippet extraction, and the
// function table available inside deployment unit expressions.
package exprs

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// TraversalKey generates a stable, canonical string representation for an
// hcl.Traversal, suitable for use as a map key or a plan reference.
func TraversalKey(t hcl.Traversal) string {
	// e.g., resource.workspace.id
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// RenderExpr returns the source text of an expression, given the bytes of
// the file it was parsed from. Used for symbolic values in plan output.
func RenderExpr(src []byte, expr hcl.Expression) string {
	if src == nil || expr == nil {
		return ""
	}
	return strings.TrimSpace(string(expr.Range().SliceBytes(src)))
}

// Functions returns the function table available to all unit expressions:
// conditions, defaults, property values, and module bindings.
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"format":   stdlib.FormatFunc,
		"join":     stdlib.JoinFunc,
		"lower":    stdlib.LowerFunc,
		"upper":    stdlib.UpperFunc,
		"coalesce": stdlib.CoalesceFunc,
		"concat":   stdlib.ConcatFunc,
		"length":   stdlib.LengthFunc,
		"merge":    stdlib.MergeFunc,
	}
}
