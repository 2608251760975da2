package app

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/opsforge/secplan/internal/exprs"
)

// ParseParams converts name=value CLI arguments into parameter values. The
// value side is parsed as an HCL expression so booleans, numbers, lists,
// and objects come through typed (`-p enableOpenAI=false`,
// `-p tags={env="lab"}`); anything that does not parse or evaluate as a
// static expression is taken as a plain string.
func ParseParams(args []string) (map[string]cty.Value, error) {
	if len(args) == 0 {
		return nil, nil
	}

	params := make(map[string]cty.Value, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected name=value", arg)
		}
		if _, dup := params[name]; dup {
			return nil, fmt.Errorf("parameter %q supplied more than once", name)
		}
		params[name] = parseParamValue(raw)
	}
	return params, nil
}

func parseParamValue(raw string) cty.Value {
	expr, diags := hclsyntax.ParseExpression([]byte(raw), "<param>", hcl.InitialPos)
	if diags.HasErrors() || len(expr.Variables()) > 0 {
		return cty.StringVal(raw)
	}

	val, diags := expr.Value(&hcl.EvalContext{Functions: exprs.Functions()})
	if diags.HasErrors() {
		return cty.StringVal(raw)
	}
	return val
}
