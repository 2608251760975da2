package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/opsforge/secplan/internal/config"
)

func testUnit() *config.Unit {
	locationDefault := cty.StringVal("westeurope")
	return &config.Unit{
		Name: "lab",
		Params: []*config.Parameter{
			{Name: "name", Type: cty.String},
			{
				Name:    "location",
				Type:    cty.String,
				Default: &locationDefault,
				Allowed: []cty.Value{cty.StringVal("westeurope"), cty.StringVal("eastus")},
			},
			{Name: "replicas", Type: cty.Number, Default: ptr(cty.NumberIntVal(1))},
		},
	}
}

func ptr(v cty.Value) *cty.Value {
	return &v
}

func TestBindParameters_AcceptsDeclared(t *testing.T) {
	bound, err := BindParameters(context.Background(), testUnit(), map[string]cty.Value{
		"name":     cty.StringVal("edm"),
		"location": cty.StringVal("eastus"),
	})
	require.NoError(t, err)

	require.Equal(t, "edm", bound.Values["name"].AsString())
	require.Equal(t, "eastus", bound.Values["location"].AsString())
	// Omitted optional parameter takes its default.
	require.True(t, bound.Values["replicas"].RawEquals(cty.NumberIntVal(1)))
}

func TestBindParameters_MissingRequired(t *testing.T) {
	_, err := BindParameters(context.Background(), testUnit(), nil)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Error(), "required parameter not supplied")
}

func TestBindParameters_UndeclaredParameter(t *testing.T) {
	_, err := BindParameters(context.Background(), testUnit(), map[string]cty.Value{
		"name":    cty.StringVal("edm"),
		"unknown": cty.StringVal("x"),
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Error(), "not declared")
}

func TestBindParameters_TypeConversion(t *testing.T) {
	bound, err := BindParameters(context.Background(), testUnit(), map[string]cty.Value{
		"name":     cty.StringVal("edm"),
		"replicas": cty.StringVal("3"), // converts to number
	})
	require.NoError(t, err)
	require.True(t, bound.Values["replicas"].RawEquals(cty.NumberIntVal(3)))

	_, err = BindParameters(context.Background(), testUnit(), map[string]cty.Value{
		"name":     cty.StringVal("edm"),
		"replicas": cty.StringVal("many"),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Error(), "does not match declared type")
}

func TestBindParameters_AllowedSet(t *testing.T) {
	_, err := BindParameters(context.Background(), testUnit(), map[string]cty.Value{
		"name":     cty.StringVal("edm"),
		"location": cty.StringVal("australiaeast"),
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Error(), "not in the allowed set")
}

func TestBindParameters_DefaultOnlyWhenOmitted(t *testing.T) {
	// An explicitly supplied empty string is a value, not an omission.
	_, err := BindParameters(context.Background(), testUnit(), map[string]cty.Value{
		"name":     cty.StringVal("edm"),
		"location": cty.StringVal(""),
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Error(), "not in the allowed set")
}

func TestBindParameters_RejectsNull(t *testing.T) {
	_, err := BindParameters(context.Background(), testUnit(), map[string]cty.Value{
		"name": cty.NullVal(cty.String),
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Error(), "null value supplied")
}

func TestBindParameters_DeferredValueSkipsAllowedCheck(t *testing.T) {
	bound, err := BindParameters(context.Background(), testUnit(), map[string]cty.Value{
		"name":     cty.StringVal("edm"),
		"location": cty.UnknownVal(cty.String),
	})
	require.NoError(t, err)
	require.False(t, bound.Values["location"].IsKnown())
}
