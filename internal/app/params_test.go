package app

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestParseParams_Typed(t *testing.T) {
	params, err := ParseParams([]string{
		"enableOpenAI=false",
		"retentionDays=30",
		"location=westeurope",
		`tags={env="lab"}`,
	})
	require.NoError(t, err)

	require.True(t, params["enableOpenAI"].RawEquals(cty.False))
	require.True(t, params["retentionDays"].RawEquals(cty.NumberIntVal(30)))
	// Bare words are not valid expressions without quoting, so they fall
	// back to plain strings.
	require.True(t, params["location"].RawEquals(cty.StringVal("westeurope")))
	require.True(t, params["tags"].RawEquals(cty.ObjectVal(map[string]cty.Value{
		"env": cty.StringVal("lab"),
	})))
}

func TestParseParams_QuotedString(t *testing.T) {
	params, err := ParseParams([]string{`email="secops@example.com"`})
	require.NoError(t, err)
	require.True(t, params["email"].RawEquals(cty.StringVal("secops@example.com")))
}

func TestParseParams_ValueWithEquals(t *testing.T) {
	params, err := ParseParams([]string{"query=count == 1"})
	require.NoError(t, err)
	require.Equal(t, cty.String, params["query"].Type())
}

func TestParseParams_Errors(t *testing.T) {
	_, err := ParseParams([]string{"noequals"})
	require.Error(t, err)

	_, err = ParseParams([]string{"=value"})
	require.Error(t, err)

	_, err = ParseParams([]string{"a=1", "a=2"})
	require.Error(t, err)
}

func TestParseParams_Empty(t *testing.T) {
	params, err := ParseParams(nil)
	require.NoError(t, err)
	require.Nil(t, params)
}
