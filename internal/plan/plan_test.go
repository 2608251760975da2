package plan

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	"sigs.k8s.io/yaml"
)

func TestLiteralValue(t *testing.T) {
	val, err := LiteralValue(cty.ObjectVal(map[string]cty.Value{
		"name": cty.StringVal("lab-rg"),
		"tier": cty.NumberIntVal(2),
	}))
	require.NoError(t, err)
	require.True(t, val.IsLiteral())
	require.JSONEq(t, `{"name":"lab-rg","tier":2}`, string(val.Literal))
}

func TestSymbolicValues(t *testing.T) {
	ref := ReferenceValue("resource.law.id")
	require.False(t, ref.IsLiteral())
	require.Equal(t, "resource.law.id", ref.Reference)

	expr := ExpressionValue(`format("%s-law", param.namePrefix)`)
	require.False(t, expr.IsLiteral())
	require.Empty(t, expr.Reference)
	require.NotEmpty(t, expr.Expression)
}

func TestPlanLookups(t *testing.T) {
	p := New("lab", "subscription")
	require.NotEmpty(t, p.ID)
	require.False(t, p.CreatedAt.IsZero())

	p.Resources = []*Resource{
		{Address: "resource.rg", Type: "Microsoft.Resources/resourceGroups"},
		{Address: "module.defender.resource.servers", Type: "Microsoft.Security/pricings"},
	}

	require.Equal(t, []string{"resource.rg", "module.defender.resource.servers"}, p.Addresses())
	require.NotNil(t, p.Resource("resource.rg"))
	require.Nil(t, p.Resource("resource.nope"))
}

func TestRender_JSON(t *testing.T) {
	p := New("lab", "subscription")
	p.Resources = []*Resource{
		{
			Address:    "resource.rg",
			Type:       "Microsoft.Resources/resourceGroups",
			APIVersion: "2024-03-01",
			Properties: map[string]Value{
				"name": {Literal: json.RawMessage(`"lab-rg"`)},
			},
		},
	}
	p.Summary = Summary{Resources: 1}

	out, err := p.Render(FormatJSON)
	require.NoError(t, err)

	var decoded Plan
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Equal(t, p.ID, decoded.ID)
	require.Equal(t, "resource.rg", decoded.Resources[0].Address)
	require.Equal(t, 1, decoded.Summary.Resources)
}

func TestRender_YAML(t *testing.T) {
	p := New("lab", "subscription")
	p.Outputs = map[string]Value{
		"workspaceId": ReferenceValue("resource.law.id"),
	}

	out, err := p.Render(FormatYAML)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	require.Equal(t, "lab", decoded["unit"])
	require.Equal(t, "subscription", decoded["scope"])
}

func TestRender_UnknownFormat(t *testing.T) {
	_, err := New("lab", "subscription").Render(Format("toml"))
	require.Error(t, err)
}
