package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestRegister_ImplicitAttributes(t *testing.T) {
	c := New()
	c.Register(&ResourceType{
		Type:        "Microsoft.Example/widgets",
		APIVersions: []string{"2024-01-01"},
		Attributes: map[string]cty.Type{
			"endpoint": cty.String,
		},
	})

	rt, ok := c.Lookup("Microsoft.Example/widgets")
	require.True(t, ok)
	require.True(t, rt.HasAttribute("id"))
	require.True(t, rt.HasAttribute("name"))
	require.True(t, rt.HasAttribute("endpoint"))
	require.Equal(t, []string{"endpoint", "id", "name"}, rt.AttributeNames())
}

func TestValidate(t *testing.T) {
	c := New()
	c.Register(&ResourceType{
		Type:        "Microsoft.Example/widgets",
		APIVersions: []string{"2024-01-01", "2023-06-01"},
	})

	require.NoError(t, c.Validate("Microsoft.Example/widgets", "2023-06-01"))

	err := c.Validate("Microsoft.Example/widgets", "2020-01-01")
	require.Error(t, err)
	require.Contains(t, err.Error(), "2020-01-01")

	err = c.Validate("Microsoft.Example/gadgets", "2024-01-01")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown provider type")
}

func TestObjectType(t *testing.T) {
	c := New()
	c.Register(&ResourceType{
		Type:        "Microsoft.Example/widgets",
		APIVersions: []string{"2024-01-01"},
	})

	rt, _ := c.Lookup("Microsoft.Example/widgets")
	obj := rt.ObjectType()
	require.True(t, obj.IsObjectType())
	require.True(t, obj.HasAttribute("id"))

	placeholder := cty.UnknownVal(obj)
	require.False(t, placeholder.GetAttr("id").IsKnown())
}

func TestDefault_CoversLabProviderTypes(t *testing.T) {
	c := Default()

	for _, typ := range []string{
		"Microsoft.Resources/resourceGroups",
		"Microsoft.Security/securityContacts",
		"Microsoft.Security/pricings",
		"Microsoft.OperationalInsights/workspaces",
		"Microsoft.Storage/storageAccounts",
		"Microsoft.KeyVault/vaults",
		"Microsoft.SecurityInsights/alertRules",
	} {
		_, ok := c.Lookup(typ)
		require.True(t, ok, "missing %s", typ)
	}

	require.NoError(t, c.Validate("Microsoft.Security/pricings", "2024-01-01"))

	types := c.Types()
	require.True(t, sortedStrings(types))
}

func sortedStrings(list []string) bool {
	for i := 1; i < len(list); i++ {
		if list[i-1] > list[i] {
			return false
		}
	}
	return true
}
