package catalog

import (
	"github.com/zclconf/go-cty/cty"
)

// Default returns the catalog of provider types the security-lab templates
// declare. The attribute sets cover the fields downstream declarations
// actually dereference, not the providers' full schemas.
func Default() *Catalog {
	c := New()

	c.Register(&ResourceType{
		Type:        "Microsoft.Resources/resourceGroups",
		APIVersions: []string{"2024-03-01", "2023-07-01"},
		Attributes: map[string]cty.Type{
			"location": cty.String,
		},
	})

	c.Register(&ResourceType{
		Type:        "Microsoft.Security/securityContacts",
		APIVersions: []string{"2023-12-01-preview", "2020-01-01-preview"},
	})

	c.Register(&ResourceType{
		Type:        "Microsoft.Security/pricings",
		APIVersions: []string{"2024-01-01", "2023-01-01"},
		Attributes: map[string]cty.Type{
			"pricingTier": cty.String,
		},
	})

	c.Register(&ResourceType{
		Type:        "Microsoft.OperationalInsights/workspaces",
		APIVersions: []string{"2023-09-01", "2022-10-01"},
		Attributes: map[string]cty.Type{
			"customerId": cty.String,
		},
	})

	c.Register(&ResourceType{
		Type:        "Microsoft.Storage/storageAccounts",
		APIVersions: []string{"2023-05-01", "2023-01-01"},
		Attributes: map[string]cty.Type{
			"primaryBlobEndpoint": cty.String,
		},
	})

	c.Register(&ResourceType{
		Type:        "Microsoft.Storage/storageAccounts/blobServices/containers",
		APIVersions: []string{"2023-05-01", "2023-01-01"},
	})

	c.Register(&ResourceType{
		Type:        "Microsoft.CognitiveServices/accounts",
		APIVersions: []string{"2024-10-01", "2023-05-01"},
		Attributes: map[string]cty.Type{
			"endpoint": cty.String,
		},
	})

	c.Register(&ResourceType{
		Type:        "Microsoft.CognitiveServices/accounts/deployments",
		APIVersions: []string{"2024-10-01", "2023-05-01"},
	})

	c.Register(&ResourceType{
		Type:        "Microsoft.KeyVault/vaults",
		APIVersions: []string{"2023-07-01", "2022-07-01"},
		Attributes: map[string]cty.Type{
			"vaultUri": cty.String,
		},
	})

	c.Register(&ResourceType{
		Type:        "Microsoft.SecurityInsights/alertRules",
		APIVersions: []string{"2023-12-01-preview", "2023-02-01"},
	})

	return c
}
