// Package catalog holds the table of provider resource types the planner
// knows how to validate: their accepted API versions and the attributes a
// declaration of that type exports to the rest of the deployment graph.
package catalog

import (
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// ResourceType describes one provider-managed resource type.
type ResourceType struct {
	// Type is the full provider type string, e.g. "Microsoft.Security/pricings".
	Type string

	// APIVersions lists the versions the catalog accepts for this type.
	APIVersions []string

	// Attributes are the values a declaration of this type exports. Every
	// type exports at least "id" and "name".
	Attributes map[string]cty.Type
}

// SupportsVersion reports whether the given API version is accepted.
func (rt *ResourceType) SupportsVersion(version string) bool {
	for _, v := range rt.APIVersions {
		if v == version {
			return true
		}
	}
	return false
}

// HasAttribute reports whether the type exports the named attribute.
func (rt *ResourceType) HasAttribute(name string) bool {
	_, ok := rt.Attributes[name]
	return ok
}

// AttributeNames returns the exported attribute names in sorted order.
func (rt *ResourceType) AttributeNames() []string {
	names := make([]string, 0, len(rt.Attributes))
	for name := range rt.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ObjectType returns the cty object type describing a reference to an
// instance of this resource type. Planner evaluation contexts use it to
// build typed placeholder values for not-yet-materialized resources.
func (rt *ResourceType) ObjectType() cty.Type {
	return cty.Object(rt.Attributes)
}

// Catalog is a lookup table of provider resource types.
type Catalog struct {
	types map[string]*ResourceType
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{types: make(map[string]*ResourceType)}
}

// Register adds a resource type to the catalog, guaranteeing the implicit
// id/name attributes. Registering the same type twice overwrites the
// earlier entry.
func (c *Catalog) Register(rt *ResourceType) {
	if rt.Attributes == nil {
		rt.Attributes = make(map[string]cty.Type)
	}
	if _, ok := rt.Attributes["id"]; !ok {
		rt.Attributes["id"] = cty.String
	}
	if _, ok := rt.Attributes["name"]; !ok {
		rt.Attributes["name"] = cty.String
	}
	c.types[rt.Type] = rt
}

// Lookup returns the resource type entry for the given provider type string.
func (c *Catalog) Lookup(providerType string) (*ResourceType, bool) {
	rt, ok := c.types[providerType]
	return rt, ok
}

// Validate checks a declared provider type and API version against the
// catalog.
func (c *Catalog) Validate(providerType, apiVersion string) error {
	rt, ok := c.types[providerType]
	if !ok {
		return fmt.Errorf("unknown provider type %q", providerType)
	}
	if !rt.SupportsVersion(apiVersion) {
		return fmt.Errorf("provider type %q does not support api_version %q (known: %v)", providerType, apiVersion, rt.APIVersions)
	}
	return nil
}

// Types returns the registered provider type strings in sorted order.
func (c *Catalog) Types() []string {
	names := make([]string, 0, len(c.types))
	for name := range c.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
