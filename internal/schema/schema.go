// Package schema defines the HCL-specific decoding structures for deployment
// unit files. These structs are populated by gohcl and then translated into
// the format-agnostic model in the config package.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// UnitHeader represents the single `unit` block that opens a unit file.
type UnitHeader struct {
	Name  string `hcl:"name,label"`
	Scope string `hcl:"scope,optional"`
}

// Param represents a `param` block: one typed input of a deployment unit.
type Param struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Default     hcl.Expression `hcl:"default,optional"`
	Allowed     hcl.Expression `hcl:"allowed,optional"`
	Description string         `hcl:"description,optional"`
}

// PropertiesBlock holds the raw body of a resource's `properties` block. The
// attributes stay undecoded so their expressions can be evaluated later,
// against the bound parameter scope.
type PropertiesBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Resource represents a `resource` block: a single declared cloud resource.
type Resource struct {
	ProviderType string           `hcl:"provider_type,label"`
	Name         string           `hcl:"logical_name,label"`
	APIVersion   string           `hcl:"api_version"`
	Condition    hcl.Expression   `hcl:"condition,optional"`
	Properties   *PropertiesBlock `hcl:"properties,block"`
	DependsOn    []string         `hcl:"depends_on,optional"`
}

// ParamsBlock holds the raw body of a module's `params` block.
type ParamsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Module represents a `module` block: the inclusion of a nested deployment
// unit with explicit parameter bindings.
type Module struct {
	Name      string         `hcl:"logical_name,label"`
	Source    string         `hcl:"source"`
	Condition hcl.Expression `hcl:"condition,optional"`
	Params    *ParamsBlock   `hcl:"params,block"`
	DependsOn []string       `hcl:"depends_on,optional"`
}

// Output represents an `output` block.
type Output struct {
	Name        string         `hcl:"name,label"`
	Value       hcl.Expression `hcl:"value"`
	Description string         `hcl:"description,optional"`
}

// UnitFile represents the top-level structure of a deployment unit file.
type UnitFile struct {
	Unit      *UnitHeader `hcl:"unit,block"`
	Params    []*Param    `hcl:"param,block"`
	Resources []*Resource `hcl:"resource,block"`
	Modules   []*Module   `hcl:"module,block"`
	Outputs   []*Output   `hcl:"output,block"`
	Body      hcl.Body    `hcl:",remain"`
}
