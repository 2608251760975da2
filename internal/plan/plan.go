// Package plan defines the evaluated deployment plan: the topologically
// ordered set of resources a unit materializes for a given parameter
// binding. The plan is the planner's end product; applying it against live
// cloud state belongs to the external provisioning engine.
package plan

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Value is a single resolved property or output value. Exactly one field is
// set: Literal for values fully known at plan time, Reference for a direct
// dereference of another declaration's attribute, and Expression for mixed
// expressions whose result depends on not-yet-materialized attributes.
type Value struct {
	Literal    json.RawMessage `json:"literal,omitempty"`
	Reference  string          `json:"reference,omitempty"`
	Expression string          `json:"expression,omitempty"`
}

// IsLiteral reports whether the value was fully known at plan time.
func (v Value) IsLiteral() bool {
	return len(v.Literal) > 0
}

// LiteralValue encodes a known cty value as a literal plan value.
func LiteralValue(val cty.Value) (Value, error) {
	raw, err := ctyjson.Marshal(val, val.Type())
	if err != nil {
		return Value{}, err
	}
	return Value{Literal: raw}, nil
}

// ReferenceValue wraps a traversal string (e.g. "resource.workspace.id")
// as a symbolic plan value.
func ReferenceValue(traversal string) Value {
	return Value{Reference: traversal}
}

// ExpressionValue wraps a raw expression snippet as a symbolic plan value.
func ExpressionValue(src string) Value {
	return Value{Expression: src}
}

// Resource is one planned resource, in its final flattened address form.
type Resource struct {
	Address    string           `json:"address"`
	Type       string           `json:"type"`
	APIVersion string           `json:"apiVersion"`
	Properties map[string]Value `json:"properties,omitempty"`
	DependsOn  []string         `json:"dependsOn,omitempty"`
}

// Summary counts what the evaluation included and pruned.
type Summary struct {
	Resources int `json:"resources"`
	Modules   int `json:"modules"`
	Excluded  int `json:"excluded"`
}

// Plan is the ordered, conditionally pruned, reference-resolved output of
// evaluating one root deployment unit. Resources appear in dependency
// order: producers always precede consumers.
type Plan struct {
	ID        string           `json:"id"`
	Unit      string           `json:"unit"`
	Scope     string           `json:"scope"`
	CreatedAt time.Time        `json:"createdAt"`
	Resources []*Resource      `json:"resources"`
	Outputs   map[string]Value `json:"outputs,omitempty"`
	Summary   Summary          `json:"summary"`
}

// New creates an empty plan for the named unit.
func New(unitName, scope string) *Plan {
	return &Plan{
		ID:        uuid.NewString(),
		Unit:      unitName,
		Scope:     scope,
		CreatedAt: time.Now().UTC(),
	}
}

// Resource returns the planned resource with the given address, or nil.
func (p *Plan) Resource(address string) *Resource {
	for _, r := range p.Resources {
		if r.Address == address {
			return r
		}
	}
	return nil
}

// Addresses returns the planned resource addresses in plan order.
func (p *Plan) Addresses() []string {
	addrs := make([]string, 0, len(p.Resources))
	for _, r := range p.Resources {
		addrs = append(addrs, r.Address)
	}
	return addrs
}
