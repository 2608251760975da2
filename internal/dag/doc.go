// Package dag implements the directed acyclic graph used to order a
// deployment plan. The planner adds one node per included declaration and
// one edge per reference, then asks for a deterministic topological order.
package dag
