// Package planner implements the deployment-graph evaluator: it binds
// parameter values against a unit's declarations, prunes declarations whose
// inclusion conditions evaluate false, resolves inter-declaration references
// into a topologically ordered graph, and recursively expands nested module
// references into a single flattened plan.
//
// Evaluation is single-threaded and deterministic. The planner never talks
// to a cloud control plane; materializing the plan is the external
// provisioning engine's job.
package planner
