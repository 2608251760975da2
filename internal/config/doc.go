// Package config defines the format-agnostic model for deployment units,
// along with the Loader interface for reading them from disk.
//
// The config.Unit is the single source of truth for the planner and catalog
// packages. The concrete HCL implementation lives in the hclcfg package.
package config
