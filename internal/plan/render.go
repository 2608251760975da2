package plan

import (
	"encoding/json"
	"fmt"

	"sigs.k8s.io/yaml"
)

// Format names a supported plan rendering.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Render serializes the plan in the requested format. JSON output is
// indented; YAML goes through the JSON tags so both renderings carry the
// same field names.
func (p *Plan) Render(format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(p, "", "  ")
	case FormatYAML:
		return yaml.Marshal(p)
	default:
		return nil, fmt.Errorf("unsupported plan format %q", format)
	}
}
