// Package rules holds the static security-analytics rule payloads and their
// schema validation. Payloads are consumed verbatim by the detection-rule
// API; the only processing this package does is rejecting malformed ones
// before a hook is allowed to send them.
package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed alert_rule.schema.json
var schemaBytes []byte

//go:embed suspicious_signin.json
var defaultRule []byte

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

// Default returns the built-in suspicious sign-in analytics rule payload.
func Default() []byte {
	out := make([]byte, len(defaultRule))
	copy(out, defaultRule)
	return out
}

// Validate checks an analytics-rule payload against the embedded schema.
func Validate(payload []byte) error {
	sch, err := loadSchema()
	if err != nil {
		return err
	}

	var document any
	if err := json.Unmarshal(payload, &document); err != nil {
		return fmt.Errorf("rule payload is not valid JSON: %w", err)
	}

	if err := sch.Validate(document); err != nil {
		return fmt.Errorf("rule payload failed schema validation: %w", err)
	}
	return nil
}

// LoadFile reads an analytics-rule payload from disk and validates it.
func LoadFile(path string) ([]byte, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(payload); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return payload, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("alert_rule.schema.json", bytes.NewReader(schemaBytes)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile("alert_rule.schema.json")
	})
	return compiledSchema, schemaErr
}
