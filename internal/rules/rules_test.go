package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultRuleIsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestDefaultReturnsCopy(t *testing.T) {
	first := Default()
	first[0] = '!'
	require.NoError(t, Validate(Default()))
}

func TestValidate_RejectsMissingRequiredFields(t *testing.T) {
	err := Validate([]byte(`{"kind": "Scheduled", "properties": {"displayName": "x"}}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "schema validation")
}

func TestValidate_RejectsUnknownKind(t *testing.T) {
	err := Validate([]byte(`{
		"kind": "Fusion",
		"properties": {
			"displayName": "x",
			"severity": "High",
			"enabled": true,
			"query": "SigninLogs",
			"triggerOperator": "GreaterThan",
			"triggerThreshold": 0
		}
	}`))
	require.Error(t, err)
}

func TestValidate_RejectsMalformedJSON(t *testing.T) {
	err := Validate([]byte(`{"kind": `))
	require.Error(t, err)
	require.Contains(t, err.Error(), "not valid JSON")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "rule.json")
	require.NoError(t, os.WriteFile(good, Default(), 0o644))
	payload, err := LoadFile(good)
	require.NoError(t, err)
	require.NoError(t, Validate(payload))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"kind": "Scheduled"}`), 0o644))
	_, err = LoadFile(bad)
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad.json")

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}
