package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/opsforge/secplan/internal/app"
	"github.com/opsforge/secplan/internal/hooks"
	"github.com/opsforge/secplan/internal/plan"
)

const vaultUnit = `
unit "vault" {
  scope = "resourceGroup"
}

param "name" {
  type = string
}

resource "Microsoft.KeyVault/vaults" "kv" {
  api_version = "2023-07-01"

  properties {
    name = param.name
  }
}

output "vaultUri" {
  value = resource.kv.vaultUri
}
`

func newApp(t *testing.T, out io.Writer) *app.App {
	t.Helper()
	var logs bytes.Buffer
	t.Cleanup(func() {
		if t.Failed() && logs.Len() > 0 {
			t.Log(logs.String())
		}
	})
	return app.NewApp(out, &logs, app.Config{LogLevel: "debug", LogFormat: "text"})
}

func TestAppPlan_ToWriter(t *testing.T) {
	dir := t.TempDir()
	unitPath := filepath.Join(dir, "vault.hcl")
	require.NoError(t, os.WriteFile(unitPath, []byte(vaultUnit), 0o644))

	var out bytes.Buffer
	a := newApp(t, &out)

	params := map[string]cty.Value{"name": cty.StringVal("lab-kv")}
	require.NoError(t, a.Plan(context.Background(), unitPath, params, plan.FormatJSON, ""))

	var p plan.Plan
	require.NoError(t, json.Unmarshal(out.Bytes(), &p))
	require.Equal(t, "vault", p.Unit)
	require.Equal(t, "resourceGroup", p.Scope)
	require.Equal(t, "resource.kv.vaultUri", p.Outputs["vaultUri"].Reference)
}

func TestAppPlan_ToFile(t *testing.T) {
	dir := t.TempDir()
	unitPath := filepath.Join(dir, "vault.hcl")
	require.NoError(t, os.WriteFile(unitPath, []byte(vaultUnit), 0o644))
	outPath := filepath.Join(dir, "plan.json")

	var out bytes.Buffer
	a := newApp(t, &out)

	params := map[string]cty.Value{"name": cty.StringVal("lab-kv")}
	require.NoError(t, a.Plan(context.Background(), unitPath, params, plan.FormatJSON, outPath))
	require.Empty(t, out.String())

	rendered, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Contains(t, string(rendered), `"unit": "vault"`)
}

func TestAppValidate_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vault.hcl"), []byte(vaultUnit), 0o644))

	a := newApp(t, io.Discard)
	require.NoError(t, a.Validate(context.Background(), dir))
}

func TestAppValidate_NoUnits(t *testing.T) {
	a := newApp(t, io.Discard)
	err := a.Validate(context.Background(), t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no unit files")
}

func TestAppPushRule_DefaultPayload(t *testing.T) {
	var gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := newApp(t, io.Discard)
	err := a.PushRule(context.Background(), app.PushRuleOptions{
		Endpoint: srv.URL,
		Token:    "test-token",
		RuleName: "suspicious-signin",
	})
	require.NoError(t, err)
	require.Contains(t, gotPath, "alertRules/suspicious-signin")

	var payload map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	require.Equal(t, "Scheduled", payload["kind"])
}

func TestAppSetContact(t *testing.T) {
	var got hooks.SecurityContact
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Path, "securityContacts/default")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := newApp(t, io.Discard)
	err := a.SetContact(context.Background(), app.SetContactOptions{
		Endpoint: srv.URL,
		Token:    "test-token",
		Contact:  hooks.SecurityContact{Email: "secops@example.com", NotifyAdmins: true},
	})
	require.NoError(t, err)
	require.Equal(t, "secops@example.com", got.Email)
	require.True(t, got.NotifyAdmins)
}

func TestAppPushRule_RejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	rulePath := filepath.Join(dir, "rule.json")
	require.NoError(t, os.WriteFile(rulePath, []byte(`{"kind": "Scheduled"}`), 0o644))

	a := newApp(t, io.Discard)
	err := a.PushRule(context.Background(), app.PushRuleOptions{
		Endpoint: "https://management.example.com",
		Token:    "test-token",
		RulePath: rulePath,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "schema validation")
}
