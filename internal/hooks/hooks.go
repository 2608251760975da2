// Package hooks implements the post-provisioning management-API wrappers:
// thin, single-call clients that authenticate, issue exactly one request,
// and fail fast. There is no retry or backoff here; a failed call surfaces
// as an ExternalCallError and a non-zero process exit.
package hooks

import (
	"context"
	"fmt"

	"resty.dev/v3"

	"github.com/opsforge/secplan/internal/ctxlog"
)

const alertRulesAPIVersion = "2023-12-01-preview"

// ExternalCallError reports a failed downstream API call.
type ExternalCallError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *ExternalCallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *ExternalCallError) Unwrap() error {
	return e.Err
}

// Client issues single authenticated calls against a management endpoint.
// In dry-run mode requests are built and logged but never sent.
type Client struct {
	rest   *resty.Client
	dryRun bool
}

// NewClient creates a hook client for the given endpoint. token is sent as
// a bearer credential on every call.
func NewClient(endpoint, token string, dryRun bool) *Client {
	rest := resty.New().
		SetBaseURL(endpoint).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json")
	return &Client{rest: rest, dryRun: dryRun}
}

// Close releases the underlying transport.
func (c *Client) Close() error {
	return c.rest.Close()
}

// PushAnalyticsRule upserts one detection rule. The payload must already be
// schema-validated; this call sends it verbatim.
func (c *Client) PushAnalyticsRule(ctx context.Context, ruleName string, payload []byte) error {
	logger := ctxlog.FromContext(ctx)
	path := fmt.Sprintf("/providers/Microsoft.SecurityInsights/alertRules/%s?api-version=%s", ruleName, alertRulesAPIVersion)

	if c.dryRun {
		logger.Info("Dry run: skipping analytics rule push.", "rule", ruleName, "path", path, "bytes", len(payload))
		return nil
	}

	res, err := c.rest.R().
		SetContext(ctx).
		SetBody(payload).
		Put(path)
	if err != nil {
		return &ExternalCallError{Op: "push analytics rule", Err: err}
	}
	if res.IsError() {
		return &ExternalCallError{Op: "push analytics rule", StatusCode: res.StatusCode(), Body: res.String()}
	}

	logger.Info("Analytics rule pushed.", "rule", ruleName, "status", res.StatusCode())
	return nil
}

// SecurityContact is the notification target for security alerts.
type SecurityContact struct {
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	NotifyAdmins bool   `json:"notifyAdmins"`
}

// SetSecurityContact sets the subscription's default security contact.
func (c *Client) SetSecurityContact(ctx context.Context, contact SecurityContact) error {
	logger := ctxlog.FromContext(ctx)
	path := "/providers/Microsoft.Security/securityContacts/default?api-version=2023-12-01-preview"

	if c.dryRun {
		logger.Info("Dry run: skipping security contact update.", "email", contact.Email)
		return nil
	}

	res, err := c.rest.R().
		SetContext(ctx).
		SetBody(contact).
		Put(path)
	if err != nil {
		return &ExternalCallError{Op: "set security contact", Err: err}
	}
	if res.IsError() {
		return &ExternalCallError{Op: "set security contact", StatusCode: res.StatusCode(), Body: res.String()}
	}

	logger.Info("Security contact set.", "email", contact.Email, "status", res.StatusCode())
	return nil
}
