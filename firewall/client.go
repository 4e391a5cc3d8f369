package firewall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultProbeTimeout = 5 * time.Second

	// maxBodySize bounds reads of service responses.
	maxBodySize = 1 << 20
)

// Client talks to the python-package-firewall API.
//
// Endpoints consumed:
//   - GET {base}/simple/{package}/  — index existence check
//   - GET {base}/blocked/{package}  — block detail record
//   - GET {base}/simple/            — connectivity probe
//
// The client is fail-closed: any transport failure, timeout, or response it
// cannot positively classify as safe yields a Block verdict.
type Client struct {
	baseURL      string
	http         *http.Client
	probeTimeout time.Duration
	log          zerolog.Logger
	invocation   string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout for validation calls.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithProbeTimeout sets the timeout for CheckConnectivity.
func WithProbeTimeout(d time.Duration) Option {
	return func(c *Client) { c.probeTimeout = d }
}

// WithLogger sets the logger for request and verdict debug events.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a Client for the firewall at baseURL. The underlying HTTP
// client is shared across all calls for the lifetime of the Client; callers
// must Close it on every exit path.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         &http.Client{Timeout: defaultTimeout},
		probeTimeout: defaultProbeTimeout,
		log:          zerolog.Nop(),
		invocation:   uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases the client's idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// BaseURL returns the firewall base URL the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// AuditURL returns the user-facing reference for a package's block record.
func (c *Client) AuditURL(name string) string {
	return c.baseURL + "/blocked/" + strings.ToLower(name)
}

// failKind classifies a transport-level failure.
type failKind int

const (
	failNone failKind = iota
	failConnect
	failTimeout
)

// outcome is the classified result of a single GET. Exactly one of the
// transport-failure kinds or an HTTP status is set.
type outcome struct {
	status int
	body   []byte
	kind   failKind
	err    error
}

func (c *Client) get(ctx context.Context, url string) outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return outcome{kind: failConnect, err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		kind := failConnect
		if isTimeout(err) {
			kind = failTimeout
		}
		c.log.Debug().Str("invocation", c.invocation).Str("url", url).Err(err).Msg("firewall request failed")
		return outcome{kind: kind, err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		if isTimeout(err) {
			return outcome{kind: failTimeout, err: err}
		}
		return outcome{kind: failConnect, err: err}
	}

	c.log.Debug().Str("invocation", c.invocation).Str("url", url).Int("status", resp.StatusCode).Msg("firewall response")
	return outcome{status: resp.StatusCode, body: body}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Validate checks a package against the firewall's index endpoint.
// When version is empty only package-level access is checked; otherwise the
// pinned version is matched against the package's blocked versions.
// Validate never fails open: every error path returns a Block verdict.
func (c *Client) Validate(ctx context.Context, name, version string) Result {
	name = strings.ToLower(name)

	out := c.get(ctx, c.baseURL+"/simple/"+name+"/")
	switch out.kind {
	case failTimeout:
		return c.verdict(Result{Package: name, Status: Block, Reason: "Firewall validation timeout"})
	case failConnect:
		return c.verdict(Result{
			Package: name,
			Status:  Block,
			Reason:  fmt.Sprintf("Cannot connect to firewall at %s", c.baseURL),
		})
	}

	switch out.status {
	case http.StatusForbidden:
		info := c.GetBlockedInfo(ctx, name)
		reason := "Package is blocked by firewall policy"
		if len(info.Reasons) > 0 {
			reason = strings.Join(info.Reasons, "; ")
		}
		return c.verdict(Result{Package: name, Status: Block, Reason: reason, Blocked: &info})

	case http.StatusNotFound:
		return c.verdict(Result{Package: name, Status: Block, Reason: "Package not found in PyPI"})

	case http.StatusOK:
		if version == "" {
			return c.verdict(Result{Package: name, Status: Allow, Reason: "Package passed security validation"})
		}
		info := c.GetBlockedInfo(ctx, name)
		if info.Status == BlockedStatusBlocked && info.VersionBlocked(version) {
			return c.verdict(Result{
				Package: name,
				Status:  Block,
				Reason:  versionReason(info.Reasons, version),
				Blocked: &info,
			})
		}
		return c.verdict(Result{Package: name, Status: Allow, Reason: "Package passed security validation", Blocked: &info})

	default:
		return c.verdict(Result{
			Package: name,
			Status:  Block,
			Reason:  fmt.Sprintf("Unexpected response from firewall: %d", out.status),
		})
	}
}

// versionReason picks the first reason mentioning the version, falling back
// to a generic message.
func versionReason(reasons []string, version string) string {
	for _, r := range reasons {
		if strings.Contains(r, version) {
			return r
		}
	}
	return fmt.Sprintf("Version %s is blocked", version)
}

func (c *Client) verdict(r Result) Result {
	c.log.Debug().
		Str("invocation", c.invocation).
		Str("package", r.Package).
		Stringer("status", r.Status).
		Str("reason", r.Reason).
		Msg("verdict")
	return r
}

// blockedPayload mirrors the blocked-info endpoint's JSON body.
type blockedPayload struct {
	BlockedVersions     int      `json:"blocked_versions"`
	BlockedVersionsList []string `json:"blocked_versions_list"`
	Reasons             []string `json:"reasons"`
}

const blockedInfoSchema = `{
	"type": "object",
	"properties": {
		"blocked_versions": {"type": "integer"},
		"blocked_versions_list": {"type": "array", "items": {"type": "string"}},
		"reasons": {"type": "array", "items": {"type": "string"}}
	}
}`

var blockedInfoSchemaLoader = gojsonschema.NewStringLoader(blockedInfoSchema)

// vetBlockedPayload validates the response body shape before decoding so a
// type mismatch is reported as a malformed response, not half-decoded data.
func vetBlockedPayload(body []byte) error {
	result, err := gojsonschema.Validate(blockedInfoSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return err
	}
	if !result.Valid() {
		return fmt.Errorf("%s", result.Errors()[0].String())
	}
	return nil
}

// GetBlockedInfo fetches the structured block record for a package.
// A 404 means the package is not blocked. Never fails: lookup problems are
// folded into the returned record's Status and Detail.
func (c *Client) GetBlockedInfo(ctx context.Context, name string) BlockedInfo {
	name = strings.ToLower(name)

	out := c.get(ctx, c.baseURL+"/blocked/"+name)
	switch out.kind {
	case failTimeout:
		return BlockedInfo{Package: name, Status: BlockedStatusError, Detail: "firewall request timed out"}
	case failConnect:
		return BlockedInfo{
			Package: name,
			Status:  BlockedStatusError,
			Detail:  fmt.Sprintf("Cannot connect to firewall at %s", c.baseURL),
		}
	}

	switch out.status {
	case http.StatusNotFound:
		return BlockedInfo{Package: name, Status: BlockedStatusAllowed, Reasons: []string{}}

	case http.StatusOK:
		if err := vetBlockedPayload(out.body); err != nil {
			return BlockedInfo{
				Package: name,
				Status:  BlockedStatusError,
				Detail:  fmt.Sprintf("malformed response: %v", err),
				Raw:     out.body,
			}
		}
		var payload blockedPayload
		if err := json.Unmarshal(out.body, &payload); err != nil {
			return BlockedInfo{
				Package: name,
				Status:  BlockedStatusError,
				Detail:  fmt.Sprintf("malformed response: %v", err),
				Raw:     out.body,
			}
		}
		return BlockedInfo{
			Package:             name,
			Status:              BlockedStatusBlocked,
			BlockedVersionCount: payload.BlockedVersions,
			BlockedVersions:     payload.BlockedVersionsList,
			Reasons:             payload.Reasons,
			Raw:                 out.body,
		}

	default:
		return BlockedInfo{
			Package: name,
			Status:  BlockedStatusUnknown,
			Detail:  fmt.Sprintf("unexpected status code: %d", out.status),
		}
	}
}

// CheckConnectivity reports whether the firewall is reachable. Both 200 and
// 404 prove the service is alive and routing requests.
func (c *Client) CheckConnectivity(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	out := c.get(ctx, c.baseURL+"/simple/")
	if out.kind != failNone {
		return false
	}
	return out.status == http.StatusOK || out.status == http.StatusNotFound
}
