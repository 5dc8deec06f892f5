package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/openhive-oss/openhive/internal/card"
	"github.com/openhive-oss/openhive/internal/errors"
)

// Credential authenticates requests to a hosted registry. At most one field
// should be set.
type Credential struct {
	BearerToken string
	APIKey      string
	AccessToken string
}

// apply attaches the credential header to the request.
func (c Credential) apply(req *http.Request) {
	switch {
	case c.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	case c.APIKey != "":
		req.Header.Set("X-API-Key", c.APIKey)
	case c.AccessToken != "":
		req.Header.Set("X-Access-Token", c.AccessToken)
	}
}

// Empty reports whether no credential is configured.
func (c Credential) Empty() bool {
	return c.BearerToken == "" && c.APIKey == "" && c.AccessToken == ""
}

// RemoteAdapter proxies every operation to a hosted registry over HTTP.
// It performs no implicit retries: a failed call may or may not have been
// applied remotely, and resubmission is the caller's decision.
type RemoteAdapter struct {
	baseURL string
	cred    Credential
	client  *http.Client
}

// NewRemoteAdapter creates an adapter for the registry at baseURL.
func NewRemoteAdapter(baseURL string, cred Credential) *RemoteAdapter {
	return &RemoteAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		cred:    cred,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Add registers the card with the remote registry.
func (r *RemoteAdapter) Add(ctx context.Context, c *card.AgentCard, opts ...CallOption) (*card.AgentCard, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var out card.AgentCard
	if err := r.do(ctx, http.MethodPost, "/agents", nil, opts, c, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches one card by identifier or name.
func (r *RemoteAdapter) Get(ctx context.Context, id string, opts ...CallOption) (*card.AgentCard, error) {
	var out card.AgentCard
	if err := r.do(ctx, http.MethodGet, "/agents/"+url.PathEscape(id), nil, opts, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List fetches cards in the server's order. Pagination is forwarded as
// page/limit query parameters and applied server-side.
func (r *RemoteAdapter) List(ctx context.Context, page Page, opts ...CallOption) ([]*card.AgentCard, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	params := url.Values{}
	if page.Limit > 0 {
		number := page.Number
		if number == 0 {
			number = 1
		}
		params.Set("page", strconv.Itoa(number))
		params.Set("limit", strconv.Itoa(page.Limit))
	}

	var out []*card.AgentCard
	if err := r.do(ctx, http.MethodGet, "/agents", params, opts, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the remote card.
func (r *RemoteAdapter) Update(ctx context.Context, id string, c *card.AgentCard, opts ...CallOption) (*card.AgentCard, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var out card.AgentCard
	if err := r.do(ctx, http.MethodPut, "/agents/"+url.PathEscape(id), nil, opts, c, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the remote card.
func (r *RemoteAdapter) Delete(ctx context.Context, id string, opts ...CallOption) error {
	return r.do(ctx, http.MethodDelete, "/agents/"+url.PathEscape(id), nil, opts, nil, nil)
}

// Clear removes every card the credential may manage.
func (r *RemoteAdapter) Clear(ctx context.Context, opts ...CallOption) error {
	return r.do(ctx, http.MethodDelete, "/agents", nil, opts, nil, nil)
}

// Close releases the adapter. The underlying HTTP client keeps no open state
// beyond pooled connections.
func (r *RemoteAdapter) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

// do performs one HTTP round trip. Extension options are encoded as query
// parameters; the adapter interprets none of them.
func (r *RemoteAdapter) do(ctx context.Context, method, path string, params url.Values, opts []CallOption, in, out interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	for k, v := range collectOptions(opts) {
		params.Set(k, v)
	}

	endpoint := r.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(errors.CodeInvalidArgument, "failed to encode request body", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return errors.Wrap(errors.CodeInvalidArgument, "failed to build request", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.cred.apply(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return errors.Wrap(errors.CodeTransportError, "registry request failed", err).
			WithSuggestion("Check the registry URL and network connectivity")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return remoteError(resp)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrap(errors.CodeRemoteError, "failed to decode registry response", err)
		}
	}
	return nil
}

// remoteError maps an HTTP error status to a registry error kind. Semantic
// failures reported by the service (404, 409, 400) are distinguished from
// transport failures, which never reach this function.
func remoteError(resp *http.Response) error {
	msg := readErrorMessage(resp)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return errors.New(errors.CodeNotFound, msg)
	case http.StatusConflict:
		return errors.New(errors.CodeDuplicateID, msg)
	case http.StatusBadRequest:
		return errors.New(errors.CodeInvalidArgument, msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.Newf(errors.CodeRemoteError, "registry rejected credentials: %s", msg).
			WithSuggestion("Check the configured bearer token, API key, or access token")
	default:
		return errors.Newf(errors.CodeRemoteError, "registry returned HTTP %d: %s", resp.StatusCode, msg)
	}
}

func readErrorMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(data) == 0 {
		return fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(data))
}
