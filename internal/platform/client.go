// Package platform exposes the hosted platform's extension endpoints as
// verbatim pass-through request/response pairs. There is no logic here: each
// call maps one-to-one onto an HTTP endpoint, with the same credential and
// error mapping as the remote registry adapter.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openhive-oss/openhive/internal/errors"
	"github.com/openhive-oss/openhive/internal/registry"
)

// Client calls the hosted platform's non-registry endpoints.
type Client struct {
	baseURL string
	cred    registry.Credential
	client  *http.Client
}

// NewClient creates a platform client for the service at baseURL.
func NewClient(baseURL string, cred registry.Credential) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		cred:    cred,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// UploadURL is the response to an upload-URL request.
type UploadURL struct {
	URL      string `json:"url"`
	UploadID string `json:"uploadId"`
}

// RequestUploadURL asks the platform for a pre-signed upload destination for
// an agent package.
func (c *Client) RequestUploadURL(ctx context.Context, agentName, version string) (*UploadURL, error) {
	req := map[string]string{"agentName": agentName, "version": version}
	var out UploadURL
	if err := c.post(ctx, "/uploads", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteUpload tells the platform the upload identified by uploadID has
// finished.
func (c *Client) CompleteUpload(ctx context.Context, uploadID string) error {
	return c.post(ctx, "/uploads/"+uploadID+"/complete", nil, nil)
}

// Deployment is the platform's record of a deploy request.
type Deployment struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Deploy triggers a deployment of the named agent version.
func (c *Client) Deploy(ctx context.Context, agentName, version string) (*Deployment, error) {
	req := map[string]string{"agentName": agentName, "version": version}
	var out Deployment
	if err := c.post(ctx, "/deployments", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadURL fetches a download link for a published agent package.
func (c *Client) DownloadURL(ctx context.Context, agentName, version string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	path := "/agents/" + agentName + "/versions/" + version + "/download"
	if err := c.get(ctx, path, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// User is the platform's account record.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// CurrentUser returns the account the configured credential belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var out User
	if err := c.get(ctx, "/user", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevokeAPIKey invalidates the API key with the given identifier.
func (c *Client) RevokeAPIKey(ctx context.Context, keyID string) error {
	return c.delete(ctx, "/keys/"+keyID)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(errors.CodeInvalidArgument, "failed to encode request body", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(errors.CodeInvalidArgument, "failed to build request", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	applyCredential(req, c.cred)

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(errors.CodeTransportError, "platform request failed", err).
			WithSuggestion("Check the platform URL and network connectivity")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrap(errors.CodeRemoteError, "failed to decode platform response", err)
		}
	}
	return nil
}

func applyCredential(req *http.Request, cred registry.Credential) {
	switch {
	case cred.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+cred.BearerToken)
	case cred.APIKey != "":
		req.Header.Set("X-API-Key", cred.APIKey)
	case cred.AccessToken != "":
		req.Header.Set("X-Access-Token", cred.AccessToken)
	}
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(data))
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return errors.New(errors.CodeNotFound, msg)
	case http.StatusBadRequest:
		return errors.New(errors.CodeInvalidArgument, msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.Newf(errors.CodeRemoteError, "platform rejected credentials: %s", msg).
			WithSuggestion("Check the configured bearer token, API key, or access token")
	default:
		return errors.Newf(errors.CodeRemoteError, "platform returned HTTP %d: %s", resp.StatusCode, msg)
	}
}
