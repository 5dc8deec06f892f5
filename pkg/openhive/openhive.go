// Package openhive provides the public API for the OpenHive agent registry.
//
// Example usage:
//
//	import "github.com/openhive-oss/openhive/pkg/openhive"
//
//	// In-memory registry (the default)
//	hive, err := openhive.New()
//
//	// Hosted registry
//	hive, err := openhive.New(
//		openhive.WithRemote("https://registry.openhive.dev"),
//		openhive.WithBearerToken(os.Getenv("OPENHIVE_TOKEN")),
//	)
//
//	added, err := hive.Add(ctx, &openhive.AgentCard{
//		Name: "translator",
//		URL:  "http://localhost:8080",
//	})
//	results, err := hive.Search(ctx, `skill:translate name:"My Agent"`, openhive.Page{})
package openhive

import (
	"context"

	"github.com/openhive-oss/openhive/internal/card"
	"github.com/openhive-oss/openhive/internal/errors"
	"github.com/openhive-oss/openhive/internal/platform"
	"github.com/openhive-oss/openhive/internal/registry"
	"github.com/openhive-oss/openhive/internal/telemetry"
)

// Re-exported core types.
type (
	AgentCard  = card.AgentCard
	Skill      = card.Skill
	Adapter    = registry.Adapter
	Page       = registry.Page
	Credential = registry.Credential
	CallOption = registry.CallOption
)

// WithExtension forwards one uninterpreted extension option to the adapter.
func WithExtension(key, value string) CallOption {
	return registry.WithExtension(key, value)
}

// Option configures a Hive at construction time.
type Option func(*settings)

type settings struct {
	adapter  Adapter
	url      string
	cred     Credential
	dbPath   string
	logLevel string
	logFmt   string
}

// WithAdapter injects an explicit adapter, overriding every other backend
// option.
func WithAdapter(a Adapter) Option {
	return func(s *settings) { s.adapter = a }
}

// WithRemote selects the remote backend at url.
func WithRemote(url string) Option {
	return func(s *settings) { s.url = url }
}

// WithBearerToken authenticates remote calls with a bearer token.
func WithBearerToken(token string) Option {
	return func(s *settings) { s.cred = Credential{BearerToken: token} }
}

// WithAPIKey authenticates remote calls with an API key.
func WithAPIKey(key string) Option {
	return func(s *settings) { s.cred = Credential{APIKey: key} }
}

// WithAccessToken authenticates remote calls with an access token.
func WithAccessToken(token string) Option {
	return func(s *settings) { s.cred = Credential{AccessToken: token} }
}

// WithSQLite selects the file-backed backend at path.
func WithSQLite(path string) Option {
	return func(s *settings) { s.dbPath = path }
}

// WithLogging sets the log level (debug, info, warn, error) and format
// (text, json).
func WithLogging(level, format string) Option {
	return func(s *settings) { s.logLevel = level; s.logFmt = format }
}

// Hive is the registry façade. It wraps exactly one backend adapter; CRUD
// calls pass through unchanged and Search runs the query engine over the
// adapter's listing.
type Hive struct {
	reg      *registry.Registry
	platform *platform.Client
}

// New constructs a Hive. Backend selection: an injected adapter wins, then a
// remote URL, then a SQLite path, then the in-memory default.
func New(opts ...Option) (*Hive, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	logger := telemetry.NewLogger(s.logLevel, s.logFmt)

	adapter := s.adapter
	if adapter == nil {
		var err error
		switch {
		case s.url != "":
			adapter, err = registry.Open("remote", "", s.url, s.cred)
		case s.dbPath != "":
			adapter, err = registry.Open("sqlite", s.dbPath, "", Credential{})
		default:
			adapter, err = registry.Open("memory", "", "", Credential{})
		}
		if err != nil {
			return nil, err
		}
	}

	h := &Hive{reg: registry.New(adapter, logger)}
	if s.url != "" {
		h.platform = platform.NewClient(s.url, s.cred)
	}
	return h, nil
}

// Add registers an agent card.
func (h *Hive) Add(ctx context.Context, c *AgentCard, opts ...CallOption) (*AgentCard, error) {
	return h.reg.Add(ctx, c, opts...)
}

// Get returns the card matching the identifier or name.
func (h *Hive) Get(ctx context.Context, id string, opts ...CallOption) (*AgentCard, error) {
	return h.reg.Get(ctx, id, opts...)
}

// List returns cards in the backend's natural order.
func (h *Hive) List(ctx context.Context, page Page, opts ...CallOption) ([]*AgentCard, error) {
	return h.reg.List(ctx, page, opts...)
}

// Update replaces the card matching the identifier or name.
func (h *Hive) Update(ctx context.Context, id string, c *AgentCard, opts ...CallOption) (*AgentCard, error) {
	return h.reg.Update(ctx, id, c, opts...)
}

// Delete removes the card matching the identifier or name.
func (h *Hive) Delete(ctx context.Context, id string, opts ...CallOption) error {
	return h.reg.Delete(ctx, id, opts...)
}

// Clear removes all cards.
func (h *Hive) Clear(ctx context.Context, opts ...CallOption) error {
	return h.reg.Clear(ctx, opts...)
}

// Search filters the registry with the query grammar and paginates the
// result. See the query package for the grammar.
func (h *Hive) Search(ctx context.Context, query string, page Page, opts ...CallOption) ([]*AgentCard, error) {
	return h.reg.Search(ctx, query, page, opts...)
}

// Registry exposes the underlying façade for advanced composition.
func (h *Hive) Registry() *registry.Registry {
	return h.reg
}

// Platform returns the hosted-platform client. It is only available when the
// Hive was constructed with WithRemote.
func (h *Hive) Platform() (*platform.Client, error) {
	if h.platform == nil {
		return nil, errors.New(errors.CodeConfigInvalid, "platform client requires a remote registry").
			WithSuggestion("Construct the client with openhive.WithRemote")
	}
	return h.platform, nil
}

// Close tears down the backend adapter.
func (h *Hive) Close() error {
	return h.reg.Close()
}
