package registry

import (
	"context"

	"github.com/openhive-oss/openhive/internal/card"
	"github.com/openhive-oss/openhive/internal/query"
	"github.com/openhive-oss/openhive/internal/telemetry"
)

// Registry is the single public entry point: CRUD calls pass through to the
// adapter unchanged (all adapter error kinds preserved), and Search composes
// the query parser and evaluator over the adapter's full listing.
type Registry struct {
	adapter Adapter
	logger  *telemetry.Logger
}

// New wraps the adapter. The registry owns the adapter for its lifetime and
// closes it on Close.
func New(adapter Adapter, logger *telemetry.Logger) *Registry {
	if logger == nil {
		logger = telemetry.NewVerboseLogger(false)
	}
	return &Registry{adapter: adapter, logger: logger}
}

// Adapter exposes the underlying adapter.
func (r *Registry) Adapter() Adapter {
	return r.adapter
}

// Add registers a card.
func (r *Registry) Add(ctx context.Context, c *card.AgentCard, opts ...CallOption) (*card.AgentCard, error) {
	stored, err := r.adapter.Add(ctx, c, opts...)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("agent added", "id", stored.ID, "name", stored.Name)
	return stored, nil
}

// Get returns the card matching the identifier or name.
func (r *Registry) Get(ctx context.Context, id string, opts ...CallOption) (*card.AgentCard, error) {
	return r.adapter.Get(ctx, id, opts...)
}

// List returns cards in the adapter's natural order.
func (r *Registry) List(ctx context.Context, page Page, opts ...CallOption) ([]*card.AgentCard, error) {
	return r.adapter.List(ctx, page, opts...)
}

// Update replaces the card matching the identifier or name.
func (r *Registry) Update(ctx context.Context, id string, c *card.AgentCard, opts ...CallOption) (*card.AgentCard, error) {
	updated, err := r.adapter.Update(ctx, id, c, opts...)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("agent updated", "id", updated.ID, "name", updated.Name)
	return updated, nil
}

// Delete removes the card matching the identifier or name.
func (r *Registry) Delete(ctx context.Context, id string, opts ...CallOption) error {
	if err := r.adapter.Delete(ctx, id, opts...); err != nil {
		return err
	}
	r.logger.Debug("agent deleted", "id", id)
	return nil
}

// Clear removes all cards. Intended primarily for tests.
func (r *Registry) Clear(ctx context.Context, opts ...CallOption) error {
	return r.adapter.Clear(ctx, opts...)
}

// Search parses queryString, filters the adapter's full listing with the
// evaluator, then applies pagination. Filtering runs client-side so the
// semantics are identical regardless of backend.
func (r *Registry) Search(ctx context.Context, queryString string, page Page, opts ...CallOption) ([]*card.AgentCard, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	all, err := r.adapter.List(ctx, Page{}, opts...)
	if err != nil {
		return nil, err
	}

	q := query.Parse(queryString)
	matched := q.Filter(all)
	r.logger.Debug("search evaluated", "query", queryString, "matched", len(matched), "total", len(all))
	return page.Slice(matched), nil
}

// Close tears down the underlying adapter.
func (r *Registry) Close() error {
	return r.adapter.Close()
}
