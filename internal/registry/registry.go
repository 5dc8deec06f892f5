// Package registry provides the agent registry: one adapter contract with
// in-memory, SQLite, and remote HTTP implementations, composed behind a
// façade that adds query-based search.
package registry

import (
	"context"

	"github.com/openhive-oss/openhive/internal/card"
	"github.com/openhive-oss/openhive/internal/errors"
)

// Adapter is the storage contract behind a Registry. Implementations differ
// in persistence (memory is volatile, sqlite is file-backed, remote proxies a
// hosted service) but share identical semantics:
//
//   - Add assigns an identifier when the card has none and fails with
//     DUPLICATE_ID when the identifier or name is already taken.
//   - Get, Update, and Delete resolve by identifier first, then by name, and
//     fail with NOT_FOUND when no card matches.
//   - List returns cards in insertion order (memory, sqlite) or the server's
//     order (remote).
//   - Cards are copied in and out on every call; callers never share mutable
//     state with a backend.
//
// Adapters never retry on failure; retries are a caller concern.
type Adapter interface {
	Add(ctx context.Context, c *card.AgentCard, opts ...CallOption) (*card.AgentCard, error)
	Get(ctx context.Context, id string, opts ...CallOption) (*card.AgentCard, error)
	List(ctx context.Context, page Page, opts ...CallOption) ([]*card.AgentCard, error)
	Update(ctx context.Context, id string, c *card.AgentCard, opts ...CallOption) (*card.AgentCard, error)
	Delete(ctx context.Context, id string, opts ...CallOption) error
	Clear(ctx context.Context, opts ...CallOption) error
	Close() error
}

// Page selects a slice of a listing. The zero value returns everything.
type Page struct {
	Number int // 1-based page number; 0 defaults to 1 when Limit is set
	Limit  int // page size; 0 means no limit
}

// Validate rejects negative pagination values.
func (p Page) Validate() error {
	if p.Number < 0 {
		return errors.Newf(errors.CodeInvalidArgument, "page number must not be negative: %d", p.Number)
	}
	if p.Limit < 0 {
		return errors.Newf(errors.CodeInvalidArgument, "page limit must not be negative: %d", p.Limit)
	}
	return nil
}

// Slice applies the pagination window to cards. Out-of-range pages return an
// empty slice, not an error.
func (p Page) Slice(cards []*card.AgentCard) []*card.AgentCard {
	if p.Limit <= 0 {
		return cards
	}
	number := p.Number
	if number == 0 {
		number = 1
	}
	start := (number - 1) * p.Limit
	if start >= len(cards) {
		return []*card.AgentCard{}
	}
	end := start + p.Limit
	if end > len(cards) {
		end = len(cards)
	}
	return cards[start:end]
}

// CallOption carries an uninterpreted extension option through the façade to
// the adapter. Local adapters ignore extensions; the remote adapter encodes
// them as query parameters.
type CallOption func(map[string]string)

// WithExtension sets one extension key. The façade interprets none of them.
func WithExtension(key, value string) CallOption {
	return func(m map[string]string) {
		m[key] = value
	}
}

// collectOptions flattens call options into a map, or nil when there are none.
func collectOptions(opts []CallOption) map[string]string {
	if len(opts) == 0 {
		return nil
	}
	m := make(map[string]string, len(opts))
	for _, opt := range opts {
		opt(m)
	}
	return m
}
