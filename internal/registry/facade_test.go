package registry

import (
	"context"
	"fmt"
	"testing"

	"github.com/openhive-oss/openhive/internal/card"
	"github.com/openhive-oss/openhive/internal/errors"
	"github.com/openhive-oss/openhive/internal/query"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return New(NewMemoryAdapter(), nil)
}

func TestRegistry_CRUDPassThrough(t *testing.T) {
	reg := newTestRegistry(t)
	defer reg.Close()
	ctx := context.Background()

	stored, err := reg.Add(ctx, sampleCard("translator"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := reg.Get(ctx, stored.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(stored) {
		t.Fatal("get should return the stored card")
	}

	if err := reg.Delete(ctx, stored.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = reg.Get(ctx, stored.ID)
	if errors.AsCode(err) != errors.CodeNotFound {
		t.Fatalf("adapter error kind should pass through unchanged, got %v", err)
	}
}

func searchFixtures(t *testing.T, reg *Registry) {
	t.Helper()
	ctx := context.Background()

	cards := []*card.AgentCard{
		{
			Name:        "My Awesome Agent",
			Description: "A conversational assistant",
			URL:         "http://localhost:1",
			Skills:      []card.Skill{{ID: "chat", Name: "Chat"}},
		},
		{
			Name:        "MyAwesomeAgent",
			Description: "Compact variant",
			URL:         "http://localhost:2",
			Skills:      []card.Skill{{ID: "chat", Name: "Chat"}},
		},
		{
			Name:        "Calculator",
			Description: "Evaluates math expressions",
			URL:         "http://localhost:3",
			Skills:      []card.Skill{{ID: "arithmetic", Name: "Arithmetic"}},
		},
	}
	for _, c := range cards {
		if _, err := reg.Add(ctx, c); err != nil {
			t.Fatalf("failed to seed registry: %v", err)
		}
	}
}

func TestRegistry_SearchQuotedName(t *testing.T) {
	reg := newTestRegistry(t)
	defer reg.Close()
	searchFixtures(t, reg)

	got, err := reg.Search(context.Background(), `name:"My Awesome Agent"`, Page{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "My Awesome Agent" {
		t.Fatalf("expected exactly the quoted-name card, got %v", names(got))
	}
}

func TestRegistry_SearchAndSemantics(t *testing.T) {
	reg := newTestRegistry(t)
	defer reg.Close()
	searchFixtures(t, reg)

	got, err := reg.Search(context.Background(), "name:MyAwesomeAgent skill:chat", Page{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "MyAwesomeAgent" {
		t.Fatalf("expected only the card satisfying both clauses, got %v", names(got))
	}
}

func TestRegistry_SearchEmptyReturnsAll(t *testing.T) {
	reg := newTestRegistry(t)
	defer reg.Close()
	searchFixtures(t, reg)

	got, err := reg.Search(context.Background(), "", Page{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("empty search should return every card, got %d", len(got))
	}
	// Adapter's natural (insertion) order.
	want := []string{"My Awesome Agent", "MyAwesomeAgent", "Calculator"}
	for i, n := range names(got) {
		if n != want[i] {
			t.Fatalf("order mismatch at %d: got %v", i, names(got))
		}
	}
}

// search(Q) equals filtering list() through the evaluator.
func TestRegistry_SearchMatchesFilterSemantics(t *testing.T) {
	reg := newTestRegistry(t)
	defer reg.Close()
	searchFixtures(t, reg)
	ctx := context.Background()

	for _, qs := range []string{"", "skill:chat", "awesome", "name:Calculator", "description:math"} {
		fromSearch, err := reg.Search(ctx, qs, Page{})
		if err != nil {
			t.Fatalf("search %q failed: %v", qs, err)
		}
		all, err := reg.List(ctx, Page{})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}

		q := query.Parse(qs)
		var manual []string
		for _, c := range all {
			if q.Matches(c) {
				manual = append(manual, c.Name)
			}
		}

		got := names(fromSearch)
		if len(got) != len(manual) {
			t.Fatalf("search %q: got %v, want %v", qs, got, manual)
		}
		for i := range got {
			if got[i] != manual[i] {
				t.Fatalf("search %q: got %v, want %v", qs, got, manual)
			}
		}
	}
}

func TestRegistry_SearchPagination(t *testing.T) {
	reg := newTestRegistry(t)
	defer reg.Close()
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		c := sampleCard(fmt.Sprintf("agent-%02d", i))
		if _, err := reg.Add(ctx, c); err != nil {
			t.Fatalf("failed to seed: %v", err)
		}
	}

	first, err := reg.Search(ctx, "agent", Page{Number: 1, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 10 || first[0].Name != "agent-00" {
		t.Fatalf("unexpected first page: %v", names(first))
	}

	last, err := reg.Search(ctx, "agent", Page{Number: 3, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(last) != 5 {
		t.Fatalf("expected 5 results on page 3, got %d", len(last))
	}
}

func TestRegistry_SearchInvalidPagination(t *testing.T) {
	reg := newTestRegistry(t)
	defer reg.Close()

	_, err := reg.Search(context.Background(), "", Page{Number: -1})
	if errors.AsCode(err) != errors.CodeInvalidArgument {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
}

func names(cards []*card.AgentCard) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Name
	}
	return out
}
