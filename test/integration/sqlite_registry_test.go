//go:build integration

package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/openhive-oss/openhive/internal/registry"
	"github.com/openhive-oss/openhive/internal/testutil"
)

func TestSQLiteRegistryPersistsAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "registry.db")
	logger := testutil.TestLogger()
	ctx := context.Background()

	// --- Run 1: register two agents, close ---
	adapter1, err := registry.Open("sqlite", dbPath, "", registry.Credential{})
	if err != nil {
		t.Fatal(err)
	}
	reg1 := registry.New(adapter1, logger)

	stored, err := reg1.Add(ctx, testutil.Card("translator", "translate", "detect-language"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reg1.Add(ctx, testutil.Card("summarizer", "summarize")); err != nil {
		t.Fatal(err)
	}
	if err := reg1.Close(); err != nil {
		t.Fatal(err)
	}

	// --- Run 2: fresh instance over the same file ---
	adapter2, err := registry.Open("sqlite", dbPath, "", registry.Credential{})
	if err != nil {
		t.Fatal(err)
	}
	reg2 := registry.New(adapter2, logger)
	defer reg2.Close()

	all, err := reg2.List(ctx, registry.Page{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 persisted agents, got %d", len(all))
	}
	if all[0].Name != "translator" || all[1].Name != "summarizer" {
		t.Fatalf("insertion order lost: %s, %s", all[0].Name, all[1].Name)
	}

	got, err := reg2.Get(ctx, stored.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Skills) != 2 || got.Skills[1].ID != "detect-language" {
		t.Fatalf("skills not preserved: %+v", got.Skills)
	}

	// --- Search works over the reopened store ---
	matches, err := reg2.Search(ctx, `name:summa`, registry.Page{})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].Name != "summarizer" {
		t.Fatalf("search over reopened store returned %d results", len(matches))
	}
}
