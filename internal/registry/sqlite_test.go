package registry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/openhive-oss/openhive/internal/card"
)

// Cards survive closing and reopening the database file.
func TestSQLiteAdapter_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")
	ctx := context.Background()

	first, err := NewSQLiteAdapter(path)
	if err != nil {
		t.Fatalf("failed to create adapter: %v", err)
	}
	stored, err := first.Add(ctx, sampleCard("translator"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}

	second, err := NewSQLiteAdapter(path)
	if err != nil {
		t.Fatalf("failed to reopen adapter: %v", err)
	}
	defer second.Close()

	got, err := second.Get(ctx, stored.ID)
	if err != nil {
		t.Fatalf("unexpected error after reopen: %v", err)
	}
	if !got.Equal(stored) {
		t.Fatalf("card changed across reopen:\nbefore: %+v\nafter:  %+v", stored, got)
	}
	if len(got.Skills) != 1 || got.Skills[0].ID != "translator-skill" {
		t.Fatalf("skills not persisted: %+v", got.Skills)
	}
}

func TestSQLiteAdapter_SkillOrderPreserved(t *testing.T) {
	adapter, err := NewSQLiteAdapter(filepath.Join(t.TempDir(), "registry.db"))
	if err != nil {
		t.Fatalf("failed to create adapter: %v", err)
	}
	defer adapter.Close()
	ctx := context.Background()

	c := sampleCard("multi")
	c.Skills = nil
	for _, id := range []string{"zeta", "alpha", "mid"} {
		c.Skills = append(c.Skills, skillWithID(id))
	}

	stored, err := adapter.Add(ctx, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := adapter.Get(ctx, stored.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Skills) != 3 {
		t.Fatalf("expected 3 skills, got %d", len(got.Skills))
	}
	for i, want := range []string{"zeta", "alpha", "mid"} {
		if got.Skills[i].ID != want {
			t.Fatalf("skill order not preserved: position %d is %s, want %s", i, got.Skills[i].ID, want)
		}
	}
}

func TestSQLiteAdapter_DeleteRemovesSkills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")
	adapter, err := NewSQLiteAdapter(path)
	if err != nil {
		t.Fatalf("failed to create adapter: %v", err)
	}
	defer adapter.Close()
	ctx := context.Background()

	stored, err := adapter.Add(ctx, sampleCard("translator"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := adapter.Delete(ctx, stored.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int
	if err := adapter.db.QueryRow("SELECT COUNT(*) FROM skills").Scan(&count); err != nil {
		t.Fatalf("failed to count skills: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no orphaned skill rows, found %d", count)
	}
}

func skillWithID(id string) card.Skill {
	return card.Skill{ID: id, Name: id}
}
