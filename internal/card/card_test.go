package card

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openhive-oss/openhive/internal/errors"
)

func testCard() *AgentCard {
	return &AgentCard{
		Name:            "translator",
		Description:     "Translates text between languages",
		ProtocolVersion: "0.3.0",
		Version:         "1.0.0",
		URL:             "http://localhost:8080/agent",
		Skills: []Skill{
			{ID: "translate", Name: "Translate", Tags: []string{"nlp"}},
		},
		Capabilities: map[string]bool{"streaming": true},
	}
}

func TestValidate(t *testing.T) {
	c := testCard()
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingName(t *testing.T) {
	c := testCard()
	c.Name = "  "
	err := c.Validate()
	if errors.AsCode(err) != errors.CodeInvalidArgument {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
}

func TestValidate_MissingURL(t *testing.T) {
	c := testCard()
	c.URL = ""
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for missing url")
	}
}

func TestValidate_DuplicateSkillID(t *testing.T) {
	c := testCard()
	c.Skills = append(c.Skills, Skill{ID: "translate", Name: "Other"})
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for duplicate skill id")
	}
}

func TestClone_IsDeep(t *testing.T) {
	c := testCard()
	clone := c.Clone()

	clone.Skills[0].Name = "changed"
	clone.Skills[0].Tags[0] = "changed"
	clone.Capabilities["streaming"] = false

	if c.Skills[0].Name != "Translate" {
		t.Error("clone shares skills slice with original")
	}
	if c.Skills[0].Tags[0] != "nlp" {
		t.Error("clone shares skill tags with original")
	}
	if !c.Capabilities["streaming"] {
		t.Error("clone shares capabilities map with original")
	}
}

func TestEqual(t *testing.T) {
	a := testCard()
	b := testCard()
	if !a.Equal(b) {
		t.Error("identical cards should be equal")
	}
	b.Version = "2.0.0"
	if a.Equal(b) {
		t.Error("different cards should not be equal")
	}
}

func TestLoadFile_YAML(t *testing.T) {
	content := `
name: summarizer
description: Summarizes documents
protocolVersion: "0.3.0"
version: "0.1.0"
url: http://localhost:9000
skills:
  - id: summarize
    name: Summarize
`
	path := filepath.Join(t.TempDir(), "card.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name != "summarizer" {
		t.Errorf("expected name summarizer, got %s", c.Name)
	}
	if len(c.Skills) != 1 || c.Skills[0].ID != "summarize" {
		t.Errorf("skills not loaded: %+v", c.Skills)
	}
}

func TestLoadFile_JSON(t *testing.T) {
	content := `{
  "name": "coder",
  "protocolVersion": "0.3.0",
  "version": "1.0.0",
  "url": "http://localhost:9001",
  "skills": [{"id": "code", "name": "Code"}]
}`
	path := filepath.Join(t.TempDir(), "card.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name != "coder" {
		t.Errorf("expected name coder, got %s", c.Name)
	}
}

func TestLoadFile_InvalidCard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.yaml")
	if err := os.WriteFile(path, []byte("name: incomplete\n"), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected validation error for card without url")
	}
}
