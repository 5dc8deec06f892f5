// Package card defines the agent card record type exchanged with a registry.
//
// The shape follows the A2A agent card: the registry treats it as opaque data
// apart from the fields the query engine filters on (name, description,
// skills).
package card

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openhive-oss/openhive/internal/errors"
)

// Skill is a named capability entry attached to an AgentCard.
type Skill struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// AgentCard describes one discoverable agent.
type AgentCard struct {
	// ID is assigned by the registry when empty on add.
	ID              string          `json:"id,omitempty" yaml:"id,omitempty"`
	Name            string          `json:"name" yaml:"name"`
	Description     string          `json:"description,omitempty" yaml:"description,omitempty"`
	ProtocolVersion string          `json:"protocolVersion" yaml:"protocolVersion"`
	Version         string          `json:"version" yaml:"version"`
	URL             string          `json:"url" yaml:"url"`
	Skills          []Skill         `json:"skills" yaml:"skills"`
	Capabilities    map[string]bool `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
}

// Validate checks the fields required for registration.
func (c *AgentCard) Validate() error {
	if c == nil {
		return errors.New(errors.CodeInvalidArgument, "agent card is nil")
	}
	if strings.TrimSpace(c.Name) == "" {
		return errors.New(errors.CodeInvalidArgument, "agent name is required")
	}
	if strings.TrimSpace(c.URL) == "" {
		return errors.New(errors.CodeInvalidArgument, "agent url is required")
	}
	seen := make(map[string]bool, len(c.Skills))
	for _, s := range c.Skills {
		if s.ID == "" {
			return errors.Newf(errors.CodeInvalidArgument, "skill %q is missing an id", s.Name)
		}
		if seen[s.ID] {
			return errors.Newf(errors.CodeInvalidArgument, "duplicate skill id %q", s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

// Clone returns a deep copy. Adapters copy cards in and out on every call so
// callers never share mutable state with a backend.
func (c *AgentCard) Clone() *AgentCard {
	if c == nil {
		return nil
	}
	out := *c
	if c.Skills != nil {
		out.Skills = make([]Skill, len(c.Skills))
		for i, s := range c.Skills {
			out.Skills[i] = s
			if s.Tags != nil {
				out.Skills[i].Tags = append([]string(nil), s.Tags...)
			}
		}
	}
	if c.Capabilities != nil {
		out.Capabilities = make(map[string]bool, len(c.Capabilities))
		for k, v := range c.Capabilities {
			out.Capabilities[k] = v
		}
	}
	return &out
}

// Equal reports field-for-field equality. Skill order is significant.
func (c *AgentCard) Equal(other *AgentCard) bool {
	if c == nil || other == nil {
		return c == other
	}
	a, err := json.Marshal(c)
	if err != nil {
		return false
	}
	b, err := json.Marshal(other)
	if err != nil {
		return false
	}
	return string(a) == string(b)
}

// LoadFile reads an agent card from a YAML or JSON file.
func LoadFile(path string) (*AgentCard, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read card file: %w", err)
	}

	var c AgentCard
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(content, &c); err != nil {
			return nil, errors.Wrap(errors.CodeInvalidArgument, "failed to parse card JSON", err)
		}
	default:
		if err := yaml.Unmarshal(content, &c); err != nil {
			return nil, errors.Wrap(errors.CodeInvalidArgument, "failed to parse card YAML", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
