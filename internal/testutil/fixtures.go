// Package testutil provides shared fixtures for registry tests.
package testutil

import (
	"github.com/openhive-oss/openhive/internal/card"
	"github.com/openhive-oss/openhive/internal/telemetry"
)

// TestLogger returns a logger suitable for tests (debug level, text output).
func TestLogger() *telemetry.Logger {
	return telemetry.NewLogger("debug", "text")
}

// Card returns a valid agent card with the given name and skill ids.
func Card(name string, skillIDs ...string) *card.AgentCard {
	skills := make([]card.Skill, len(skillIDs))
	for i, id := range skillIDs {
		skills[i] = card.Skill{ID: id, Name: id}
	}
	return &card.AgentCard{
		Name:            name,
		Description:     "test agent " + name,
		URL:             "http://localhost:9000/" + name,
		Version:         "1.0.0",
		ProtocolVersion: "0.3.0",
		Skills:          skills,
	}
}
