package query

import (
	"strings"

	"github.com/openhive-oss/openhive/internal/card"
)

// Matches reports whether the card satisfies every clause of the query.
// An empty query matches every card. The evaluator is a pure filter function,
// independent of which backend produced the card.
func (q Query) Matches(c *card.AgentCard) bool {
	if c == nil {
		return false
	}
	for _, clause := range q.Clauses {
		if !matchClause(c, clause) {
			return false
		}
	}
	return true
}

// Filter returns the cards matching the query, preserving input order.
func (q Query) Filter(cards []*card.AgentCard) []*card.AgentCard {
	if q.Empty() {
		return cards
	}
	out := make([]*card.AgentCard, 0, len(cards))
	for _, c := range cards {
		if q.Matches(c) {
			out = append(out, c)
		}
	}
	return out
}

func matchClause(c *card.AgentCard, clause Clause) bool {
	value := strings.ToLower(clause.Value)

	switch clause.Field {
	case FieldName:
		return contains(c.Name, value)
	case FieldDescription:
		return contains(c.Description, value)
	case FieldSkill:
		// Substring on either id or name, consistent with the other
		// fields: skill:chat also matches a "chatbot" skill.
		for _, s := range c.Skills {
			if contains(s.ID, value) || contains(s.Name, value) {
				return true
			}
		}
		return false
	default:
		// General term: name OR description.
		return contains(c.Name, value) || contains(c.Description, value)
	}
}

func contains(haystack, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(haystack), lowerNeedle)
}
