// Package query implements the registry search grammar.
//
// A query string is a sequence of whitespace-separated tokens. A quoted span
// ("...") is one token even when it contains whitespace. Tokens of the form
// field:value with a recognized field (name, description, skill) become field
// clauses; everything else is a general term matched against name and
// description. Matching is always case-insensitive substring containment,
// and clauses combine with AND.
//
// Parsing is lenient and never fails: an unterminated quote consumes the
// remainder of the string, and an unrecognized field name degrades the whole
// token to a general term rather than dropping user intent.
package query

import "strings"

// Clause kinds.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldSkill       = "skill"
)

// Clause is one parsed unit of a search string: either a field filter
// (Field set) or a general term (Field empty).
type Clause struct {
	Field string // one of the Field* constants, or "" for a general term
	Value string
}

// General reports whether the clause is a general term.
func (c Clause) General() bool {
	return c.Field == ""
}

// Query is a parsed search string. The zero value matches every card.
type Query struct {
	Clauses []Clause
}

// Empty reports whether the query has no clauses.
func (q Query) Empty() bool {
	return len(q.Clauses) == 0
}

// Parse parses a search string. It never fails; see the package comment for
// the leniency rules.
func Parse(s string) Query {
	var q Query
	if strings.TrimSpace(s) == "" {
		return q
	}

	for _, tok := range tokenize(s) {
		c := classify(tok)
		// An empty value matches everything; dropping the clause keeps
		// skill filters from requiring a non-empty skill list.
		if c.Value == "" {
			continue
		}
		q.Clauses = append(q.Clauses, c)
	}
	return q
}

// tokenize splits on whitespace, keeping quoted spans intact. Quotes bind to
// the token they start in, so name:"My Agent" is a single token. An
// unterminated quote runs to the end of the string.
func tokenize(s string) []string {
	var tokens []string
	var cur strings.Builder
	inQuote := false

	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case !inQuote && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

// classify turns one token into a clause.
func classify(tok string) Clause {
	if field, value, ok := strings.Cut(tok, ":"); ok {
		switch strings.ToLower(field) {
		case FieldName, FieldDescription, FieldSkill:
			return Clause{Field: strings.ToLower(field), Value: unquote(value)}
		}
	}
	return Clause{Value: unquote(tok)}
}

// unquote strips surrounding double quotes. A lone leading quote (from an
// unterminated span) is also stripped.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	if len(s) >= 1 && s[0] == '"' {
		return s[1:]
	}
	return s
}
