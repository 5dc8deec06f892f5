package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/openhive-oss/openhive/internal/card"
	"github.com/openhive-oss/openhive/internal/errors"
)

// SQLiteAdapter is a durable, file-backed adapter. Cards map to an agents
// table plus a skills table keyed by the owning agent; every multi-statement
// write runs inside a single transaction so a partial card is never
// observable.
type SQLiteAdapter struct {
	db *sql.DB
}

// NewSQLiteAdapter opens (creating if needed) the database at path.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.CodeStorageError, "failed to create database directory", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeStorageError, "failed to open database", err)
	}

	a := &SQLiteAdapter{db: db}
	if err := a.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.CodeStorageError, "failed to migrate database", err)
	}
	return a, nil
}

// migrate creates the necessary tables.
func (a *SQLiteAdapter) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS agents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT,
		protocol_version TEXT,
		version TEXT,
		url TEXT NOT NULL,
		capabilities JSON,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS skills (
		agent_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		skill_id TEXT NOT NULL,
		name TEXT,
		description TEXT,
		tags JSON,
		PRIMARY KEY (agent_id, position),
		FOREIGN KEY (agent_id) REFERENCES agents(id)
	);

	CREATE INDEX IF NOT EXISTS idx_skills_agent_id ON skills(agent_id);
	`

	_, err := a.db.Exec(schema)
	return err
}

// Add stores the card and its skills in one transaction.
func (a *SQLiteAdapter) Add(ctx context.Context, c *card.AgentCard, _ ...CallOption) (*card.AgentCard, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	stored := c.Clone()
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(errors.CodeStorageError, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM agents WHERE id = ? OR name = ?", stored.ID, stored.Name).Scan(&exists)
	if err != nil {
		return nil, errors.Wrap(errors.CodeStorageError, "failed to check for duplicates", err)
	}
	if exists > 0 {
		return nil, errors.Newf(errors.CodeDuplicateID, "agent %q already exists", stored.Name)
	}

	if err := insertAgent(ctx, tx, stored); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(errors.CodeStorageError, "failed to commit", err)
	}
	return stored, nil
}

// Get returns the card matching the identifier or name, with skills joined.
func (a *SQLiteAdapter) Get(ctx context.Context, id string, _ ...CallOption) (*card.AgentCard, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT id, name, description, protocol_version, version, url, capabilities
		FROM agents WHERE id = ? OR name = ?
	`, id, id)

	c, err := scanAgent(row)
	if err == sql.ErrNoRows {
		return nil, errors.Newf(errors.CodeNotFound, "agent %q not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeStorageError, "failed to load agent", err)
	}

	if err := a.loadSkills(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns cards in insertion order.
func (a *SQLiteAdapter) List(ctx context.Context, page Page, _ ...CallOption) ([]*card.AgentCard, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT id, name, description, protocol_version, version, url, capabilities
		FROM agents ORDER BY rowid
	`)
	if err != nil {
		return nil, errors.Wrap(errors.CodeStorageError, "failed to list agents", err)
	}
	defer rows.Close()

	var cards []*card.AgentCard
	for rows.Next() {
		c, err := scanAgent(rows)
		if err != nil {
			return nil, errors.Wrap(errors.CodeStorageError, "failed to scan agent", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.CodeStorageError, "failed to list agents", err)
	}

	for _, c := range cards {
		if err := a.loadSkills(ctx, c); err != nil {
			return nil, err
		}
	}
	return page.Slice(cards), nil
}

// Update replaces the stored card, keeping its identifier stable.
func (a *SQLiteAdapter) Update(ctx context.Context, id string, c *card.AgentCard, _ ...CallOption) (*card.AgentCard, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(errors.CodeStorageError, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	var storedID string
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM agents WHERE id = ? OR name = ?", id, id).Scan(&storedID)
	if err == sql.ErrNoRows {
		return nil, errors.Newf(errors.CodeNotFound, "agent %q not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeStorageError, "failed to resolve agent", err)
	}

	stored := c.Clone()
	stored.ID = storedID

	var conflicts int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM agents WHERE name = ? AND id != ?", stored.Name, storedID).Scan(&conflicts)
	if err != nil {
		return nil, errors.Wrap(errors.CodeStorageError, "failed to check for duplicates", err)
	}
	if conflicts > 0 {
		return nil, errors.Newf(errors.CodeDuplicateID, "agent named %q already exists", stored.Name)
	}

	caps, err := marshalJSON(stored.Capabilities)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE agents SET name = ?, description = ?, protocol_version = ?, version = ?, url = ?, capabilities = ?
		WHERE id = ?
	`, stored.Name, stored.Description, stored.ProtocolVersion, stored.Version, stored.URL, caps, storedID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeStorageError, "failed to update agent", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM skills WHERE agent_id = ?", storedID); err != nil {
		return nil, errors.Wrap(errors.CodeStorageError, "failed to replace skills", err)
	}
	if err := insertSkills(ctx, tx, stored); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(errors.CodeStorageError, "failed to commit", err)
	}
	return stored, nil
}

// Delete removes the card matching the identifier or name.
func (a *SQLiteAdapter) Delete(ctx context.Context, id string, _ ...CallOption) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.CodeStorageError, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	var storedID string
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM agents WHERE id = ? OR name = ?", id, id).Scan(&storedID)
	if err == sql.ErrNoRows {
		return errors.Newf(errors.CodeNotFound, "agent %q not found", id)
	}
	if err != nil {
		return errors.Wrap(errors.CodeStorageError, "failed to resolve agent", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM skills WHERE agent_id = ?", storedID); err != nil {
		return errors.Wrap(errors.CodeStorageError, "failed to delete skills", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM agents WHERE id = ?", storedID); err != nil {
		return errors.Wrap(errors.CodeStorageError, "failed to delete agent", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.CodeStorageError, "failed to commit", err)
	}
	return nil
}

// Clear removes all cards.
func (a *SQLiteAdapter) Clear(ctx context.Context, _ ...CallOption) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.CodeStorageError, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM skills"); err != nil {
		return errors.Wrap(errors.CodeStorageError, "failed to clear skills", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM agents"); err != nil {
		return errors.Wrap(errors.CodeStorageError, "failed to clear agents", err)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.CodeStorageError, "failed to commit", err)
	}
	return nil
}

// Close closes the database connection.
func (a *SQLiteAdapter) Close() error {
	return a.db.Close()
}

func insertAgent(ctx context.Context, tx *sql.Tx, c *card.AgentCard) error {
	caps, err := marshalJSON(c.Capabilities)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO agents (id, name, description, protocol_version, version, url, capabilities)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Description, c.ProtocolVersion, c.Version, c.URL, caps)
	if err != nil {
		return errors.Wrap(errors.CodeStorageError, "failed to insert agent", err)
	}
	return insertSkills(ctx, tx, c)
}

func insertSkills(ctx context.Context, tx *sql.Tx, c *card.AgentCard) error {
	for i, s := range c.Skills {
		tags, err := marshalJSON(s.Tags)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO skills (agent_id, position, skill_id, name, description, tags)
			VALUES (?, ?, ?, ?, ?, ?)
		`, c.ID, i, s.ID, s.Name, s.Description, tags)
		if err != nil {
			return errors.Wrap(errors.CodeStorageError, fmt.Sprintf("failed to insert skill %q", s.ID), err)
		}
	}
	return nil
}

// loadSkills joins the skills rows onto the card, preserving order.
func (a *SQLiteAdapter) loadSkills(ctx context.Context, c *card.AgentCard) error {
	rows, err := a.db.QueryContext(ctx, `
		SELECT skill_id, name, description, tags
		FROM skills WHERE agent_id = ? ORDER BY position
	`, c.ID)
	if err != nil {
		return errors.Wrap(errors.CodeStorageError, "failed to load skills", err)
	}
	defer rows.Close()

	c.Skills = nil
	for rows.Next() {
		var s card.Skill
		var tags sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &tags); err != nil {
			return errors.Wrap(errors.CodeStorageError, "failed to scan skill", err)
		}
		if tags.Valid && tags.String != "" {
			if err := json.Unmarshal([]byte(tags.String), &s.Tags); err != nil {
				return errors.Wrap(errors.CodeStorageError, "failed to decode skill tags", err)
			}
		}
		c.Skills = append(c.Skills, s)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAgent(row rowScanner) (*card.AgentCard, error) {
	var c card.AgentCard
	var description, protocolVersion, version, caps sql.NullString
	err := row.Scan(&c.ID, &c.Name, &description, &protocolVersion, &version, &c.URL, &caps)
	if err != nil {
		return nil, err
	}
	c.Description = description.String
	c.ProtocolVersion = protocolVersion.String
	c.Version = version.String
	if caps.Valid && caps.String != "" {
		if err := json.Unmarshal([]byte(caps.String), &c.Capabilities); err != nil {
			return nil, fmt.Errorf("failed to decode capabilities: %w", err)
		}
	}
	return &c, nil
}

func marshalJSON(v interface{}) (string, error) {
	if v == nil {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(errors.CodeStorageError, "failed to encode JSON column", err)
	}
	return string(data), nil
}
