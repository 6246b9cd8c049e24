package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mika/artist-ledger/internal/template"
	"github.com/mika/artist-ledger/internal/util"
)

// InsertTemplate persists a new import template. The payload is
// validated for internal consistency before the write.
func (s *Store) InsertTemplate(t *template.Template) error {
	if t.Name == "" {
		return fmt.Errorf("%w: template name is required", util.ErrValidation)
	}
	if err := t.Validate(); err != nil {
		return err
	}

	result, err := s.db.Exec(`
		INSERT INTO import_templates (name, source_name, category, headers, mappings)
		VALUES (?, ?, ?, ?, ?)
	`, t.Name, t.SourceName, t.Category, t.RawHeaders, t.RawMappings)
	if err != nil {
		return fmt.Errorf("failed to insert template: %w", err)
	}

	t.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get template ID: %w", err)
	}
	return nil
}

// GetTemplate retrieves a template by id, or nil when absent
func (s *Store) GetTemplate(id int64) (*template.Template, error) {
	return s.scanTemplate(s.db.QueryRow(`
		SELECT id, name, COALESCE(source_name, ''), COALESCE(category, ''),
		       headers, mappings, created_at, updated_at
		FROM import_templates WHERE id = ?
	`, id))
}

// GetTemplateByName retrieves a template by name, or nil when absent
func (s *Store) GetTemplateByName(name string) (*template.Template, error) {
	return s.scanTemplate(s.db.QueryRow(`
		SELECT id, name, COALESCE(source_name, ''), COALESCE(category, ''),
		       headers, mappings, created_at, updated_at
		FROM import_templates WHERE name = ?
	`, name))
}

func (s *Store) scanTemplate(row *sql.Row) (*template.Template, error) {
	t := &template.Template{}
	err := row.Scan(
		&t.ID, &t.Name, &t.SourceName, &t.Category,
		&t.RawHeaders, &t.RawMappings, &t.CreatedAt, &t.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return t, nil
}

// ListTemplates returns all templates ordered by name
func (s *Store) ListTemplates() ([]*template.Template, error) {
	rows, err := s.db.Query(`
		SELECT id, name, COALESCE(source_name, ''), COALESCE(category, ''),
		       headers, mappings, created_at, updated_at
		FROM import_templates ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []*template.Template
	for rows.Next() {
		t := &template.Template{}
		if err := rows.Scan(
			&t.ID, &t.Name, &t.SourceName, &t.Category,
			&t.RawHeaders, &t.RawMappings, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// UpdateTemplate revises a template's payload and metadata. Identity is
// untouched, so already-imported entries keep their reference; edits
// apply only to future imports.
func (s *Store) UpdateTemplate(t *template.Template) error {
	if err := t.Validate(); err != nil {
		return err
	}

	result, err := s.db.Exec(`
		UPDATE import_templates
		SET source_name = ?, category = ?, headers = ?, mappings = ?, updated_at = ?
		WHERE id = ?
	`, t.SourceName, t.Category, t.RawHeaders, t.RawMappings, time.Now(), t.ID)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: template %d", util.ErrNotFound, t.ID)
	}
	return nil
}
