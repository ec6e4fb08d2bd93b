package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetIntegration returns the stored content of an integration record.
func (r *Repository) GetIntegration(ctx context.Context, id string) (string, bool, error) {
	var content string
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(content, '') FROM integrations WHERE id = $1 LIMIT 1`, id).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load integration %s: %w", id, err)
	}
	return content, true, nil
}

// ListIntegrations returns every record whose id starts with prefix.
func (r *Repository) ListIntegrations(ctx context.Context, prefix string) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, COALESCE(content, '') FROM integrations
WHERE starts_with(id, $1)
ORDER BY id`, prefix)
	if err != nil {
		return nil, fmt.Errorf("list integrations %s*: %w", prefix, err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, content string
		if err := rows.Scan(&id, &content); err != nil {
			return nil, fmt.Errorf("scan integration: %w", err)
		}
		out[id] = content
	}
	return out, rows.Err()
}

// UpsertIntegration stores content under id.
func (r *Repository) UpsertIntegration(ctx context.Context, id, content string) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO integrations (id, content, updated_at) VALUES ($1, $2, now())
ON CONFLICT (id) DO UPDATE SET content = EXCLUDED.content, updated_at = now()`, id, content)
	if err != nil {
		return fmt.Errorf("upsert integration %s: %w", id, err)
	}
	return nil
}

// DeleteIntegration removes a stored record.
func (r *Repository) DeleteIntegration(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM integrations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete integration %s: %w", id, err)
	}
	return nil
}
