package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// ObjectIndex implements storage.MetadataIndex against the storage_objects
// table, the row store's mirror of object paths. The pattern-query steps of
// the locator run here because the object store itself has no substring
// search.
type ObjectIndex struct{ db *sql.DB }

// NewObjectIndex creates a Postgres-backed object metadata index.
func NewObjectIndex(db *sql.DB) *ObjectIndex { return &ObjectIndex{db: db} }

// Search returns object keys in bucket matching the SQL LIKE pattern,
// oldest first so re-resolution is stable across calls.
func (x *ObjectIndex) Search(ctx context.Context, bucket, pattern string) ([]string, error) {
	rows, err := x.db.QueryContext(ctx, `
		SELECT name
		FROM storage_objects
		WHERE bucket_id = $1 AND name LIKE $2
		ORDER BY created_at ASC, name ASC
	`, bucket, pattern)
	if err != nil {
		return nil, fmt.Errorf("search storage objects: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan storage object: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
