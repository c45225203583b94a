package catalog

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/lkr/internal/index"
)

// Upsert inserts or replaces the row for e.Path together with its tags and
// related ids, within one transaction.
func (db *DB) Upsert(e index.Entry, checksum string, related []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO entries (path, id, title, type, status, created, updated, checksum)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			id       = excluded.id,
			title    = excluded.title,
			type     = excluded.type,
			status   = excluded.status,
			created  = excluded.created,
			updated  = excluded.updated,
			checksum = excluded.checksum
	`, e.Path, e.ID, e.Title, e.Type, nullable(e.Status), e.Created, nullable(e.Updated), checksum)
	if err != nil {
		return fmt.Errorf("catalog: upsert entry: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM entry_tags WHERE path = ?`, e.Path); err != nil {
		return fmt.Errorf("catalog: clear tags: %w", err)
	}
	for i, tag := range e.Tags {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO entry_tags (path, tag, pos) VALUES (?, ?, ?)`, e.Path, tag, i); err != nil {
			return fmt.Errorf("catalog: insert tag: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM related WHERE path = ?`, e.Path); err != nil {
		return fmt.Errorf("catalog: clear related: %w", err)
	}
	for _, target := range related {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO related (path, target) VALUES (?, ?)`, e.Path, target); err != nil {
			return fmt.Errorf("catalog: insert related: %w", err)
		}
	}

	return tx.Commit()
}

// Delete removes the row at path; tags and related ids cascade.
func (db *DB) Delete(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM entries WHERE path = ?`, path); err != nil {
		return fmt.Errorf("catalog: delete %s: %w", path, err)
	}
	return nil
}

// AllChecksums returns the stored checksum of every mirrored path.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Count returns the number of mirrored entries.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("catalog: count: %w", err)
	}
	return n, nil
}

// List returns entries carrying tag (if non-empty) and of type typ (if
// non-empty), ordered by path.
func (db *DB) List(tag, typ string) ([]index.Entry, error) {
	var (
		where []string
		args  []any
	)
	if tag != "" {
		where = append(where, `e.path IN (SELECT path FROM entry_tags WHERE tag = ?)`)
		args = append(args, tag)
	}
	if typ != "" {
		where = append(where, `e.type = ?`)
		args = append(args, typ)
	}
	return db.query(where, args)
}

// Get returns every row carrying id. More than one row means the id is
// duplicated across files.
func (db *DB) Get(id string) ([]index.Entry, error) {
	return db.query([]string{`e.id = ?`}, []any{id})
}

// Backlinks returns the entries whose related list contains id.
func (db *DB) Backlinks(id string) ([]index.Entry, error) {
	return db.query([]string{`e.path IN (SELECT path FROM related WHERE target = ?)`}, []any{id})
}

func (db *DB) query(where []string, args []any) ([]index.Entry, error) {
	q := `SELECT e.path, e.id, e.title, e.type, e.status, e.created, e.updated FROM entries e`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}
	q += ` ORDER BY e.path`

	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: query: %w", err)
	}
	defer rows.Close()

	out := []index.Entry{}
	for rows.Next() {
		var (
			e               index.Entry
			status, updated sql.NullString
		)
		if err := rows.Scan(&e.Path, &e.ID, &e.Title, &e.Type, &status, &e.Created, &updated); err != nil {
			return nil, err
		}
		e.Status = fromNullable(status)
		e.Updated = fromNullable(updated)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range out {
		tags, err := db.tags(out[i].Path)
		if err != nil {
			return nil, err
		}
		out[i].Tags = tags
	}
	return out, nil
}

func (db *DB) tags(path string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT tag FROM entry_tags WHERE path = ? ORDER BY pos`, path)
	if err != nil {
		return nil, fmt.Errorf("catalog: tags: %w", err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
