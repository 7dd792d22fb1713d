package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/readtree/pkg/debug"
	"github.com/vanderheijden86/readtree/pkg/nav"
)

// Schema of an outline database. Children are ordered by position, then by
// insertion order.
const outlineSchema = `
CREATE TABLE IF NOT EXISTS outline_nodes (
	id        TEXT PRIMARY KEY,
	parent_id TEXT,
	label     TEXT NOT NULL,
	value     TEXT NOT NULL DEFAULT '',
	kind      TEXT NOT NULL DEFAULT '',
	expanded  INTEGER NOT NULL DEFAULT 0,
	position  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_outline_parent ON outline_nodes(parent_id, position);
`

// ErrReadOnly is returned when removing a node from a source that cannot be
// written.
var ErrReadOnly = errors.New("outline source is read-only")

// SQLiteReader serves an outline database. Children are queried only when
// their parent is first expanded.
type SQLiteReader struct {
	db       *sql.DB
	path     string
	readOnly bool
}

// NewSQLiteReader opens an outline database. With readOnly set the
// connection is opened with mode=ro and RemoveNode fails.
func NewSQLiteReader(source DataSource, readOnly bool) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", source.Path)
	if readOnly {
		dsn += "&mode=ro"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	return &SQLiteReader{db: db, path: source.Path, readOnly: readOnly}, nil
}

// Close closes the database connection.
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Path returns the database file.
func (r *SQLiteReader) Path() string { return r.path }

// CountNodes returns the number of rows in outline_nodes. It doubles as the
// schema check used by ValidateSource.
func (r *SQLiteReader) CountNodes(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outline_nodes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting outline nodes: %w", err)
	}
	return n, nil
}

// Roots returns the top-level nodes. Nodes with children get a lazy builder
// bound to this reader.
func (r *SQLiteReader) Roots(ctx context.Context) ([]nav.Spec, error) {
	return r.children(ctx, "")
}

func (r *SQLiteReader) children(ctx context.Context, parentID string) ([]nav.Spec, error) {
	query := `
		SELECT n.id, n.label, n.value, n.kind, n.expanded,
			(SELECT COUNT(*) FROM outline_nodes c WHERE c.parent_id = n.id)
		FROM outline_nodes n
		WHERE COALESCE(n.parent_id, '') = ?
		ORDER BY n.position, n.rowid
	`
	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("querying children of %q: %w", parentID, err)
	}
	defer rows.Close()

	var specs []nav.Spec
	for rows.Next() {
		var (
			id, label, value, kind string
			expanded               bool
			childCount             int
		)
		if err := rows.Scan(&id, &label, &value, &kind, &expanded, &childCount); err != nil {
			return nil, fmt.Errorf("scanning outline node: %w", err)
		}
		spec := nav.Spec{
			Label:    label,
			Value:    value,
			Kind:     kindOf(kind, childCount > 0),
			Payload:  Ref{Source: r.path, ID: id},
			Expanded: expanded,
		}
		if childCount > 0 {
			spec.Lazy = r.lazyChildren(id)
		}
		specs = append(specs, spec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outline nodes: %w", err)
	}
	return specs, nil
}

func (r *SQLiteReader) lazyChildren(id string) nav.ChildBuilder {
	return func(nav.Node) ([]nav.Spec, error) {
		debug.Log("sqlite: loading children of %s", id)
		return r.children(context.Background(), id)
	}
}

// RemoveNode deletes a node and its whole subtree.
func (r *SQLiteReader) RemoveNode(ctx context.Context, id string) error {
	if r.readOnly {
		return ErrReadOnly
	}
	res, err := r.db.ExecContext(ctx, `
		WITH RECURSIVE doomed(id) AS (
			SELECT id FROM outline_nodes WHERE id = ?
			UNION ALL
			SELECT n.id FROM outline_nodes n JOIN doomed d ON n.parent_id = d.id
		)
		DELETE FROM outline_nodes WHERE id IN (SELECT id FROM doomed)
	`, id)
	if err != nil {
		return fmt.Errorf("removing %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("removing %q: %w", id, sql.ErrNoRows)
	}
	debug.Log("sqlite: removed %s from %s", id, r.path)
	return nil
}

// ExportSQLite writes an outline into a new database at path, replacing any
// outline_nodes rows already there. Nodes without an ID get their label path.
func ExportSQLite(ctx context.Context, path string, o Outline) error {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path))
	if err != nil {
		return fmt.Errorf("cannot open database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, outlineSchema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM outline_nodes`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO outline_nodes (id, parent_id, label, value, kind, expanded, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	var insert func(nodes []OutlineNode, parentID sql.NullString, path []string) error
	insert = func(nodes []OutlineNode, parentID sql.NullString, path []string) error {
		for i, n := range nodes {
			p := append(path[:len(path):len(path)], n.Label)
			id := n.ID
			if id == "" {
				id = strings.Join(p, "/")
			}
			if _, err := stmt.ExecContext(ctx, id, parentID, n.Label, string(n.Value), n.Kind, n.Expanded, i); err != nil {
				return fmt.Errorf("inserting %q: %w", id, err)
			}
			if err := insert(n.Children, sql.NullString{String: id, Valid: true}, p); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insert(o.Nodes, sql.NullString{}, nil); err != nil {
		return err
	}
	return tx.Commit()
}
