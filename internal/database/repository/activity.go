package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// Activity is one journal row: a console command and how it ended.
type Activity struct {
	ID        string
	Entity    string
	EntityID  string
	Action    string
	Detail    string
	Outcome   string
	CreatedAt time.Time
}

// ActivityFilters narrows List. Zero values match everything; Limit 0 means
// no limit.
type ActivityFilters struct {
	Entity   string
	EntityID string
	Outcome  string
	Limit    int
}

// ActivityRepo handles the activity journal.
type ActivityRepo struct {
	db *sql.DB
}

func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{db: db} }

func (r *ActivityRepo) Insert(ctx context.Context, a Activity) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO activity(id, entity, entity_id, action, detail, outcome, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?);
	`, a.ID, a.Entity, a.EntityID, a.Action, a.Detail, a.Outcome, a.CreatedAt)
	return err
}

// List returns matching rows, newest first.
func (r *ActivityRepo) List(ctx context.Context, f ActivityFilters) ([]Activity, error) {
	var where []string
	var args []interface{}

	if f.Entity != "" {
		where = append(where, "entity = ?")
		args = append(args, f.Entity)
	}
	if f.EntityID != "" {
		where = append(where, "entity_id = ?")
		args = append(args, f.EntityID)
	}
	if f.Outcome != "" {
		where = append(where, "outcome = ?")
		args = append(args, f.Outcome)
	}

	query := "SELECT id, entity, entity_id, action, detail, outcome, created_at FROM activity"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.Entity, &a.EntityID, &a.Action, &a.Detail, &a.Outcome, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CountByOutcome tallies journal rows per outcome.
func (r *ActivityRepo) CountByOutcome(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM activity GROUP BY outcome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		out[outcome] = n
	}
	return out, rows.Err()
}

// Prune keeps the newest keep rows and deletes the rest.
func (r *ActivityRepo) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := r.db.ExecContext(ctx, `
	DELETE FROM activity
	WHERE seq NOT IN (SELECT seq FROM activity ORDER BY seq DESC LIMIT ?);
	`, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
