package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"coregw/internal/subscriber/models"
	"coregw/pkg/platform/sentinel"
)

// Postgres persists subscriber records as JSONB documents, one row per
// subscriber keyed uniquely by IMSI. The document column holds the exact
// wire shape; the imsi and name columns are projections for keying and
// filtering only.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the subscribers table. The primary key on imsi is the
// final arbiter of the uniqueness invariant under concurrent creation.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS subscribers (
	imsi TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	doc  JSONB NOT NULL
)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure subscribers schema: %w", err)
	}
	return nil
}

func (s *Postgres) List(ctx context.Context, filter Filter, limit, offset int) ([]*models.SubscriberRecord, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Name != "" {
		args = append(args, filter.Name)
		conds = append(conds, fmt.Sprintf("name ILIKE '%%' || $%d || '%%'", len(args)))
	}
	if filter.Sst != nil {
		// At-least-one-slice-matches, expressed as JSONB array containment:
		// the probe array's single element must be a subset of some element
		// of doc->'slices'. Must agree with Filter.Matches.
		elem := map[string]any{"sst": *filter.Sst}
		if filter.Sd != "" {
			elem["sd"] = filter.Sd
		}
		probe, err := json.Marshal([]any{elem})
		if err != nil {
			return nil, fmt.Errorf("marshal slice filter: %w", err)
		}
		args = append(args, string(probe))
		conds = append(conds, fmt.Sprintf("doc->'slices' @> $%d::jsonb", len(args)))
	}

	query := "SELECT doc FROM subscribers"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY imsi LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	var out []*models.SubscriberRecord
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		var rec models.SubscriberRecord
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, fmt.Errorf("decode subscriber document: %w", err)
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return out, nil
}

func (s *Postgres) GetByIMSI(ctx context.Context, imsi string) (*models.SubscriberRecord, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, "SELECT doc FROM subscribers WHERE imsi = $1", imsi).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subscriber: %w", err)
	}
	var rec models.SubscriberRecord
	if err := json.Unmarshal(doc, &rec); err != nil {
		return nil, fmt.Errorf("decode subscriber document: %w", err)
	}
	return &rec, nil
}

func (s *Postgres) Create(ctx context.Context, rec *models.SubscriberRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode subscriber document: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO subscribers (imsi, name, doc) VALUES ($1, $2, $3)",
		rec.IMSI, rec.Name, doc)
	if isUniqueViolation(err) {
		return sentinel.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create subscriber: %w", err)
	}
	return nil
}

func (s *Postgres) ReplaceByIMSI(ctx context.Context, imsi string, rec *models.SubscriberRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode subscriber document: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE subscribers SET name = $2, doc = $3 WHERE imsi = $1",
		imsi, rec.Name, doc)
	if err != nil {
		return fmt.Errorf("replace subscriber: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("replace subscriber: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) DeleteByIMSI(ctx context.Context, imsi string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM subscribers WHERE imsi = $1", imsi)
	if err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
