package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sandeepkv93/neptune/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLiteJournal(db *sql.DB) (*SQLiteJournal, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	return &SQLiteJournal{db: db}, nil
}

// OpenJournal opens the journal database at path, creating it and applying
// migrations as needed.
func OpenJournal(path string) (*SQLiteJournal, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	journal, err := NewSQLiteJournal(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return journal, nil
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

func (j *SQLiteJournal) Append(ctx context.Context, in Entry) (int64, error) {
	if in.TaskID == 0 {
		return 0, model.ErrZeroID
	}
	if in.At.IsZero() {
		in.At = time.Now()
	}
	res, err := j.db.ExecContext(ctx, `
		INSERT INTO journal_entries (document, task_id, kind, text, at)
		VALUES (?, ?, ?, ?, ?)`,
		in.Document, in.TaskID.String(), in.Kind, in.Text, mustTime(in.At),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (j *SQLiteJournal) Get(ctx context.Context, id int64) (Entry, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT id, document, task_id, kind, text, at
		FROM journal_entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	return entry, nil
}

// List returns entries newest first.
func (j *SQLiteJournal) List(ctx context.Context, filter EntryFilter) ([]Entry, error) {
	query := `SELECT id, document, task_id, kind, text, at FROM journal_entries`
	clauses := make([]string, 0, 4)
	args := make([]any, 0, 6)
	if filter.Document != "" {
		clauses = append(clauses, "document = ?")
		args = append(args, filter.Document)
	}
	if filter.TaskID != 0 {
		clauses = append(clauses, "task_id = ?")
		args = append(args, filter.TaskID.String())
	}
	if filter.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, filter.Kind)
	}
	if !filter.Since.IsZero() {
		clauses = append(clauses, "at >= ?")
		args = append(args, mustTime(filter.Since))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY at DESC, id DESC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		entry, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// Prune deletes entries older than before and reports how many went.
func (j *SQLiteJournal) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := j.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE at < ?`, mustTime(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// The fixed-width layout keeps lexical order equal to time order in sqlite.
func mustTime(v time.Time) string {
	return v.UTC().Format("2006-01-02T15:04:05.000000000Z")
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		if limit <= 0 {
			sql += " LIMIT -1"
		}
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var out Entry
	var taskID string
	var at string
	if err := s.Scan(&out.ID, &out.Document, &taskID, &out.Kind, &out.Text, &at); err != nil {
		return Entry{}, err
	}
	id, err := model.ParseID(taskID)
	if err != nil {
		return Entry{}, err
	}
	atTime, err := parseRequiredTime(at)
	if err != nil {
		return Entry{}, err
	}
	out.TaskID = id
	out.At = atTime
	return out, nil
}
