package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// QuestionStore is the single global list of generated questions.
type QuestionStore interface {
	// ReplaceAll clears the store and inserts questions in order.
	ReplaceAll(ctx context.Context, questions []string) error
	// ListAll returns every stored question in insertion order.
	ListAll(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
}

type SQLiteQuestionStore struct {
	db *sql.DB
}

func NewQuestionStore(db *sql.DB) *SQLiteQuestionStore {
	return &SQLiteQuestionStore{db: db}
}

func (s *SQLiteQuestionStore) ReplaceAll(ctx context.Context, questions []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions;`); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO questions (question, created_at) VALUES (?, ?);`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, q := range questions {
		if _, err := stmt.ExecContext(ctx, q, now); err != nil {
			return fmt.Errorf("insert question %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit questions: %w", err)
	}
	return nil
}

func (s *SQLiteQuestionStore) ListAll(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT question FROM questions ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	questions := []string{}
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *SQLiteQuestionStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}
