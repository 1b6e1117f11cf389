// Package storage provides SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kotae/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS faqs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'public',
		category TEXT NOT NULL DEFAULT 'other',
		tags TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_faqs_status ON faqs(status);
	CREATE INDEX IF NOT EXISTS idx_faqs_category ON faqs(category);
	`
	_, err := db.Exec(schema)
	return err
}

const faqColumns = `id, question, answer, status, category, tags, created_at, updated_at`

// Create inserts an FAQ and fills in its generated ID and timestamps.
func (s *SQLiteStorage) Create(ctx context.Context, faq *models.FAQ) error {
	now := time.Now()
	faq.CreatedAt = now
	faq.UpdatedAt = now

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO faqs (question, answer, status, category, tags, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		faq.Question, faq.Answer, string(faq.Status), faq.Category, marshalTags(faq.Tags),
		faq.CreatedAt, faq.UpdatedAt,
	)
	if err != nil {
		return err
	}
	faq.ID, err = res.LastInsertId()
	return err
}

// Get returns an FAQ by ID.
func (s *SQLiteStorage) Get(ctx context.Context, id int64) (*models.FAQ, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+faqColumns+` FROM faqs WHERE id = ?`, id)
	faq, err := scanFAQ(row)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}
	return faq, nil
}

// Update replaces the mutable columns of an existing FAQ.
func (s *SQLiteStorage) Update(ctx context.Context, faq *models.FAQ) error {
	faq.UpdatedAt = time.Now()

	result, err := s.db.ExecContext(ctx,
		`UPDATE faqs SET question = ?, answer = ?, status = ?, category = ?, tags = ?, updated_at = ?
		 WHERE id = ?`,
		faq.Question, faq.Answer, string(faq.Status), faq.Category, marshalTags(faq.Tags),
		faq.UpdatedAt, faq.ID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return &models.NotFoundError{ID: faq.ID}
	}
	return nil
}

// Delete removes an FAQ by ID.
func (s *SQLiteStorage) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM faqs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return &models.NotFoundError{ID: id}
	}
	return nil
}

// List returns a page of FAQs matching filter plus the total match count.
func (s *SQLiteStorage) List(ctx context.Context, filter models.FAQFilter, limit, offset int) ([]*models.FAQ, int, error) {
	where, args := buildWhere(filter)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM faqs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + faqColumns + ` FROM faqs` + where + ` ORDER BY id LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	faqs, err := scanFAQs(rows)
	if err != nil {
		return nil, 0, err
	}
	return faqs, total, nil
}

// ListAll returns every FAQ ordered by id.
func (s *SQLiteStorage) ListAll(ctx context.Context) ([]*models.FAQ, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+faqColumns+` FROM faqs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFAQs(rows)
}

// SetStatus updates only the status column of an FAQ.
func (s *SQLiteStorage) SetStatus(ctx context.Context, id int64, status models.Status) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE faqs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now(), id,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return &models.NotFoundError{ID: id}
	}
	return nil
}

// Tags returns the sorted set of distinct tags across all FAQs.
func (s *SQLiteStorage) Tags(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tags FROM faqs WHERE tags != '' AND tags != '[]'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]bool)
	for rows.Next() {
		var tagsJSON string
		if err := rows.Scan(&tagsJSON); err != nil {
			return nil, err
		}
		for _, t := range unmarshalTags(tagsJSON) {
			seen[t] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags, nil
}

// Categories returns distinct categories with FAQ counts, ordered by name.
func (s *SQLiteStorage) Categories(ctx context.Context) ([]*models.CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM faqs WHERE category != '' GROUP BY category ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []*models.CategoryCount
	for rows.Next() {
		var c models.CategoryCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		cats = append(cats, &c)
	}
	return cats, rows.Err()
}

// Stats returns aggregate FAQ statistics.
func (s *SQLiteStorage) Stats(ctx context.Context) (*models.FAQStats, error) {
	stats := &models.FAQStats{}
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'public' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'private' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN created_at >= datetime('now', '-7 days') THEN 1 ELSE 0 END), 0),
		       COALESCE(AVG(LENGTH(question)), 0),
		       COALESCE(AVG(LENGTH(answer)), 0),
		       COALESCE(MAX(LENGTH(question)), 0),
		       COALESCE(MAX(LENGTH(answer)), 0),
		       COALESCE(SUM(CASE WHEN tags != '' AND tags != '[]' THEN 1 ELSE 0 END), 0)
		FROM faqs`)
	err := row.Scan(&stats.Total, &stats.Public, &stats.Private, &stats.Pending, &stats.Recent,
		&stats.AvgQuestionLength, &stats.AvgAnswerLength,
		&stats.MaxQuestionLength, &stats.MaxAnswerLength, &stats.WithTags)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Count returns the total number of FAQs.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM faqs`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func buildWhere(filter models.FAQFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Tag != "" {
		// Tags are stored as a JSON array; match the quoted element.
		conds = append(conds, "(tags != '' AND tags != '[]' AND tags LIKE ?)")
		args = append(args, `%"`+filter.Tag+`"%`)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFAQ(row rowScanner) (*models.FAQ, error) {
	var faq models.FAQ
	var status, tagsJSON string
	if err := row.Scan(&faq.ID, &faq.Question, &faq.Answer, &status, &faq.Category,
		&tagsJSON, &faq.CreatedAt, &faq.UpdatedAt); err != nil {
		return nil, err
	}
	faq.Status = models.Status(status)
	faq.Tags = unmarshalTags(tagsJSON)
	return &faq, nil
}

func scanFAQs(rows *sql.Rows) ([]*models.FAQ, error) {
	var faqs []*models.FAQ
	for rows.Next() {
		faq, err := scanFAQ(rows)
		if err != nil {
			return nil, err
		}
		faqs = append(faqs, faq)
	}
	return faqs, rows.Err()
}

func marshalTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func unmarshalTags(tagsJSON string) []string {
	if tagsJSON == "" || tagsJSON == "[]" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
		return []string{}
	}
	return tags
}
