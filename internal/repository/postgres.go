package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"costa-assist/internal/model"
)

// schema is applied by EnsureSchema; every statement is idempotent
const schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS chat_logs (
	id               UUID PRIMARY KEY,
	session_id       TEXT,
	locale           VARCHAR(2) NOT NULL,
	message          TEXT NOT NULL,
	filters          JSONB,
	region_id        INT,
	reply            TEXT NOT NULL,
	listing_ids      JSONB,
	response_time_ms INT NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS answer_corrections (
	id         UUID PRIMARY KEY,
	question   TEXT NOT NULL,
	bad_answer TEXT NOT NULL,
	answer     TEXT NOT NULL,
	link       TEXT NOT NULL,
	locale     VARCHAR(2) NOT NULL,
	filters    JSONB,
	embedding  vector,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS chat_feedback (
	id         UUID PRIMARY KEY,
	chat_id    UUID NOT NULL,
	rating     VARCHAR(8) NOT NULL,
	comment    TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS chat_logs_created_at_idx ON chat_logs (created_at);
CREATE INDEX IF NOT EXISTS chat_feedback_chat_id_idx ON chat_feedback (chat_id);
`

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute) // Shorter lifetime to avoid stale connections
	db.SetConnMaxIdleTime(2 * time.Minute)

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Ping checks the connection
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// EnsureSchema creates the tables this service writes to
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// LogChat stores one chat exchange
func (r *PostgresRepository) LogChat(ctx context.Context, entry *model.ChatLog) error {
	query := `
		INSERT INTO chat_logs (id, session_id, locale, message, filters, region_id, reply, listing_ids, response_time_ms, created_at)
		VALUES (:id, :session_id, :locale, :message, :filters, :region_id, :reply, :listing_ids, :response_time_ms, :created_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("failed to log chat: %w", err)
	}
	return nil
}

// LogFeedback stores a rating of a chat reply
func (r *PostgresRepository) LogFeedback(ctx context.Context, fb *model.Feedback) error {
	query := `
		INSERT INTO chat_feedback (id, chat_id, rating, comment, created_at)
		VALUES (:id, :chat_id, :rating, :comment, :created_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, fb); err != nil {
		return fmt.Errorf("failed to log feedback: %w", err)
	}
	return nil
}

// LogCorrection stores a corrected answer, with its question embedding when present
func (r *PostgresRepository) LogCorrection(ctx context.Context, c *model.Correction) error {
	query := `
		INSERT INTO answer_corrections (id, question, bad_answer, answer, link, locale, filters, embedding, created_at)
		VALUES (:id, :question, :bad_answer, :answer, :link, :locale, :filters, :embedding, :created_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("failed to log correction: %w", err)
	}
	return nil
}

// FindSimilarCorrection returns the stored correction whose question is
// nearest to embedding by cosine distance, or nil when none is within maxDistance
func (r *PostgresRepository) FindSimilarCorrection(ctx context.Context, embedding []float32, maxDistance float64) (*model.Correction, error) {
	query := `
		SELECT id, question, bad_answer, answer, link, locale, filters, created_at,
			embedding <=> $1 AS distance
		FROM answer_corrections
		WHERE embedding IS NOT NULL
			AND vector_dims(embedding) = $3
			AND embedding <=> $1 <= $2
		ORDER BY embedding <=> $1
		LIMIT 1
	`

	var c model.Correction
	err := r.db.GetContext(ctx, &c, query, pgvector.NewVector(embedding), maxDistance, len(embedding))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find similar correction: %w", err)
	}
	return &c, nil
}

// RecentCorrections lists the latest corrections, newest first
func (r *PostgresRepository) RecentCorrections(ctx context.Context, limit int) ([]model.Correction, error) {
	query := `
		SELECT id, question, bad_answer, answer, link, locale, filters, created_at
		FROM answer_corrections
		ORDER BY created_at DESC
		LIMIT $1
	`

	corrections := []model.Correction{}
	if err := r.db.SelectContext(ctx, &corrections, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list corrections: %w", err)
	}
	return corrections, nil
}
