package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/types"
)

const resultsSchema = `
CREATE TABLE IF NOT EXISTS results (
	id BIGSERIAL PRIMARY KEY,
	collected_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	source_url TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	original_text TEXT NOT NULL,
	likes INTEGER NOT NULL,
	reposts INTEGER NOT NULL,
	replies INTEGER NOT NULL,
	engagement_score DOUBLE PRECISION NOT NULL,
	dwell_factors TEXT NOT NULL DEFAULT '',
	reply_triggers TEXT NOT NULL DEFAULT '',
	rewritten_text TEXT NOT NULL,
	thread TEXT NOT NULL DEFAULT '',
	call_to_action TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	image_generated BOOLEAN NOT NULL DEFAULT false
)`

// PostgresSink stores result rows in a results table.
type PostgresSink struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresSink(dsn string) (*PostgresSink, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresSink{db: db}, nil
}

func (s *PostgresSink) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, resultsSchema)
	})
	return s.schemaErr
}

func (s *PostgresSink) Append(ctx context.Context, b types.ResultBundle) (int, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return 0, fmt.Errorf("ensure schema: %w", err)
	}
	var id int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO results (
			source_url, category, original_text, likes, reposts, replies,
			engagement_score, dwell_factors, reply_triggers, rewritten_text,
			thread, call_to_action, image_url, image_generated
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id`,
		b.Original.URL,
		b.Original.Category,
		b.Original.Text,
		b.Original.Likes,
		b.Original.Reposts,
		b.Original.Replies,
		b.Original.EngagementScore,
		b.Analysis.PositiveSignals.DwellFactors,
		b.Analysis.PositiveSignals.ReplyTriggers,
		b.Rewritten.MainText,
		strings.Join(b.Rewritten.Thread, " | "),
		b.Rewritten.CallToAction,
		b.ImageURL,
		b.ImageURL != "",
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *PostgresSink) UpdateImageURL(ctx context.Context, rowRef int, url string) error {
	if err := s.ensureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE results SET image_url = $1, image_generated = $2 WHERE id = $3`,
		url, url != "", rowRef)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("row %d not found", rowRef)
	}
	return nil
}

func (s *PostgresSink) Close() error { return s.db.Close() }
