// Package sink persists result bundles to a row-oriented store. The row
// model is shared between the CSV backend and the Postgres backend; a
// failover wrapper keeps offline runs working when the remote store is
// unreachable.
package sink

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/types"
)

// Sink is an append-only row store. Append returns a row reference usable
// with UpdateImageURL when illustration is deferred.
type Sink interface {
	Append(ctx context.Context, bundle types.ResultBundle) (rowRef int, err error)
	UpdateImageURL(ctx context.Context, rowRef int, url string) error
	Close() error
}

// header is the fixed column order of the row model.
var header = []string{
	"collected_at",
	"source_url",
	"category",
	"original_text",
	"likes",
	"reposts",
	"replies",
	"engagement_score",
	"dwell_factors",
	"reply_triggers",
	"rewritten_text",
	"thread",
	"call_to_action",
	"image_url",
	"image_generated",
}

// truncate shortens presentation columns. Cosmetic only.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func threadColumn(thread []string) string {
	return truncate(strings.Join(thread, " | "), 100)
}

// NewFromEnv picks the backend: a set and reachable DSN means Postgres with
// CSV failover behind it, otherwise plain CSV. Falling back is logged, never
// raised, so a demo run always completes.
func NewFromEnv(log *logrus.Entry, dsn, csvPath string) (Sink, error) {
	csvSink, err := NewCSVSink(csvPath)
	if err != nil {
		return nil, err
	}
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return csvSink, nil
	}
	pg, err := NewPostgresSink(dsn)
	if err != nil {
		if log != nil {
			log.WithError(err).Warn("result store unreachable, using local CSV")
		}
		return csvSink, nil
	}
	return &failoverSink{primary: pg, fallback: csvSink, log: log}, nil
}

// failoverSink switches to the fallback permanently after the first primary
// failure so row references stay consistent within one backend.
type failoverSink struct {
	primary  Sink
	fallback Sink
	log      *logrus.Entry
	degraded bool
}

func (f *failoverSink) Append(ctx context.Context, bundle types.ResultBundle) (int, error) {
	if !f.degraded {
		row, err := f.primary.Append(ctx, bundle)
		if err == nil {
			return row, nil
		}
		f.degraded = true
		if f.log != nil {
			f.log.WithError(err).Warn("result store append failed, falling back to local CSV")
		}
	}
	return f.fallback.Append(ctx, bundle)
}

func (f *failoverSink) UpdateImageURL(ctx context.Context, rowRef int, url string) error {
	if !f.degraded {
		return f.primary.UpdateImageURL(ctx, rowRef, url)
	}
	return f.fallback.UpdateImageURL(ctx, rowRef, url)
}

func (f *failoverSink) Close() error {
	err := f.primary.Close()
	if err2 := f.fallback.Close(); err == nil {
		err = err2
	}
	return err
}

// nowOr returns a stable timestamp source for row rendering.
func nowOr(fn func() time.Time) time.Time {
	if fn != nil {
		return fn()
	}
	return time.Now()
}
