package sink

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/types"
)

func bundle(url string) types.ResultBundle {
	return types.ResultBundle{
		Original: types.Post{
			URL:             url,
			Category:        "ai-side-hustle",
			Text:            "original text",
			Likes:           1250,
			Reposts:         340,
			Replies:         89,
			EngagementScore: types.EngagementScore(1250, 340, 89),
		},
		Analysis: types.Analysis{
			PositiveSignals: types.PositiveSignals{DwellFactors: "lists", ReplyTriggers: "question"},
		},
		Rewritten: types.RewrittenPost{
			MainText:     "rewritten",
			Thread:       []string{"t1", "t2"},
			CallToAction: "thoughts?",
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVSinkHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.csv")
	s, err := NewCSVSink(path)
	require.NoError(t, err)

	row, err := s.Append(context.Background(), bundle("https://x.com/a/status/1"))
	require.NoError(t, err)
	assert.Equal(t, 1, row)

	// Reopening an existing file must not write a second header.
	s2, err := NewCSVSink(path)
	require.NoError(t, err)
	row, err = s2.Append(context.Background(), bundle("https://x.com/a/status/2"))
	require.NoError(t, err)
	assert.Equal(t, 2, row)

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, header, records[0])
	assert.Equal(t, "https://x.com/a/status/1", records[1][1])
	assert.Equal(t, "https://x.com/a/status/2", records[2][1])
	assert.Equal(t, "2063.5", records[1][7])
	assert.Equal(t, "t1 | t2", records[1][11])
	assert.Equal(t, "false", records[1][14])
}

func TestCSVSinkUpdateImageURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	s, err := NewCSVSink(path)
	require.NoError(t, err)

	row1, err := s.Append(context.Background(), bundle("https://x.com/a/status/1"))
	require.NoError(t, err)
	_, err = s.Append(context.Background(), bundle("https://x.com/a/status/2"))
	require.NoError(t, err)

	require.NoError(t, s.UpdateImageURL(context.Background(), row1, "/api/images/x.png"))

	records := readCSV(t, path)
	assert.Equal(t, "/api/images/x.png", records[1][13])
	assert.Equal(t, "true", records[1][14])
	assert.Equal(t, "", records[2][13])

	assert.Error(t, s.UpdateImageURL(context.Background(), 99, "u"))
	assert.Error(t, s.UpdateImageURL(context.Background(), 0, "u"))
}

func TestCSVSinkTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	s, err := NewCSVSink(path)
	require.NoError(t, err)
	s.Now = func() time.Time { return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) }

	b := bundle("https://x.com/a/status/1")
	long := make([]rune, 150)
	for i := range long {
		long[i] = 'x'
	}
	b.Original.Text = string(long)
	_, err = s.Append(context.Background(), b)
	require.NoError(t, err)

	records := readCSV(t, path)
	assert.Len(t, []rune(records[1][3]), 103) // 100 + "..."
	assert.Equal(t, "2026-02-01 00:00:00", records[1][0])
}

type stubSink struct {
	rows    int
	fail    bool
	updated map[int]string
}

func (s *stubSink) Append(ctx context.Context, b types.ResultBundle) (int, error) {
	if s.fail {
		return 0, errors.New("unreachable")
	}
	s.rows++
	return s.rows, nil
}
func (s *stubSink) UpdateImageURL(ctx context.Context, row int, url string) error {
	if s.updated == nil {
		s.updated = map[int]string{}
	}
	s.updated[row] = url
	return nil
}
func (s *stubSink) Close() error { return nil }

func TestFailoverSinkSticky(t *testing.T) {
	primary := &stubSink{fail: true}
	fallback := &stubSink{}
	f := &failoverSink{primary: primary, fallback: fallback}

	row, err := f.Append(context.Background(), bundle("u"))
	require.NoError(t, err)
	assert.Equal(t, 1, row)
	assert.True(t, f.degraded)

	// Once degraded, updates go to the fallback too.
	require.NoError(t, f.UpdateImageURL(context.Background(), row, "img"))
	assert.Equal(t, "img", fallback.updated[row])
	assert.Empty(t, primary.updated)
}
