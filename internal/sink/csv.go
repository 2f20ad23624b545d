package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/types"
)

// CSVSink appends result rows to a local CSV file. The header is written
// once when the file is new or empty.
type CSVSink struct {
	path string
	rows int

	// Now is injectable for tests.
	Now func() time.Time
}

func NewCSVSink(path string) (*CSVSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	s := &CSVSink{path: path}

	records, err := s.readAll()
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if len(records) == 0 {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		w := csv.NewWriter(f)
		if err := w.Write(header); err != nil {
			f.Close()
			return nil, err
		}
		w.Flush()
		if err := f.Close(); err != nil {
			return nil, err
		}
	} else {
		s.rows = len(records) - 1
	}
	return s, nil
}

func (s *CSVSink) Append(ctx context.Context, b types.ResultBundle) (int, error) {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(s.row(b)); err != nil {
		return 0, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, err
	}
	s.rows++
	return s.rows, nil
}

// UpdateImageURL rewrites the data row in place. rowRef is the 1-based data
// row number, header excluded.
func (s *CSVSink) UpdateImageURL(ctx context.Context, rowRef int, url string) error {
	records, err := s.readAll()
	if err != nil {
		return err
	}
	idx := rowRef // header occupies records[0]
	if rowRef < 1 || idx >= len(records) {
		return fmt.Errorf("row %d out of range", rowRef)
	}
	if len(records[idx]) != len(header) {
		return fmt.Errorf("row %d has %d columns, want %d", rowRef, len(records[idx]), len(header))
	}
	records[idx][13] = url
	records[idx][14] = strconv.FormatBool(url != "")

	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return w.Error()
}

func (s *CSVSink) Close() error { return nil }

func (s *CSVSink) readAll() ([][]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func (s *CSVSink) row(b types.ResultBundle) []string {
	return []string{
		nowOr(s.Now).Format("2006-01-02 15:04:05"),
		b.Original.URL,
		b.Original.Category,
		truncate(b.Original.Text, 100),
		strconv.Itoa(b.Original.Likes),
		strconv.Itoa(b.Original.Reposts),
		strconv.Itoa(b.Original.Replies),
		strconv.FormatFloat(b.Original.EngagementScore, 'f', 1, 64),
		truncate(b.Analysis.PositiveSignals.DwellFactors, 100),
		truncate(b.Analysis.PositiveSignals.ReplyTriggers, 100),
		truncate(b.Rewritten.MainText, 100),
		threadColumn(b.Rewritten.Thread),
		b.Rewritten.CallToAction,
		b.ImageURL,
		strconv.FormatBool(b.ImageURL != ""),
	}
}
