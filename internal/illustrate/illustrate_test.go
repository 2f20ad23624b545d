package illustrate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/types"
)

type fakeModel struct {
	data []byte
	mime string
	err  error
}

func (f *fakeModel) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	return f.data, f.mime, f.err
}

type fakeStore struct {
	name string
	err  error
}

func (f *fakeStore) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	f.name = name
	if f.err != nil {
		return "", f.err
	}
	return "https://img.example/" + name, nil
}

func rewritten() types.RewrittenPost {
	return types.RewrittenPost{MainText: "Top 7 AI skills", Thread: []string{"extra context"}}
}

func TestIllustrateSuccess(t *testing.T) {
	store := &fakeStore{}
	g := &Generator{
		Model: &fakeModel{data: []byte{1, 2, 3}, mime: "image/jpeg"},
		Store: store,
		Now:   func() time.Time { return time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC) },
	}
	url := g.Illustrate(context.Background(), rewritten())
	require.NotEmpty(t, url)
	assert.True(t, strings.HasPrefix(store.name, "20260201_093000_"))
	assert.True(t, strings.HasSuffix(store.name, ".jpg"))
}

func TestIllustrateBestEffort(t *testing.T) {
	// Model failure, store failure, and missing wiring all yield "".
	g := &Generator{Model: &fakeModel{err: errors.New("no image")}, Store: &fakeStore{}}
	assert.Empty(t, g.Illustrate(context.Background(), rewritten()))

	g = &Generator{Model: &fakeModel{data: []byte{1}}, Store: &fakeStore{err: errors.New("disk full")}}
	assert.Empty(t, g.Illustrate(context.Background(), rewritten()))

	assert.Empty(t, (&Generator{}).Illustrate(context.Background(), rewritten()))
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	s := &LocalStore{Dir: filepath.Join(dir, "images")}
	url, err := s.Put(context.Background(), "a.png", []byte("data"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/api/images/a.png", url)

	b, err := os.ReadFile(filepath.Join(dir, "images", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(b))
}

func TestBuildImagePromptValidUTF8(t *testing.T) {
	rewritten := types.RewrittenPost{
		MainText: strings.Repeat("毎朝のルーティン・", 40),
		Thread:   []string{strings.Repeat("✓ 完了したタスク", 30)},
	}
	prompt := buildImagePrompt(rewritten)
	assert.True(t, utf8.ValidString(prompt))
}
