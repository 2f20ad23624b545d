package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/config"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/rewrite"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/source"
)

func TestBuildMockMode(t *testing.T) {
	cfg := &config.Config{
		Mode:     "mock",
		CSVPath:  filepath.Join(t.TempDir(), "results.csv"),
		ImageDir: t.TempDir(),
	}
	c, err := Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &source.MockSource{}, c.Source)
	assert.Equal(t, rewrite.ModeBestEffort, c.Rewriter.Mode)
	assert.Equal(t, time.Second, c.Rewriter.RetryDelay, "retries pause between attempts")
	assert.NotNil(t, c.Analyzer)
	assert.NotNil(t, c.Sink)
	assert.NotNil(t, c.Researcher)
}
