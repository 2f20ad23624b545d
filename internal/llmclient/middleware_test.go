package llmclient

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type recordingClient struct {
	calls int
}

func (c *recordingClient) Name() string { return "recording" }
func (c *recordingClient) GenerateJSON(ctx context.Context, prompt string, opts GenerateOptions) (json.RawMessage, error) {
	c.calls++
	return json.RawMessage(`{}`), nil
}
func (c *recordingClient) Close() error { return nil }

func TestChainOrderAndPassthrough(t *testing.T) {
	inner := &recordingClient{}
	c := Chain(inner, WithRateLimit(rate.NewLimiter(rate.Inf, 1)))

	raw, err := c.GenerateJSON(context.Background(), "p", GenerateOptions{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "recording", c.Name())
	assert.NoError(t, c.Close())
}

func TestRateLimitHonorsCancellation(t *testing.T) {
	inner := &recordingClient{}
	// A zero-rate limiter never admits a request.
	c := Chain(inner, WithRateLimit(rate.NewLimiter(0, 0)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GenerateJSON(ctx, "p", GenerateOptions{})
	require.Error(t, err)
	assert.Equal(t, 0, inner.calls)
}
