package llmclient

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Middleware wraps a Client with a cross-cutting concern.
type Middleware func(Client) Client

// Chain applies middlewares left to right: the first listed is outermost.
func Chain(c Client, mws ...Middleware) Client {
	for i := len(mws) - 1; i >= 0; i-- {
		c = mws[i](c)
	}
	return c
}

// WithRateLimit blocks each request on the shared limiter. External quotas
// are per-key, so one limiter is shared among every stage using the client.
func WithRateLimit(l *rate.Limiter) Middleware {
	return func(next Client) Client {
		return &rateLimited{next: next, limiter: l}
	}
}

type rateLimited struct {
	next    Client
	limiter *rate.Limiter
}

func (r *rateLimited) Name() string { return r.next.Name() }
func (r *rateLimited) Close() error { return r.next.Close() }

func (r *rateLimited) GenerateJSON(ctx context.Context, prompt string, opts GenerateOptions) (json.RawMessage, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return r.next.GenerateJSON(ctx, prompt, opts)
}

// WithLogging logs request timing and outcome around each call.
func WithLogging(log *logrus.Entry) Middleware {
	return func(next Client) Client {
		return &logged{next: next, log: log}
	}
}

type logged struct {
	next Client
	log  *logrus.Entry
}

func (l *logged) Name() string { return l.next.Name() }
func (l *logged) Close() error { return l.next.Close() }

func (l *logged) GenerateJSON(ctx context.Context, prompt string, opts GenerateOptions) (json.RawMessage, error) {
	start := time.Now()
	raw, err := l.next.GenerateJSON(ctx, prompt, opts)
	entry := l.log.WithFields(logrus.Fields{
		"client":     l.next.Name(),
		"elapsed_ms": time.Since(start).Milliseconds(),
		"prompt_len": len(prompt),
	})
	if err != nil {
		entry.WithError(err).Warn("llm request failed")
		return nil, err
	}
	entry.WithField("response_len", len(raw)).Debug("llm request done")
	return raw, nil
}
