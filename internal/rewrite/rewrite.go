// Package rewrite generates the replacement post from an original and its
// analysis. The service is retried a bounded number of times; what happens
// after exhaustion depends on the configured mode.
package rewrite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/llmclient"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/types"
)

// ErrRewriteUnavailable is returned in strict mode when every attempt
// failed; callers can distinguish it from transport errors they caused.
var ErrRewriteUnavailable = errors.New("rewrite service unavailable after retries")

// maxAttempts bounds service calls per rewrite. Two attempts total: the
// second exists for transient transport errors and one-off malformed output.
const maxAttempts = 2

// Mode selects the failure policy once retries are exhausted.
type Mode int

const (
	// ModeStrict surfaces ErrRewriteUnavailable; use where a model rewrite
	// is mandatory (production API).
	ModeStrict Mode = iota
	// ModeBestEffort substitutes a deterministic template rewrite; use for
	// offline and demo runs that must always complete.
	ModeBestEffort
)

// Rewriter runs the rewrite stage.
type Rewriter struct {
	LLM  llmclient.Client
	Mode Mode
	Log  *logrus.Entry

	// RetryDelay separates attempts. Tests set it to zero.
	RetryDelay time.Duration
}

// Rewrite produces the replacement post. Each attempt covers both the
// service call and parsing; a transport error and a sentinel parse result
// count the same. Exhaustion either raises (strict) or falls back to the
// template rewrite (best effort).
func (r *Rewriter) Rewrite(ctx context.Context, post types.Post, analysis types.Analysis) (types.RewrittenPost, error) {
	if r.LLM == nil {
		if r.Mode == ModeBestEffort {
			return templateRewrite(post), nil
		}
		return types.RewrittenPost{}, fmt.Errorf("%w: no client configured", ErrRewriteUnavailable)
	}

	prompt := buildPrompt(post, analysis)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := r.LLM.GenerateJSON(ctx, prompt, llmclient.GenerateOptions{
			Temperature:     0.3,
			MaxOutputTokens: 8192,
		})
		if err == nil {
			if out, ok := parseRewrite(raw); ok {
				return out, nil
			}
			err = llmclient.ErrInvalidJSON
		}
		if r.Log != nil {
			r.Log.WithError(err).WithField("attempt", attempt).Warn("rewrite attempt failed")
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return types.RewrittenPost{}, err
		}
		if attempt < maxAttempts && r.RetryDelay > 0 {
			select {
			case <-ctx.Done():
				return types.RewrittenPost{}, ctx.Err()
			case <-time.After(r.RetryDelay):
			}
		}
	}

	if r.Mode == ModeBestEffort {
		if r.Log != nil {
			r.Log.Info("rewrite retries exhausted, using template fallback")
		}
		return templateRewrite(post), nil
	}
	return types.RewrittenPost{}, ErrRewriteUnavailable
}

// templateRewrite builds a deterministic rewrite straight from the original:
// strengthened hook, preserved body, reply-seeking call to action.
func templateRewrite(post types.Post) types.RewrittenPost {
	lines := nonEmptyLines(post.Text)
	first := post.Text
	if len(lines) > 0 {
		first = lines[0]
	}
	hook := "This is wild. " + first

	var body string
	if len(lines) > 1 {
		body = strings.Join(lines[1:], "\n")
	}
	cta := "What do you think?"

	main := hook + "\n\n" + cta
	if body != "" {
		main = hook + "\n\n" + body + "\n\n" + cta
	}

	return types.RewrittenPost{
		MainText:     main,
		Thread:       []string{},
		CallToAction: cta,
		OptimizationReport: types.OptimizationReport{
			DwellOptimization:     "original structure kept",
			ReplyOptimization:     "question CTA added",
			NegativeSignalRemoval: "original content respected",
		},
	}
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			out = append(out, t)
		}
	}
	return out
}
