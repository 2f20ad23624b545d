// Package pipeline drives one batch run end to end: collect posts from
// benchmark accounts, keep the high-engagement ones, analyze why they
// worked, rewrite them, optionally illustrate, and persist each result.
// Control flow is strictly sequential; external calls are paced by fixed
// delays and an optional rate limiter so third-party quotas hold.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/analyze"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/filter"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/illustrate"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/rewrite"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/sink"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/source"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/types"
)

// ErrNoPosts means collection finished without a single post and without a
// fetch error to blame. Usually bad account names or an empty mock set.
var ErrNoPosts = errors.New("no posts collected")

// ThresholdError is returned when the engagement filter leaves nothing.
// It carries the observed maxima so the caller can suggest workable
// thresholds instead of a bare failure.
type ThresholdError struct {
	MinLikes   int
	MinReposts int
	MaxLikes   int
	MaxReposts int
}

func (e *ThresholdError) Error() string {
	return fmt.Sprintf(
		"no posts meet the engagement threshold (likes>=%d, reposts>=%d); observed maxima: likes=%d, reposts=%d. Lower the thresholds",
		e.MinLikes, e.MinReposts, e.MaxLikes, e.MaxReposts)
}

// Options bound one run. Zero values fall back to the defaults the config
// package ships.
type Options struct {
	MinLikes        int
	MinReposts      int
	PostsToAnalyze  int
	PostsToRewrite  int
	PostsPerAccount int
	GenerateImages  bool

	// Categories tags collected posts by account, from the accounts file.
	Categories map[string]string

	// Pacing between external calls.
	AccountDelay time.Duration
	ItemDelay    time.Duration
}

func (o *Options) applyDefaults() {
	if o.MinLikes <= 0 {
		o.MinLikes = 500
	}
	if o.MinReposts <= 0 {
		o.MinReposts = 50
	}
	if o.PostsToAnalyze <= 0 {
		o.PostsToAnalyze = 10
	}
	if o.PostsToRewrite <= 0 {
		o.PostsToRewrite = 5
	}
	if o.PostsPerAccount <= 0 {
		o.PostsPerAccount = 100
	}
}

// Stage names reported in progress events.
const (
	StageCollecting   = "collecting"
	StageFiltering    = "filtering"
	StageAnalyzing    = "analyzing"
	StageRewriting    = "rewriting"
	StageIllustrating = "illustrating"
	StagePersisting   = "persisting"
	StageDone         = "done"
)

// Event is one progress tick, forwarded to the optional callback.
type Event struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Index   int    `json:"index,omitempty"`
	Total   int    `json:"total,omitempty"`
}

// Summary accounts for a whole run, including the failures that did not
// abort it.
type Summary struct {
	Collected int      `json:"total_collected"`
	Filtered  int      `json:"total_filtered"`
	Analyzed  int      `json:"total_analyzed"`
	Rewritten int      `json:"total_rewritten"`
	Persisted int      `json:"total_persisted"`
	Accounts  int      `json:"accounts_processed"`
	Errors    []string `json:"errors,omitempty"`

	// EstimatedCost is a rough USD figure from per-call price constants,
	// shown to the operator, never billed from.
	EstimatedCost float64 `json:"estimated_cost"`

	// Results ride along for callers; the JSON summary carries counts only.
	Results []types.ResultBundle `json:"-"`
}

// Rough per-call prices used for the run estimate.
const (
	analysisCallCost = 0.002
	rewriteCallCost  = 0.004
	imageCallCost    = 0.04
)

// Orchestrator wires the stages together. Every field except Source and
// Sink may be nil; nil stages degrade (heuristic analysis, template
// rewrite, no images).
type Orchestrator struct {
	Source      source.Source
	Analyzer    *analyze.Analyzer
	Rewriter    *rewrite.Rewriter
	Illustrator *illustrate.Generator
	Sink        sink.Sink
	Log         *logrus.Entry

	// Limiter paces the LLM-bound stages on top of the fixed delays.
	Limiter *rate.Limiter

	// OnProgress, when set, receives every stage event. Must be fast; the
	// orchestrator calls it inline.
	OnProgress func(Event)

	// sleep is injectable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func (o *Orchestrator) emit(ev Event) {
	if o.OnProgress != nil {
		o.OnProgress(ev)
	}
	if o.Log != nil {
		o.Log.WithFields(logrus.Fields{"stage": ev.Stage, "index": ev.Index, "total": ev.Total}).Info(ev.Message)
	}
}

func (o *Orchestrator) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	if o.sleep != nil {
		return o.sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (o *Orchestrator) wait(ctx context.Context) error {
	if o.Limiter == nil {
		return ctx.Err()
	}
	return o.Limiter.Wait(ctx)
}

// Run executes the batch flow over the given accounts. Per-account fetch
// failures and per-item stage failures are recorded in the summary and the
// run continues; only an empty collection or an empty filtered set is
// fatal.
func (o *Orchestrator) Run(ctx context.Context, accounts []string, opts Options) (*Summary, error) {
	opts.applyDefaults()
	sum := &Summary{Accounts: len(accounts)}

	// Collect.
	var all []types.Post
	fetchFailed := false
	for i, account := range accounts {
		o.emit(Event{Stage: StageCollecting, Message: "collecting @" + account, Index: i + 1, Total: len(accounts)})
		posts, err := o.Source.Timeline(ctx, account, opts.PostsPerAccount)
		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			fetchFailed = true
			sum.record(fmt.Errorf("collect @%s: %w", account, err))
			continue
		}
		if category := opts.Categories[account]; category != "" {
			for i := range posts {
				posts[i].Category = category
			}
		}
		all = append(all, posts...)
		if i < len(accounts)-1 {
			if err := o.pause(ctx, opts.AccountDelay); err != nil {
				return sum, err
			}
		}
	}
	sum.Collected = len(all)
	if len(all) == 0 {
		if fetchFailed {
			return sum, fmt.Errorf("collection produced nothing: %s", sum.Errors[0])
		}
		return sum, ErrNoPosts
	}

	// Filter.
	o.emit(Event{Stage: StageFiltering, Message: fmt.Sprintf("filtering %d posts", len(all))})
	viral := filter.FilterAndRank(all, opts.MinLikes, opts.MinReposts)
	sum.Filtered = len(viral)
	if len(viral) == 0 {
		maxLikes, maxReposts := filter.Maxima(all)
		return sum, &ThresholdError{
			MinLikes: opts.MinLikes, MinReposts: opts.MinReposts,
			MaxLikes: maxLikes, MaxReposts: maxReposts,
		}
	}

	// Analyze the top slice.
	n := min(len(viral), opts.PostsToAnalyze)
	analyzed := make([]types.Analysis, 0, n)
	for i, post := range viral[:n] {
		o.emit(Event{Stage: StageAnalyzing, Message: "analyzing " + post.URL, Index: i + 1, Total: n})
		if err := o.wait(ctx); err != nil {
			return sum, err
		}
		analyzed = append(analyzed, o.analyzeOne(ctx, post))
		sum.EstimatedCost += analysisCallCost
		if err := o.pause(ctx, opts.ItemDelay); err != nil {
			return sum, err
		}
	}
	sum.Analyzed = len(analyzed)

	// Rewrite, illustrate, persist.
	m := min(len(analyzed), opts.PostsToRewrite)
	for i := 0; i < m; i++ {
		if err := o.processItem(ctx, sum, viral[i], analyzed[i], opts, i+1, m); err != nil {
			return sum, err
		}
		if err := o.pause(ctx, opts.ItemDelay); err != nil {
			return sum, err
		}
	}

	o.emit(Event{Stage: StageDone, Message: fmt.Sprintf("run complete: %d results", len(sum.Results))})
	return sum, nil
}

// processItem runs one post through rewrite, illustration and the sink.
// Stage failures are recorded, not returned; only cancellation propagates.
func (o *Orchestrator) processItem(ctx context.Context, sum *Summary, post types.Post, analysis types.Analysis, opts Options, index, total int) error {
	o.emit(Event{Stage: StageRewriting, Message: "rewriting " + post.URL, Index: index, Total: total})
	if err := o.wait(ctx); err != nil {
		return err
	}
	rewritten, err := o.rewriteOne(ctx, post, analysis)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sum.record(fmt.Errorf("rewrite %s: %w", post.URL, err))
		return nil
	}
	sum.Rewritten++
	sum.EstimatedCost += rewriteCallCost

	bundle := types.ResultBundle{Original: post, Analysis: analysis, Rewritten: rewritten}

	if opts.GenerateImages && o.Illustrator != nil {
		o.emit(Event{Stage: StageIllustrating, Message: "illustrating " + post.URL, Index: index, Total: total})
		if err := o.wait(ctx); err != nil {
			return err
		}
		bundle.ImageURL = o.Illustrator.Illustrate(ctx, rewritten)
		if bundle.ImageURL != "" {
			sum.EstimatedCost += imageCallCost
		}
	}

	o.emit(Event{Stage: StagePersisting, Message: "saving " + post.URL, Index: index, Total: total})
	if o.Sink != nil {
		if _, err := o.Sink.Append(ctx, bundle); err != nil {
			sum.record(fmt.Errorf("persist %s: %w", post.URL, err))
		} else {
			sum.Persisted++
		}
	}
	sum.Results = append(sum.Results, bundle)
	return nil
}

func (o *Orchestrator) analyzeOne(ctx context.Context, post types.Post) types.Analysis {
	if o.Analyzer == nil {
		a := &analyze.Analyzer{}
		return a.Analyze(ctx, post)
	}
	return o.Analyzer.Analyze(ctx, post)
}

func (o *Orchestrator) rewriteOne(ctx context.Context, post types.Post, analysis types.Analysis) (types.RewrittenPost, error) {
	if o.Rewriter == nil {
		r := &rewrite.Rewriter{Mode: rewrite.ModeBestEffort}
		return r.Rewrite(ctx, post, analysis)
	}
	return o.Rewriter.Rewrite(ctx, post, analysis)
}

func (s *Summary) record(err error) {
	s.Errors = append(s.Errors, err.Error())
}
