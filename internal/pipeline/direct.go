package pipeline

import (
	"context"
	"fmt"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/source"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/types"
)

// RunURLs processes explicit status URLs, skipping the account collection
// and threshold stages. A malformed URL or a failed lookup is recorded
// per-item; the remaining URLs still run.
func (o *Orchestrator) RunURLs(ctx context.Context, urls []string, opts Options) (*Summary, error) {
	opts.applyDefaults()
	sum := &Summary{}

	var posts []types.Post
	for i, url := range urls {
		o.emit(Event{Stage: StageCollecting, Message: "fetching " + url, Index: i + 1, Total: len(urls)})
		if _, _, err := source.ParseStatusURL(url); err != nil {
			sum.record(fmt.Errorf("skip %q: %w", url, err))
			continue
		}
		post, err := o.Source.ByURL(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			sum.record(fmt.Errorf("fetch %s: %w", url, err))
			continue
		}
		posts = append(posts, post)
	}
	sum.Collected = len(posts)
	if len(posts) == 0 {
		if len(sum.Errors) > 0 {
			return sum, fmt.Errorf("no usable URLs: %s", sum.Errors[0])
		}
		return sum, ErrNoPosts
	}
	sum.Filtered = len(posts) // direct mode bypasses the threshold filter

	for i, post := range posts {
		o.emit(Event{Stage: StageAnalyzing, Message: "analyzing " + post.URL, Index: i + 1, Total: len(posts)})
		if err := o.wait(ctx); err != nil {
			return sum, err
		}
		analysis := o.analyzeOne(ctx, post)
		sum.Analyzed++
		sum.EstimatedCost += analysisCallCost

		if err := o.processItem(ctx, sum, post, analysis, opts, i+1, len(posts)); err != nil {
			return sum, err
		}
		if err := o.pause(ctx, opts.ItemDelay); err != nil {
			return sum, err
		}
	}

	o.emit(Event{Stage: StageDone, Message: fmt.Sprintf("direct run complete: %d results", len(sum.Results))})
	return sum, nil
}
