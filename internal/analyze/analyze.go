// Package analyze judges why a post performed well, through the
// text-generation service when available and a deterministic textual
// heuristic otherwise.
package analyze

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/llmclient"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/types"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/util/jsonutil"
)

const analysisPrompt = `You are an expert at analyzing why posts go viral on X.
Analyze the post below and explain why it performed, in terms of structure, essence, and psychology.

[POST]
%s

[OBSERVED ENGAGEMENT]
likes: %d / reposts: %d / replies: %d

Ranking weights to keep in mind: reply+author-reply is worth far more than a
like, bookmarks and long dwell time rank next, reposts and likes last. Weigh
reply triggers and dwell factors highest.

Return STRICT JSON ONLY:
{
  "positive_signals": {
    "dwell_factors": "what keeps readers to the end (max 25 words)",
    "reply_triggers": "what invites replies",
    "engagement_hooks": "what invites saves and reposts"
  },
  "negative_signals": {
    "not_interested_risks": "what could lose interest",
    "block_mute_risks": "what could feel pushy"
  },
  "scores": {
    "dwell_potential": 8,
    "reply_potential": 7,
    "favorite_potential": 7,
    "repost_potential": 7
  },
  "essence": "the theme that must survive a rewrite, one sentence",
  "structure_type": "list/before-after/assertion+reasons/calculation/emotional/other",
  "hook_type": "emotional/number/assertion/story/fragment/other",
  "why_viral": ["hypothesis 1", "hypothesis 2", "hypothesis 3"]
}

Scores are integers 1-10. Keep every explanation short.`

// Analyzer runs the analysis stage. A nil LLM routes every call to the
// heuristic, which keeps offline runs and tests deterministic.
type Analyzer struct {
	LLM llmclient.Client
	Log *logrus.Entry
}

// Analyze never returns an error: a transport failure or an unusable
// response degrades to the heuristic. Heuristic analyses substituted after
// a live response failed to parse carry ParseFailed=true so callers can
// tell them apart from genuine model output.
func (a *Analyzer) Analyze(ctx context.Context, post types.Post) types.Analysis {
	if a.LLM == nil {
		return a.heuristic(post, false)
	}

	prompt := fmt.Sprintf(analysisPrompt, post.Text, post.Likes, post.Reposts, post.Replies)
	raw, err := a.LLM.GenerateJSON(ctx, prompt, llmclient.GenerateOptions{
		Temperature:     0.2,
		MaxOutputTokens: 4096,
	})
	if err != nil {
		if a.Log != nil {
			a.Log.WithError(err).Warn("analysis request failed, using heuristic")
		}
		return a.heuristic(post, false)
	}

	var out types.Analysis
	if err := jsonutil.UnmarshalLenient(raw, &out); err != nil || out.Scores.DwellPotential == 0 {
		if a.Log != nil {
			a.Log.WithError(err).Warn("analysis response unparseable, using heuristic")
		}
		return a.heuristic(post, true)
	}
	clampScores(&out.Scores)
	if out.Scores.Virality == 0 {
		out.Scores.Virality = viralityScore(post.EngagementScore)
	}
	return out
}

func clampScores(s *types.Scores) {
	for _, p := range []*int{&s.DwellPotential, &s.ReplyPotential, &s.FavoritePotential, &s.RepostPotential} {
		if *p < 1 {
			*p = 1
		}
		if *p > 10 {
			*p = 10
		}
	}
	if s.Virality < 0 {
		s.Virality = 0
	}
	if s.Virality > 10 {
		s.Virality = 10
	}
}

func viralityScore(engagement float64) int {
	v := int(engagement / 300)
	if v > 10 {
		v = 10
	}
	return v
}
