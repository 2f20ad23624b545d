// Package research surveys what is currently working on the timeline for a
// topic. A Grok x_search call is the primary path because it can read live
// posts; without an xAI key the shared Gemini client answers from its own
// knowledge, and without either a deterministic mock keeps offline runs
// going. Results are cached per topic.
package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/llmclient"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/util/jsonutil"
)

// Options tune a topic research run.
type Options struct {
	// Locale selects the search emphasis, "ja" or "global".
	Locale string
	// Audience is "engineer", "investor" or "both".
	Audience string
	// Days is the lookback window.
	Days int
}

func (o *Options) applyDefaults() {
	if o.Locale == "" {
		o.Locale = "global"
	}
	if o.Audience == "" {
		o.Audience = "both"
	}
	if o.Days <= 0 {
		o.Days = 7
	}
}

const cacheSize = 64

// Researcher answers topic questions, preferring live search over model
// knowledge over canned output.
type Researcher struct {
	grok *grokClient
	llm  llmclient.Client
	log  *logrus.Entry
	now  func() time.Time

	packs    *lru.Cache[string, *ContextPack]
	patterns *lru.Cache[string, *PatternReport]
}

// Config wires a Researcher. Every field is optional; with nothing set the
// mock path serves all requests.
type Config struct {
	XAIKey     string
	XAIBaseURL string
	LLM        llmclient.Client
	Log        *logrus.Entry
	Now        func() time.Time
}

func New(cfg Config) (*Researcher, error) {
	packs, err := lru.New[string, *ContextPack](cacheSize)
	if err != nil {
		return nil, err
	}
	patterns, err := lru.New[string, *PatternReport](cacheSize)
	if err != nil {
		return nil, err
	}
	r := &Researcher{llm: cfg.LLM, log: cfg.Log, now: cfg.Now, packs: packs, patterns: patterns}
	if cfg.XAIKey != "" {
		r.grok = newGrokClient(cfg.XAIKey, cfg.XAIBaseURL, nil)
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r, nil
}

// ResearchTopic builds a context pack for the topic. Grok failures fall
// through to Gemini, then to the mock; the error return covers only
// cancellation.
func (r *Researcher) ResearchTopic(ctx context.Context, topic string, opts Options) (*ContextPack, error) {
	opts.applyDefaults()
	key := fmt.Sprintf("%s|%s|%d", topic, opts.Locale, opts.Days)
	if pack, ok := r.packs.Get(key); ok {
		return pack, nil
	}

	pack := r.researchTopic(ctx, topic, opts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.packs.Add(key, pack)
	return pack, nil
}

func (r *Researcher) researchTopic(ctx context.Context, topic string, opts Options) *ContextPack {
	prompt := buildResearchPrompt(topic, opts, r.now())
	if r.grok != nil {
		text, err := r.grok.Search(ctx, prompt)
		if err == nil {
			var pack ContextPack
			if jsonutil.UnmarshalLenient([]byte(text), &pack) == nil && len(pack.Clusters) > 0 {
				return &pack
			}
		} else if r.log != nil {
			r.log.WithError(err).Warn("grok research failed, trying fallback")
		}
	}
	if r.llm != nil {
		raw, err := r.llm.GenerateJSON(ctx, prompt, llmclient.GenerateOptions{Temperature: 0.3, MaxOutputTokens: 4096})
		if err == nil {
			var pack ContextPack
			if jsonutil.UnmarshalLenient(raw, &pack) == nil && len(pack.Clusters) > 0 {
				return &pack
			}
		} else if r.log != nil {
			r.log.WithError(err).Warn("llm research fallback failed, using mock")
		}
	}
	return mockContextPack(topic)
}

// ViralPatterns extracts reusable posting patterns for the topic.
func (r *Researcher) ViralPatterns(ctx context.Context, topic string, count int) (*PatternReport, error) {
	if count <= 0 {
		count = 10
	}
	key := fmt.Sprintf("%s|%d", topic, count)
	if report, ok := r.patterns.Get(key); ok {
		return report, nil
	}

	report := r.viralPatterns(ctx, topic, count)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.patterns.Add(key, report)
	return report, nil
}

func (r *Researcher) viralPatterns(ctx context.Context, topic string, count int) *PatternReport {
	prompt := buildPatternPrompt(topic, count)
	if r.grok != nil {
		text, err := r.grok.Search(ctx, prompt)
		if err == nil {
			var report PatternReport
			if jsonutil.UnmarshalLenient([]byte(text), &report) == nil && len(report.TopHooks) > 0 {
				return &report
			}
		} else if r.log != nil {
			r.log.WithError(err).Warn("grok pattern analysis failed, trying fallback")
		}
	}
	if r.llm != nil {
		raw, err := r.llm.GenerateJSON(ctx, prompt, llmclient.GenerateOptions{Temperature: 0.3, MaxOutputTokens: 4096})
		if err == nil {
			var report PatternReport
			if jsonutil.UnmarshalLenient(raw, &report) == nil && len(report.TopHooks) > 0 {
				return &report
			}
		} else if r.log != nil {
			r.log.WithError(err).Warn("llm pattern fallback failed, using mock")
		}
	}
	return mockPatternReport(topic)
}

func buildResearchPrompt(topic string, opts Options, now time.Time) string {
	localeLine := "Prefer global primary sources, English first."
	if opts.Locale == "ja" {
		localeLine = "Prefer Japanese-language posts; use English primary sources when needed."
	}
	var b strings.Builder
	fmt.Fprintf(&b, `Goal: background research for writing posts that spread on X.
Topic: %s
As of: %s
Search window: roughly the last %d days
Audience: %s

Ground rules:
- %s
- Never invent numbers, specs or limits; write "unknown" when unsure.
- Summarize, do not quote long passages.
- Post search is the main tool; prioritize posts that are already spreading
  (operators like min_faves:500 help).

Steps:
1) Survey wide and shallow first: run 8+ broad queries around the topic,
   pull recurring keywords and phrasings, and group them into 3-5 clusters.
   Pick 2 representative posts per cluster.
2) Go deep per cluster: record engagement counters for each representative
   post, give 3 hypotheses for why it spread, and sketch 3 one-or-two-line
   hook ideas derived from it.
3) Summarize the overall mood: themes and angles that are working right
   now, themes and phrasings to avoid, and the best posting windows.

Return STRICT JSON ONLY:
{
  "clusters": [
    {
      "name": "...",
      "keywords": ["..."],
      "representative_posts": [
        {
          "summary": "...",
          "engagement": {"likes": 0, "rt": 0, "replies": 0},
          "why_viral": ["...", "...", "..."],
          "hook_ideas": ["...", "...", "..."]
        }
      ]
    }
  ],
  "trending_themes": ["..."],
  "avoid_themes": ["..."],
  "best_timing": "...",
  "overall_mood": "..."
}`, topic, now.UTC().Format(time.RFC3339), opts.Days, opts.Audience, localeLine)
	return b.String()
}

func buildPatternPrompt(topic string, count int) string {
	return fmt.Sprintf(`Goal: analyze posts about "%s" that are spreading on X and extract
reusable posting templates.

Steps:
1) Collect %d+ high-engagement posts on the topic (min_faves:100 or
   better); skip giveaway posts and pure link promotion.
2) For each post, break down the structure (hook, body, call to action),
   the hook pattern, the psychological triggers (curiosity gap, loss
   aversion, social proof, ...), the engagement counters and 3 hypotheses
   for why it spread.
3) Extract the overall patterns: top 5 hook shapes, the structure that
   draws the most replies, the structure that gets bookmarked most, shared
   style traits, and the patterns that did NOT work.

Return STRICT JSON ONLY:
{
  "top_hooks": [
    {"pattern": "...", "example": "...", "effectiveness": "..."}
  ],
  "viral_structures": [
    {"name": "...", "template": "...", "best_for": "..."}
  ],
  "psychology_triggers": ["..."],
  "style_insights": ["..."],
  "ng_patterns": ["..."],
  "sample_posts": [
    {
      "summary": "...",
      "engagement": {"likes": 0, "rt": 0, "replies": 0},
      "why_viral": ["...", "...", "..."],
      "structure": "..."
    }
  ]
}`, topic, count)
}
