// Package app builds the pipeline components from configuration. Both
// binaries share this wiring: mock mode swaps every external service for
// its deterministic offline version.
package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/analyze"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/config"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/illustrate"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/llmclient"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/research"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/rewrite"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/sink"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/source"
)

const (
	textModel  = "gemini-2.5-flash"
	imageModel = "nano-banana-pro-preview"
)

// Components holds the wired stages.
type Components struct {
	Source      source.Source
	Analyzer    *analyze.Analyzer
	Rewriter    *rewrite.Rewriter
	Illustrator *illustrate.Generator
	Sink        sink.Sink
	Researcher  *research.Researcher
	Limiter     *rate.Limiter

	llm llmclient.Client
}

// Build wires everything from cfg. Missing credentials degrade piecewise:
// no bearer token means the mock source, no Gemini key means heuristic
// analysis and template rewrites, no image model means no images.
func Build(ctx context.Context, cfg *config.Config, log *logrus.Entry) (*Components, error) {
	c := &Components{
		// One LLM request per second with a small burst keeps free-tier
		// quotas intact.
		Limiter: rate.NewLimiter(rate.Limit(1), 2),
	}

	var llm llmclient.Client
	if !cfg.Mock() && cfg.GeminiAPIKey != "" {
		gemini, err := llmclient.NewGeminiClient(ctx, cfg.GeminiAPIKey, textModel)
		if err != nil {
			return nil, err
		}
		llm = llmclient.Chain(gemini,
			llmclient.WithRateLimit(c.Limiter),
			llmclient.WithLogging(log),
		)
	}
	c.llm = llm

	if !cfg.Mock() && cfg.XBearerToken != "" {
		c.Source = source.NewAPISource(cfg.XBearerToken)
	} else {
		c.Source = &source.MockSource{}
	}

	c.Analyzer = &analyze.Analyzer{LLM: llm, Log: log}

	// With a live model the rewrite service is mandatory and exhausted
	// retries surface as an error; offline the template fallback keeps
	// demo runs productive.
	mode := rewrite.ModeBestEffort
	if llm != nil {
		mode = rewrite.ModeStrict
	}
	c.Rewriter = &rewrite.Rewriter{LLM: llm, Mode: mode, Log: log, RetryDelay: time.Second}

	if !cfg.Mock() && cfg.GeminiAPIKey != "" {
		model, err := llmclient.NewGeminiImageModel(ctx, cfg.GeminiAPIKey, imageModel)
		if err != nil {
			return nil, err
		}
		c.Illustrator = &illustrate.Generator{Model: model, Store: c.imageStore(cfg, log), Log: log}
	}

	store, err := sink.NewFromEnv(log, cfg.DatabaseURL, cfg.CSVPath)
	if err != nil {
		return nil, err
	}
	c.Sink = store

	researcher, err := research.New(research.Config{
		XAIKey: cfg.XAIAPIKey,
		LLM:    llm,
		Log:    log,
	})
	if err != nil {
		return nil, err
	}
	c.Researcher = researcher

	return c, nil
}

func (c *Components) imageStore(cfg *config.Config, log *logrus.Entry) illustrate.ObjectStore {
	if cfg.Object.Endpoint != "" {
		s3, err := illustrate.NewS3Store(illustrate.S3Config{
			Endpoint:  cfg.Object.Endpoint,
			AccessKey: cfg.Object.AccessKey,
			SecretKey: cfg.Object.SecretKey,
			Bucket:    cfg.Object.Bucket,
			UseSSL:    cfg.Object.UseSSL,
		})
		if err == nil {
			return s3
		}
		if log != nil {
			log.WithError(err).Warn("object store unavailable, storing images locally")
		}
	}
	return &illustrate.LocalStore{Dir: cfg.ImageDir}
}

// Close releases the LLM client and the result store.
func (c *Components) Close() error {
	var first error
	if c.llm != nil {
		first = c.llm.Close()
	}
	if c.Sink != nil {
		if err := c.Sink.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
