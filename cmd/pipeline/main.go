package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/app"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/config"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/logging"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/pipeline"
)

func main() {
	accountsPath := flag.String("accounts", "config/accounts.json", "benchmark accounts file")
	settingsPath := flag.String("settings", "config/settings.json", "run settings file")
	flag.Parse()

	log := logging.NewWithService("pipeline")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load configuration")
	}
	if cfg.Mock() {
		log.Info("mock mode: external services replaced with deterministic versions")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("wire services")
	}
	defer components.Close()

	o := &pipeline.Orchestrator{
		Source:      components.Source,
		Analyzer:    components.Analyzer,
		Rewriter:    components.Rewriter,
		Illustrator: components.Illustrator,
		Sink:        components.Sink,
		Limiter:     components.Limiter,
		Log:         log,
	}

	// Positional args switch to direct mode: each argument is a status URL.
	var sum *pipeline.Summary
	if urls := flag.Args(); len(urls) > 0 {
		sum, err = runDirect(ctx, o, urls)
	} else {
		sum, err = runBatch(ctx, o, *accountsPath, *settingsPath)
	}
	report(log, sum, err)
}

func runBatch(ctx context.Context, o *pipeline.Orchestrator, accountsPath, settingsPath string) (*pipeline.Summary, error) {
	accounts, err := config.LoadAccounts(accountsPath)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, errors.New("no benchmark accounts configured")
	}
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	n := len(accounts)
	if max := settings.Collection.MaxAccountsPerRun; n > max {
		n = max
	}
	usernames := make([]string, 0, n)
	categories := make(map[string]string, n)
	for _, a := range accounts[:n] {
		usernames = append(usernames, a.Username)
		categories[a.Username] = a.Category
	}

	return o.Run(ctx, usernames, pipeline.Options{
		Categories:      categories,
		MinLikes:        settings.Filtering.EngagementThreshold.MinLikes,
		MinReposts:      settings.Filtering.EngagementThreshold.MinReposts,
		PostsToAnalyze:  settings.Processing.PostsToAnalyze,
		PostsToRewrite:  settings.Processing.PostsToRewrite,
		PostsPerAccount: settings.Collection.PostsPerAccount,
		GenerateImages:  settings.Processing.GenerateImages,
		AccountDelay:    settings.AccountDelay(),
		ItemDelay:       settings.ItemDelay(),
	})
}

func runDirect(ctx context.Context, o *pipeline.Orchestrator, urls []string) (*pipeline.Summary, error) {
	return o.RunURLs(ctx, urls, pipeline.Options{})
}

func report(log *logrus.Entry, sum *pipeline.Summary, err error) {
	if sum != nil {
		log.Infof("collected=%d filtered=%d analyzed=%d rewritten=%d persisted=%d est_cost=$%.4f",
			sum.Collected, sum.Filtered, sum.Analyzed, sum.Rewritten, sum.Persisted, sum.EstimatedCost)
		for _, e := range sum.Errors {
			log.Errorf("partial failure: %s", e)
		}
	}
	if err != nil {
		log.Errorf("run failed: %v", err)
		os.Exit(1)
	}
}
