package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/app"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/config"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/logging"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/server"
)

func main() {
	log := logging.NewWithService("api")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("wire services")
	}
	defer components.Close()

	srv := server.New(server.Services{
		Source:      components.Source,
		Analyzer:    components.Analyzer,
		Rewriter:    components.Rewriter,
		Illustrator: components.Illustrator,
		Sink:        components.Sink,
		Researcher:  components.Researcher,
		Limiter:     components.Limiter,
		ImageDir:    cfg.ImageDir,
	}, log)

	httpSrv := &http.Server{
		Addr:    cfg.Port,
		Handler: srv.Router(),
		// Generation runs synchronously inside the request; the write
		// timeout has to cover a full batch.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", cfg.Port).Info("api server listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server stopped")
	}
}
