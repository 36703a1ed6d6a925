package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/imkonsowa/places-chat/agent"
	"github.com/imkonsowa/places-chat/config"
	"github.com/imkonsowa/places-chat/maps"
	"github.com/imkonsowa/places-chat/retriever"
	"github.com/imkonsowa/places-chat/store"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.LoadConfig()

	db, err := store.NewPg(cfg.Postgres.ConnStr())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		log.Fatal(err)
	}

	opts := []openai.Option{
		openai.WithToken(cfg.OpenAI.APIKey),
		openai.WithModel(cfg.OpenAI.CompletionModel),
		openai.WithEmbeddingModel(cfg.OpenAI.EmbeddingModel),
	}
	if cfg.OpenAI.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.OpenAI.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		log.Fatal(err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		log.Fatal(err)
	}

	history, err := agent.OpenHistory(cfg.History.Path)
	if err != nil {
		log.Fatal(err)
	}
	defer history.Close()

	gateway := maps.NewGateway(maps.NewClient(cfg.Maps.APIKey, cfg.Maps.BaseURL), db)
	similar := retriever.New(db, embedder)
	completer := agent.NewLLMCompleter(llm, cfg.OpenAI.MaxTokens)

	router := agent.NewRouter(
		agent.NewClassifier(completer),
		completer,
		gateway,
		similar,
		agent.WithVicinity(cfg.Maps.Radius, cfg.Maps.Limit),
	)

	server := &http.Server{
		Addr:    cfg.Server.Address(),
		Handler: agent.NewServer(router, gateway, similar, db, history).Engine(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		slog.Info("agent listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Fatalf("failed to run the agent: %v", err)
	}
}
