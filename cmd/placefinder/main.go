// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/placefinder"
	"github.com/poiesic/placefinder/ai"
	"github.com/poiesic/placefinder/api"
)

func main() {
	app := &cli.App{
		Name:  "placefinder",
		Usage: "Conversational retrieval over a place catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "info",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Sync the semantic index and serve the HTTP API",
				Action: serveCommand,
				Flags: append(serviceFlags(),
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "HTTP listen port",
						EnvVars: []string{"PORT"},
						Value:   "8000",
					},
				),
			},
			{
				Name:   "sync",
				Usage:  "Bring the semantic index up to date with the catalog and exit",
				Action: syncCommand,
				Flags:  serviceFlags(),
			},
			{
				Name:   "reconcile",
				Usage:  "Full reconciliation: delete stale entries and re-embed changed ones",
				Action: reconcileCommand,
				Flags:  serviceFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serviceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "csv",
			Aliases: []string{"c"},
			Usage:   "Path to the catalog CSV file",
			EnvVars: []string{"CSV_PATH"},
			Value:   "data/locations.csv",
		},
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to the BadgerDB database directory",
			EnvVars: []string{"DB_PATH"},
			Value:   "data/db",
		},
		&cli.StringFlag{
			Name:    "collection",
			Usage:   "Vector collection name",
			EnvVars: []string{"COLLECTION_NAME"},
			Value:   "locations",
		},
		&cli.StringFlag{
			Name:    "image-root",
			Usage:   "Directory holding per-record image directories",
			EnvVars: []string{"IMAGE_ROOT"},
			Value:   "data/images",
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			EnvVars: []string{"EMBEDDING_HOST"},
			Value:   "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			EnvVars: []string{"EMBEDDING_MODEL"},
			Value:   "all-minilm",
		},
		&cli.StringFlag{
			Name:    "llm-host",
			Usage:   "Chat model host URL (defaults to embedding-host)",
			EnvVars: []string{"LLM_HOST"},
		},
		&cli.StringFlag{
			Name:    "llm-model",
			Usage:   "Chat model name; leave empty to run without an LLM",
			EnvVars: []string{"LLM_MODEL"},
		},
		&cli.StringFlag{
			Name:    "api-token",
			Usage:   "API token for the model hosts",
			EnvVars: []string{"OPENAI_API_KEY"},
		},
		&cli.IntFlag{
			Name:    "top-k",
			Usage:   "Number of locations retrieved per conversation turn",
			EnvVars: []string{"TOP_K_RETRIEVAL"},
			Value:   5,
		},
	}
}

func newService(c *cli.Context) (*placefinder.Service, error) {
	aiOpts := []ai.ConfigOption{
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	}
	if host := c.String("llm-host"); host != "" {
		aiOpts = append(aiOpts, ai.WithChatHost(host))
	}
	if model := c.String("llm-model"); model != "" {
		aiOpts = append(aiOpts, ai.WithChatModel(model))
	}
	if token := c.String("api-token"); token != "" {
		aiOpts = append(aiOpts, ai.WithAPIToken(token))
	}

	aiConfig := ai.NewConfig(aiOpts...)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	return placefinder.NewService(c.Context, c.String("csv"), c.String("db"),
		placefinder.WithAIConfig(aiConfig),
		placefinder.WithCollectionName(c.String("collection")),
		placefinder.WithImageRoot(c.String("image-root")),
		placefinder.WithTopK(c.Int("top-k")),
	)
}

func serveCommand(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Close()

	srv := api.New(c.String("port"), c.String("image-root"), svc.Pipeline(), svc.Store(), slog.Default())

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
	}
	return nil
}

func syncCommand(c *cli.Context) error {
	// NewService syncs the index as part of startup.
	svc, err := newService(c)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	defer svc.Close()

	count, err := svc.Index().Count(c.Context)
	if err != nil {
		return fmt.Errorf("failed to count index entries: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Index entries: %d\n", count)
	return nil
}

func reconcileCommand(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Close()

	stats, err := svc.Reconcile(c.Context)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Deleted: %d\nReembedded: %d\nInserted: %d\nFailed batches: %d\n",
		stats.Deleted, stats.Reembedded, stats.Inserted, stats.Failed)
	return nil
}

func setup(c *cli.Context) error {
	// A missing .env file is fine; the environment may be set elsewhere.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "err", err)
	}
	return setupLogger(c)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
