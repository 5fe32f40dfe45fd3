// Copyright 2026 The Inkdex Authors
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
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/inkdex/inkdex"
	"github.com/inkdex/inkdex/ai"
	"github.com/inkdex/inkdex/ai/openai"
	"github.com/inkdex/inkdex/export"
	"github.com/inkdex/inkdex/fetch"
	"github.com/inkdex/inkdex/ingest"
	"github.com/inkdex/inkdex/reindex"
	"github.com/inkdex/inkdex/retrieval"
	"github.com/inkdex/inkdex/schedule"
	"github.com/inkdex/inkdex/source"
	"github.com/inkdex/inkdex/source/takeout"
	"github.com/inkdex/inkdex/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	aiFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "host",
			Usage: "OpenAI-compatible model host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "vision-model",
			Usage: "Vision model name for transcription",
			Value: "llama3.2-vision",
		},
		&cli.StringFlag{
			Name:  "structuring-model",
			Usage: "Model name for note structuring",
			Value: "qwen2.5:3b",
		},
	}

	passFlags := append([]cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "takeout",
			Aliases:  []string{"t"},
			Usage:    "Path to a Google Keep Takeout directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "label",
			Usage: "Only ingest notes carrying this label",
		},
		&cli.StringFlag{
			Name:  "date",
			Usage: "Only ingest notes last edited on this day (YYYY-MM-DD)",
		},
		&cli.StringFlag{
			Name:  "media-url",
			Usage: "Base URL for fetching attachments by media id",
		},
		&cli.StringFlag{
			Name:  "export",
			Usage: "Directory to export indexed notes as markdown (disabled if empty)",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Number of concurrent attachment downloads",
			Value: 4,
		},
	}, aiFlags...)

	app := &cli.App{
		Name:  "inkdex",
		Usage: "Semantic index over handwritten notes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run one ingestion pass over a Takeout export",
				Action: runCommand,
				Flags:  passFlags,
			},
			{
				Name:   "watch",
				Usage:  "Run ingestion passes on a cron schedule",
				Action: watchCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "schedule",
						Usage: "Cron expression for pass scheduling",
						Value: "0 3 * * *",
					},
				}, passFlags...),
			},
			{
				Name:      "query",
				Usage:     "Search indexed notes semantically",
				Action:    queryCommand,
				ArgsUsage: "<query text>",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "max-hits",
						Usage: "Maximum number of results",
						Value: 5,
					},
					&cli.Float64Flag{
						Name:  "min-score",
						Usage: "Minimum similarity score",
						Value: 0.60,
					},
					&cli.IntFlag{
						Name:  "context-tokens",
						Usage: "Print an assembled context block under this token budget (0 disables)",
					},
				}, aiFlags...),
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed all indexed notes with a new embedding model",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of entries to process in each batch",
						Value: 50,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embeddings",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func aiConfig(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithVisionModel(c.String("vision-model")),
		ai.WithStructuringModel(c.String("structuring-model")),
	)
}

func buildFilter(c *cli.Context) (source.Filter, error) {
	filter := source.Filter{Label: c.String("label")}
	if dateStr := c.String("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return filter, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", dateStr)
		}
		filter.Date = date
	}
	return filter, nil
}

// buildPipeline assembles a full system and pipeline from command flags.
// Returned cleanup closes everything in reverse order.
func buildPipeline(c *cli.Context) (*ingest.Pipeline, func(), error) {
	config := aiConfig(c)
	if err := config.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	system, err := inkdex.NewSystem(c.String("db"), inkdex.WithAIConfig(config))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	connector, err := takeout.NewConnector(c.String("takeout"))
	if err != nil {
		system.Close()
		return nil, nil, fmt.Errorf("failed to open takeout directory: %w", err)
	}

	var fetchOpts []fetch.Option
	if mediaURL := c.String("media-url"); mediaURL != "" {
		fetchOpts = append(fetchOpts, fetch.WithMediaBaseURL(mediaURL))
	}
	fetcher, err := fetch.NewFetcher(fetchOpts...)
	if err != nil {
		system.Close()
		return nil, nil, err
	}

	var pipelineOpts []ingest.Option
	pipelineOpts = append(pipelineOpts, ingest.WithPoolSize(c.Int("workers")))
	if exportDir := c.String("export"); exportDir != "" {
		writer, err := export.NewWriter(exportDir)
		if err != nil {
			system.Close()
			return nil, nil, err
		}
		pipelineOpts = append(pipelineOpts, ingest.WithExporter(writer))
	}

	pipeline, err := system.NewIngestionPipeline(connector, fetcher, pipelineOpts...)
	if err != nil {
		system.Close()
		return nil, nil, err
	}

	cleanup := func() {
		pipeline.Release()
		system.Close()
	}
	return pipeline, cleanup, nil
}

func runCommand(c *cli.Context) error {
	filter, err := buildFilter(c)
	if err != nil {
		return err
	}

	pipeline, cleanup, err := buildPipeline(c)
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := pipeline.RunPass(c.Context, filter)
	if err != nil {
		return fmt.Errorf("ingestion pass failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Pass complete: %d notes, %d attachments, %d indexed (%d duplicates), %d skipped, %d failed\n",
		stats.Notes, stats.Attachments, stats.Indexed, stats.Duplicates, stats.Skipped, stats.Failed)
	return nil
}

func watchCommand(c *cli.Context) error {
	filter, err := buildFilter(c)
	if err != nil {
		return err
	}

	pipeline, cleanup, err := buildPipeline(c)
	if err != nil {
		return err
	}
	defer cleanup()

	trigger, err := schedule.NewTrigger(c.String("schedule"), func(ctx context.Context) {
		stats, err := pipeline.RunPass(ctx, filter)
		if err != nil {
			slog.Error("ingestion pass failed", "err", err)
			return
		}
		slog.Info("scheduled pass complete",
			"indexed", stats.Indexed, "skipped", stats.Skipped, "failed", stats.Failed)
	})
	if err != nil {
		return err
	}

	if err := trigger.Start(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Watching on schedule %q, press Ctrl+C to stop\n", c.String("schedule"))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	trigger.Stop()
	return nil
}

func queryCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query text is required")
	}

	config := aiConfig(c)
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	system, err := inkdex.NewSystem(c.String("db"), inkdex.WithAIConfig(config))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer system.Close()

	engine, err := system.NewRetrievalEngine(
		retrieval.WithMinScore(float32(c.Float64("min-score"))),
	)
	if err != nil {
		return err
	}

	results, err := engine.Retrieve(c.Context, query, c.Int("max-hits"))
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matching notes found.")
		return nil
	}

	for i, result := range results {
		meta := result.Entry.Meta
		fmt.Printf("%d. %s", i+1, meta.Title)
		if meta.Date != "" {
			fmt.Printf(" (%s)", meta.Date)
		}
		fmt.Printf("  score=%.3f\n", result.Score)
		if meta.Summary != "" {
			fmt.Printf("   %s\n", meta.Summary)
		}
		if meta.TaskTotal > 0 {
			fmt.Printf("   tasks: %d done, %d todo\n", meta.TaskDone, meta.TaskTodo)
		}
	}

	if budget := c.Int("context-tokens"); budget > 0 {
		block := retrieval.BuildContext(results, budget)
		fmt.Printf("\n--- context (%d tokens) ---\n", budget)
		fmt.Println(block.Text)
		fmt.Println("--- citations ---")
		for _, citation := range block.Citations {
			fmt.Printf("%s  similarity=%.3f\n", citation.SourceID, citation.Similarity)
		}
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	config := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(config)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	_, vectors, backend, err := badger.NewRepositories(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	reindexConfig := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("batch-size"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if reindexConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reindexConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reindexer, err := reindex.NewReindexer(vectors, embedder, reindexConfig, os.Stderr)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n\n", c.String("embedding-model"))

	if err := reindexer.Run(c.Context); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}
	return nil
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
