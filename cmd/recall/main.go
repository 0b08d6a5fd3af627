// Copyright 2025 Recallkit Labs
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
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/recallkit/recall"
	"github.com/recallkit/recall/knowledge"
)

func main() {
	app := &cli.App{
		Name:  "recall",
		Usage: "Local-first Q&A assistant that learns from feedback",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the storage directory",
				Value:   "./recall_db",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Answer a question",
				ArgsUsage: "<question>",
				Action:    askCommand,
			},
			{
				Name:      "rate",
				Usage:     "Rate an answer from 1 to 5",
				ArgsUsage: "<question> <answer>",
				Action:    rateCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "rating",
						Aliases:  []string{"r"},
						Usage:    "Rating from 1 (block) to 5 (excellent)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "comment",
						Aliases: []string{"c"},
						Usage:   "Optional comment attached to the rating",
					},
				},
			},
			{
				Name:      "add",
				Usage:     "Add a knowledge entry",
				ArgsUsage: "<title> <content>",
				Action:    addCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "category",
						Usage: "Entry category",
						Value: "general",
					},
					&cli.StringSliceFlag{
						Name:    "keyword",
						Aliases: []string{"k"},
						Usage:   "Keyword (repeatable); derived from content when omitted",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the knowledge store",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "max",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   knowledge.DefaultMaxResults,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum relevance score",
						Value: knowledge.DefaultThreshold,
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Restrict to one category",
					},
				},
			},
			{
				Name:      "ingest",
				Usage:     "Ingest text files into the knowledge store",
				ArgsUsage: "<file>...",
				Action:    ingestCommand,
			},
			{
				Name:   "stats",
				Usage:  "Show storage statistics",
				Action: statsCommand,
			},
			{
				Name:   "most-used",
				Usage:  "Show the most used knowledge entries",
				Action: mostUsedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "count",
						Aliases: []string{"n"},
						Value:   10,
					},
				},
			},
			{
				Name:   "recent",
				Usage:  "Show the most recently updated knowledge entries",
				Action: recentCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "count",
						Aliases: []string{"n"},
						Value:   10,
					},
				},
			},
			{
				Name:   "backup",
				Usage:  "Write a snapshot of all collections",
				Action: backupCommand,
			},
			{
				Name:   "backups",
				Usage:  "List available backups",
				Action: listBackupsCommand,
			},
			{
				Name:      "restore",
				Usage:     "Restore a snapshot by identifier",
				ArgsUsage: "<backup-id>",
				Action:    restoreCommand,
			},
			{
				Name:   "export",
				Usage:  "Export the knowledge base as markdown to stdout",
				Action: exportCommand,
			},
			{
				Name:      "train",
				Usage:     "Promote one question/answer pair into the knowledge store",
				ArgsUsage: "<question> <answer>",
				Action:    trainCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "category",
						Usage: "Category for the promoted entry",
					},
				},
			},
			{
				Name:   "train-all",
				Usage:  "Promote every well-rated conversation into the knowledge store",
				Action: trainAllCommand,
			},
			{
				Name:   "refresh",
				Usage:  "Recompute term weights and regenerate all embeddings",
				Action: refreshCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
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

// withAssistant opens the assistant for the command's duration.
func withAssistant(c *cli.Context, fn func(ctx context.Context, a *recall.Assistant) error) error {
	assistant, err := recall.NewAssistant(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open assistant: %w", err)
	}
	defer assistant.Close()

	return fn(context.Background(), assistant)
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("question is required")
	}

	return withAssistant(c, func(ctx context.Context, a *recall.Assistant) error {
		answer := a.Answer(ctx, question)
		fmt.Println(answer.Text)
		fmt.Printf("\n[source=%s confidence=%d strategy=%s",
			answer.Source, answer.Confidence, answer.Strategy)
		if answer.Filtered {
			fmt.Print(" filtered")
		}
		fmt.Println("]")
		return nil
	})
}

func rateCommand(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("expected <question> <answer>")
	}

	return withAssistant(c, func(ctx context.Context, a *recall.Assistant) error {
		return a.Rate(ctx, c.Args().Get(0), c.Args().Get(1), c.Int("rating"), c.String("comment"))
	})
}

func addCommand(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("expected <title> <content>")
	}

	return withAssistant(c, func(ctx context.Context, a *recall.Assistant) error {
		entry, err := a.AddKnowledge(ctx, c.Args().Get(0), c.Args().Get(1),
			c.String("category"), c.StringSlice("keyword")...)
		if err != nil {
			return err
		}
		fmt.Printf("added %s\n", entry.ID)
		return nil
	})
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	return withAssistant(c, func(ctx context.Context, a *recall.Assistant) error {
		results := a.Search(ctx, query, knowledge.SearchOptions{
			MaxResults: c.Int("max"),
			Threshold:  c.Float64("threshold"),
			Category:   c.String("category"),
		})
		if len(results) == 0 {
			fmt.Println("no results")
			return nil
		}
		for _, result := range results {
			fmt.Printf("%.3f  [%s]  %s  (%s)\n",
				result.Relevance, result.MatchType, result.Entry.Title, result.Entry.ID)
		}
		return nil
	})
}

func ingestCommand(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	return withAssistant(c, func(ctx context.Context, a *recall.Assistant) error {
		added, err := a.IngestFiles(ctx, c.Args().Slice()...)
		if err != nil {
			return err
		}
		fmt.Printf("ingested %d entries from %d files\n", added, c.Args().Len())
		return nil
	})
}

func statsCommand(c *cli.Context) error {
	return withAssistant(c, func(ctx context.Context, a *recall.Assistant) error {
		stats, err := a.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("knowledge entries: %d\n", stats.KnowledgeEntries)
		fmt.Printf("conversations:     %d\n", stats.Conversations)
		fmt.Printf("excellent:         %d\n", stats.Excellent)
		fmt.Printf("blocked:           %d\n", stats.Blocked)
		fmt.Printf("total usage:       %d\n", stats.TotalUsage)
		for category, count := range stats.Categories {
			fmt.Printf("  %s: %d\n", category, count)
		}
		return nil
	})
}

func mostUsedCommand(c *cli.Context) error {
	return withAssistant(c, func(ctx context.Context, a *recall.Assistant) error {
		for _, entry := range a.MostUsed(c.Int("count")) {
			fmt.Printf("%5d  %s  (%s)\n", entry.Metadata.UsageCount, entry.Title, entry.ID)
		}
		return nil
	})
}

func recentCommand(c *cli.Context) error {
	return withAssistant(c, func(ctx context.Context, a *recall.Assistant) error {
		for _, entry := range a.RecentlyUpdated(c.Int("count")) {
			fmt.Printf("%s  %s  (%s)\n",
				entry.Metadata.LastUpdated.Format("2006-01-02 15:04"), entry.Title, entry.ID)
		}
		return nil
	})
}

func backupCommand(c *cli.Context) error {
	return withAssistant(c, func(ctx context.Context, a *recall.Assistant) error {
		id, err := a.Backup(ctx)
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	})
}

func listBackupsCommand(c *cli.Context) error {
	return withAssistant(c, func(ctx context.Context, a *recall.Assistant) error {
		ids, err := a.ListBackups()
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	})
}

func restoreCommand(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected <backup-id>")
	}

	return withAssistant(c, func(ctx context.Context, a *recall.Assistant) error {
		return a.Restore(ctx, c.Args().First())
	})
}

func exportCommand(c *cli.Context) error {
	return withAssistant(c, func(ctx context.Context, a *recall.Assistant) error {
		return a.ExportReadable(os.Stdout)
	})
}

func trainCommand(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("expected <question> <answer>")
	}

	return withAssistant(c, func(ctx context.Context, a *recall.Assistant) error {
		entry, err := a.TrainFromConversation(ctx, c.Args().Get(0), c.Args().Get(1), c.String("category"))
		if err != nil {
			return err
		}
		fmt.Printf("trained %s\n", entry.ID)
		return nil
	})
}

func trainAllCommand(c *cli.Context) error {
	return withAssistant(c, func(ctx context.Context, a *recall.Assistant) error {
		added, err := a.TrainFromAllConversations(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("promoted %d entries\n", added)
		return nil
	})
}

func refreshCommand(c *cli.Context) error {
	return withAssistant(c, func(ctx context.Context, a *recall.Assistant) error {
		return a.RefreshCorpus(ctx)
	})
}
