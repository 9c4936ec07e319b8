// Command codelens is the thin CLI front door (spec.md §1, §6): it
// parses flags, loads configuration, and calls into internal/facade for
// every real operation. Output formatting, verbosity, and flag parsing
// live here; nothing analytical does.
//
// Grounded on the teacher's cmd/lci/main.go: urfave/cli/v2 app structure,
// root/include/exclude flag shape, and signal-based graceful
// shutdown.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/codelensdev/codelens/internal/cache"
	"github.com/codelensdev/codelens/internal/config"
	"github.com/codelensdev/codelens/internal/embedding"
	"github.com/codelensdev/codelens/internal/facade"
	"github.com/codelensdev/codelens/internal/version"
)

func newApp() *cli.App {
	return &cli.App{
		Name:                   "codelens",
		Usage:                  "code intelligence over a local project: index, search, centrality, impact, cycles",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "project root to analyze", Value: "."},
			&cli.StringFlag{Name: "cache-dir", Usage: "cache directory (defaults under the project root)"},
			&cli.StringSliceFlag{Name: "include", Usage: "include glob patterns"},
			&cli.StringSliceFlag{Name: "exclude", Usage: "exclude glob patterns"},
			&cli.BoolFlag{Name: "json", Usage: "emit JSON output"},
		},
		Commands: []*cli.Command{
			indexCommand(),
			searchCommand(),
			centralityCommand(),
			impactCommand(),
			cyclesCommand(),
			statsCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	override := &config.Config{}
	if v := c.String("cache-dir"); v != "" {
		override.CacheDir = v
	}
	if v := c.StringSlice("include"); len(v) > 0 {
		override.Include = v
	}
	if v := c.StringSlice("exclude"); len(v) > 0 {
		override.Exclude = v
	}
	return config.Load(c.String("root"), override)
}

func openFacade(c *cli.Context) (*facade.Facade, *cache.Cache, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	ch, err := cache.Open(cfg.CacheDir)
	if err != nil {
		return nil, nil, err
	}

	var embedder *embedding.Matcher
	if cfg.EmbeddingModelID != "" {
		embedder = embedding.Open(cfg.CacheDir+"/embeddings.db", nil) // model wiring is deployment-specific; nil model keeps it Disabled by default
	}

	return facade.New(cfg, ch, embedder), ch, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "discover, extract, and cache tags for the project",
		Action: func(c *cli.Context) error {
			ctx, cancel := signalContext()
			defer cancel()

			f, ch, err := openFacade(c)
			if err != nil {
				return err
			}
			defer ch.Close()

			summary, err := f.Index(ctx)
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(summary)
			}
			fmt.Printf("indexed %d files (%d tags, %d failed, %d skipped) in %s\n",
				summary.FileCount, summary.TagCount, summary.Failed, summary.Skipped, summary.Duration)
			for _, fail := range summary.Failures {
				fmt.Fprintf(os.Stderr, "  %s\n", fail.String())
			}
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "rank identifiers against a query",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "strategy", Value: "hybrid", Usage: "fuzzy|tfidf|hybrid|embedding"},
			&cli.Float64Flag{Name: "threshold", Value: 0.3},
			&cli.IntFlag{Name: "k", Value: 20},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return cli.Exit("search requires a query argument", 1)
			}
			ctx, cancel := signalContext()
			defer cancel()

			f, ch, err := openFacade(c)
			if err != nil {
				return err
			}
			defer ch.Close()
			if _, err := f.Index(ctx); err != nil {
				return err
			}

			results, err := f.Search(ctx, c.Args().First(), facade.SearchStrategy(c.String("strategy")), c.Float64("threshold"), c.Int("k"))
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(results)
			}
			for _, r := range results {
				fmt.Printf("%-30s %.3f  %v\n", r.Identifier, r.Score, r.DefiningFiles)
			}
			return nil
		},
	}
}

func centralityCommand() *cli.Command {
	return &cli.Command{
		Name:  "centrality",
		Usage: "composite and per-metric centrality scores",
		Action: func(c *cli.Context) error {
			ctx, cancel := signalContext()
			defer cancel()

			f, ch, err := openFacade(c)
			if err != nil {
				return err
			}
			defer ch.Close()
			if _, err := f.Index(ctx); err != nil {
				return err
			}

			scores, err := f.Centrality(c.Args().Slice())
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(scores)
			}
			for path, s := range scores {
				fmt.Printf("%-50s composite=%.3f degree=%.3f betweenness=%.3f pagerank=%.3f\n",
					path, s.Composite, s.Degree, s.Betweenness, s.PageRank)
			}
			return nil
		},
	}
}

func impactCommand() *cli.Command {
	return &cli.Command{
		Name:      "impact",
		Usage:     "blast radius of changing one or more files",
		ArgsUsage: "<file> [file...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("impact requires at least one file argument", 1)
			}
			ctx, cancel := signalContext()
			defer cancel()

			f, ch, err := openFacade(c)
			if err != nil {
				return err
			}
			defer ch.Close()
			if _, err := f.Index(ctx); err != nil {
				return err
			}

			report, err := f.Impact(c.Args().Slice())
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(report)
			}
			fmt.Printf("risk_score=%.3f direct=%d transitive=%d\n",
				report.RiskScore, len(report.DirectDependents), len(report.TransitiveDependents))
			for _, t := range report.SuggestedTests {
				fmt.Println("  suggested test:", t)
			}
			return nil
		},
	}
}

func cyclesCommand() *cli.Command {
	return &cli.Command{
		Name:  "cycles",
		Usage: "find import/call cycles",
		Action: func(c *cli.Context) error {
			ctx, cancel := signalContext()
			defer cancel()

			f, ch, err := openFacade(c)
			if err != nil {
				return err
			}
			defer ch.Close()
			if _, err := f.Index(ctx); err != nil {
				return err
			}

			cycles, err := f.FindCycles()
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(cycles)
			}
			for _, cyc := range cycles {
				fmt.Println(cyc)
			}
			return nil
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "cache and graph counters",
		Action: func(c *cli.Context) error {
			ctx, cancel := signalContext()
			defer cancel()

			f, ch, err := openFacade(c)
			if err != nil {
				return err
			}
			defer ch.Close()
			if _, err := f.Index(ctx); err != nil {
				return err
			}

			stats := f.StatsReport()
			if c.Bool("json") {
				return printJSON(stats)
			}
			fmt.Printf("files=%d hits=%d misses=%d nodes=%d edges=%d identifiers=%d\n",
				stats.CachedFiles, stats.CacheHits, stats.CacheMisses, stats.NodeCount, stats.EdgeCount, stats.Identifiers)
			return nil
		},
	}
}
