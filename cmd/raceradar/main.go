package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/eprogressing/race-radar/internal/config"
	"github.com/eprogressing/race-radar/internal/feed"
	"github.com/eprogressing/race-radar/internal/history"
	"github.com/eprogressing/race-radar/internal/pipeline"
	"github.com/eprogressing/race-radar/internal/preview"
	"github.com/eprogressing/race-radar/internal/score"
	"github.com/eprogressing/race-radar/internal/source"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "raceradar",
	Short:   "Academic competition feed builder",
	Long:    "raceradar fetches competition listings from configured sources, curates and ranks them, and publishes a single versioned feed.json for client apps.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(whitelistCmd)
	rootCmd.AddCommand(previewCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("raceradar", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/raceradar/",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		files := []struct {
			name string
			data []byte
		}{
			{"config.yaml", config.DefaultConfigYAML},
			{"whitelist.yaml", score.DefaultWhitelistYAML},
		}
		for _, f := range files {
			target := filepath.Join(config.ConfigDir(), f.name)
			if _, err := os.Stat(target); err == nil {
				fmt.Printf("Already exists, not touching: %s\n", target)
				continue
			}
			if err := os.WriteFile(target, f.data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", f.name, err)
			}
			fmt.Printf("Created: %s\n", target)
		}

		fmt.Println("Edit config.yaml to enable sources and tune scoring weights.")
		return nil
	},
}

// --- run command ---

var (
	dryRun  bool
	nowFlag string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: fetch -> curate -> enrich -> score -> rank -> merge -> write",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := pipeline.RunOptions{DryRun: dryRun}
		if nowFlag != "" {
			t, err := time.Parse(feed.DateFormat, nowFlag)
			if err != nil {
				return fmt.Errorf("invalid --now date %q (want YYYY-MM-DD)", nowFlag)
			}
			opts.Now = t
		}

		pipe, err := pipeline.New(cfg)
		if err != nil {
			return err
		}

		result, err := pipe.Run(context.Background(), opts)
		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/8: %s\n", i+1, step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}
		if err != nil {
			return err
		}

		printRunSummary(result)
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Execute every stage but write nothing")
	runCmd.Flags().StringVar(&nowFlag, "now", "", "Evaluate against this date (YYYY-MM-DD) instead of today")
}

func printRunSummary(r *pipeline.Result) {
	fmt.Printf("\nFeed: %d items", r.TotalItems)
	if r.Wrote {
		fmt.Print(" (written)")
	} else if r.NoChange {
		fmt.Print(" (unchanged)")
	}
	fmt.Println()

	if len(r.PerCategory) > 0 {
		fmt.Println("\nBy category:")
		for _, k := range sortedKeys(r.PerCategory) {
			fmt.Printf("  %s: %d\n", k, r.PerCategory[k])
		}
	}

	if len(r.Drops) > 0 || r.Duplicates > 0 {
		fmt.Println("\nDropped:")
		for _, k := range sortedKeys(r.Drops) {
			fmt.Printf("  %s: %d\n", k, r.Drops[k])
		}
	}

	if len(r.Unavailable) > 0 {
		fmt.Printf("\nWarning: unavailable sources: %s\n", strings.Join(r.Unavailable, ", "))
	}

	if len(r.Top) > 0 {
		fmt.Printf("\nTop %d:\n", len(r.Top))
		for i, item := range r.Top {
			fmt.Printf("  %2d. %-6.0f %s", i+1, item.QualityScore, item.Title)
			if item.Deadline != "" {
				fmt.Printf("  (截止 %s)", item.Deadline)
			}
			fmt.Println()
			if len(item.RankReasons) > 0 {
				fmt.Printf("      %s\n", strings.Join(item.RankReasons, ", "))
			}
		}
	}
}

// --- fetch command ---

var dumpRecords bool

var fetchCmd = &cobra.Command{
	Use:   "fetch [source]",
	Short: "Run the source adapters only (all, or one by name)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		collector := source.NewCollector(cfg)

		if len(args) == 1 {
			return fetchOne(collector, args[0])
		}

		result := collector.Collect(context.Background())
		fmt.Printf("Fetched %d records total\n", len(result.Records))
		for _, name := range sortedKeys(result.PerSource) {
			fmt.Printf("  %s: %d\n", name, result.PerSource[name])
		}
		for _, name := range failureNames(result.Failures) {
			fmt.Printf("  %s: unavailable (%v)\n", name, result.Failures[name])
		}
		if dumpRecords {
			pp.Println(result.Records)
		}
		return nil
	},
}

func fetchOne(collector *source.Collector, name string) error {
	for _, s := range collector.Sources() {
		if !strings.EqualFold(s.Name(), name) {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), collector.Timeout())
		defer cancel()

		records, err := s.Fetch(ctx)
		if err != nil {
			return fmt.Errorf("source %s: %w", s.Name(), err)
		}
		fmt.Printf("%s: %d records\n", s.Name(), len(records))
		if dumpRecords {
			pp.Println(records)
		}
		return nil
	}
	return fmt.Errorf("no enabled source named %q", name)
}

func init() {
	fetchCmd.Flags().BoolVar(&dumpRecords, "dump", false, "Pretty-print the raw records")
}

// --- status command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show feed summary and recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := feed.Load(cfg.Feed.Path)
		if err != nil {
			return err
		}

		if !loaded.Existed {
			fmt.Printf("No feed yet at %s. Run 'raceradar run' first.\n", cfg.Feed.Path)
		} else {
			doc := loaded.Doc
			fmt.Printf("Feed: %s\n", cfg.Feed.Path)
			fmt.Printf("  Items: %d\n", len(doc.Items))
			fmt.Printf("  Updated: %s\n", doc.UpdatedAt)

			perCategory := make(map[string]int)
			for i := range doc.Items {
				if len(doc.Items[i].Category) == 0 {
					perCategory[pipeline.UncategorizedLabel]++
					continue
				}
				for _, c := range doc.Items[i].Category {
					perCategory[c]++
				}
			}
			for _, k := range sortedKeys(perCategory) {
				fmt.Printf("  %s: %d\n", k, perCategory[k])
			}
		}

		db, err := history.Open(filepath.Join(cfg.GetDataDir(), "history.db"))
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer db.Close()

		runs, err := db.RecentRuns(5)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			return nil
		}

		fmt.Println("\nRecent runs:")
		for _, r := range runs {
			wrote := "no change"
			if r.Wrote {
				wrote = "wrote"
			}
			fmt.Printf("  %s  fetched %d, kept %d, total %d (%s", r.RanAt, r.Fetched, r.Kept, r.Total, wrote)
			if r.SourcesFailed != "" {
				fmt.Printf("; failed: %s", r.SourcesFailed)
			}
			fmt.Println(")")
		}
		return nil
	},
}

// --- whitelist command ---

var whitelistCmd = &cobra.Command{
	Use:   "whitelist",
	Short: "Inspect the competition whitelist",
}

var whitelistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the whitelist rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		wl, err := score.LoadWhitelist(cfg.ResolveWhitelistPath())
		if err != nil {
			return err
		}

		fmt.Printf("Rules (%d):\n", len(wl.Rules))
		for _, r := range wl.Rules {
			level := r.Level
			if level == "" {
				level = "-"
			}
			fmt.Printf("  %-30s weight %-4.0f %s\n", r.Pattern, r.Weight, level)
		}
		fmt.Printf("\nOfficial domains (%d):\n", len(wl.OfficialDomains))
		for _, d := range wl.OfficialDomains {
			fmt.Printf("  %s\n", d)
		}
		return nil
	},
}

var whitelistCheckCmd = &cobra.Command{
	Use:   "check <text>",
	Short: "Show which rule a title matches, if any",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wl, err := score.LoadWhitelist(cfg.ResolveWhitelistPath())
		if err != nil {
			return err
		}

		rec := feed.CompetitionRecord{Title: strings.Join(args, " ")}
		rule, ok := wl.Match(&rec)
		if !ok {
			fmt.Println("No rule matches.")
			return nil
		}
		fmt.Printf("Matched rule: %s (weight %.0f", rule.Pattern, rule.Weight)
		if rule.Level != "" {
			fmt.Printf(", %s", rule.Level)
		}
		fmt.Println(")")
		return nil
	},
}

func init() {
	whitelistCmd.AddCommand(whitelistListCmd)
	whitelistCmd.AddCommand(whitelistCheckCmd)
}

// --- preview command ---

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Regenerate digest.md and index.html from the current feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := feed.Load(cfg.Feed.Path)
		if err != nil {
			return err
		}
		if !loaded.Existed {
			return fmt.Errorf("no feed at %s; run 'raceradar run' first", cfg.Feed.Path)
		}

		builder := preview.New(cfg.Feed.TopN)
		if err := builder.Write(cfg.Feed.PreviewDir, loaded.Doc); err != nil {
			return err
		}
		fmt.Printf("Preview written to %s\n", cfg.Feed.PreviewDir)
		return nil
	},
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func failureNames(failures map[string]error) []string {
	names := make([]string, 0, len(failures))
	for name := range failures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
