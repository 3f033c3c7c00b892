package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/eprogressing/race-radar/internal/config"
	"github.com/eprogressing/race-radar/internal/curate"
	"github.com/eprogressing/race-radar/internal/enrich"
	"github.com/eprogressing/race-radar/internal/feed"
	"github.com/eprogressing/race-radar/internal/history"
	"github.com/eprogressing/race-radar/internal/merge"
	"github.com/eprogressing/race-radar/internal/preview"
	"github.com/eprogressing/race-radar/internal/rank"
	"github.com/eprogressing/race-radar/internal/score"
	"github.com/eprogressing/race-radar/internal/source"
)

// ErrNoUsableData is returned when no source produced anything and there is
// no prior feed to fall back on. It is one of the two fatal conditions; the
// other is a failed write. In both cases the feed on disk stays untouched.
var ErrNoUsableData = errors.New("every source failed and no prior feed exists")

// UncategorizedLabel buckets items without a category in the per-category
// distribution.
const UncategorizedLabel = "未分类"

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run, including the counters
// the command layer reports.
type Result struct {
	Steps []StepResult

	TotalItems  int
	PerCategory map[string]int
	Drops       map[string]int
	Duplicates  int
	Unavailable []string
	Top         []feed.CompetitionRecord
	Wrote       bool
	NoChange    bool
}

// RunOptions control one pipeline invocation.
type RunOptions struct {
	Now    time.Time // evaluation time; zero means current UTC time
	DryRun bool      // execute every stage but write and record nothing
}

// Pipeline orchestrates the 8-step feed build: fetch, curate, enrich,
// score, rank, merge, write, record.
type Pipeline struct {
	cfg        *config.Config
	collector  *source.Collector
	curator    *curate.Curator
	classifier *score.Classifier
	scorer     *score.Scorer
	enricher   *enrich.Enricher
	merger     *merge.Merger
	previewer  *preview.Builder
}

// New wires a pipeline from the config. Loading the whitelist is the only
// step that can fail here.
func New(cfg *config.Config) (*Pipeline, error) {
	wl, err := score.LoadWhitelist(cfg.ResolveWhitelistPath())
	if err != nil {
		return nil, fmt.Errorf("loading whitelist: %w", err)
	}

	classifier := score.NewClassifier(wl)
	scorer := score.NewScorer(cfg, wl)

	return &Pipeline{
		cfg:        cfg,
		collector:  source.NewCollector(cfg),
		curator:    curate.NewCurator(cfg.Curation.TitleRejectPatterns),
		classifier: classifier,
		scorer:     scorer,
		enricher:   enrich.New(cfg.Enrich),
		merger:     merge.New(classifier, scorer, cfg.Curation.MaxExpiredDays),
		previewer:  preview.New(cfg.Feed.TopN),
	}, nil
}

// Run executes the full pipeline against the prior feed on disk. The
// returned error is non-nil only for the fatal conditions; per-source and
// per-record failures are absorbed into the result.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	started := time.Now()
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	r := &Result{
		PerCategory: make(map[string]int),
		Drops:       make(map[string]int),
	}

	prior, err := feed.Load(p.cfg.Feed.Path)
	if err != nil {
		return r, fmt.Errorf("loading prior feed: %w", err)
	}

	// Step 1: Fetch
	log.Println("Step 1/8: Fetching sources...")
	collected := p.collector.Collect(ctx)
	for name := range collected.Failures {
		r.Unavailable = append(r.Unavailable, name)
	}
	sort.Strings(r.Unavailable)
	r.Steps = append(r.Steps, StepResult{
		Name: "Fetch",
		Summary: fmt.Sprintf("%d records from %d sources (%d unavailable)",
			len(collected.Records), collected.Succeeded(), len(collected.Failures)),
	})

	if len(collected.Records) == 0 && (!prior.Existed || len(prior.Doc.Items) == 0) {
		return r, ErrNoUsableData
	}
	if p.cfg.Fetch.RequireSourceSuccess && collected.Succeeded() == 0 {
		return r, fmt.Errorf("no source succeeded: %w", ErrNoUsableData)
	}

	// Step 2: Curate — normalize, screen titles, collapse duplicates, drop
	// records already past the retention window.
	log.Println("Step 2/8: Curating records...")
	curated := p.curator.Run(collected.Records, now)
	kept, expired := curate.FilterExpired(curated.Kept, now, p.cfg.Curation.MaxExpiredDays, p.scorer.IsWhitelisted)
	for reason, n := range curated.CountByReason() {
		r.Drops[reason] += n
	}
	r.Drops[curate.ReasonExpired] += len(expired)
	r.Duplicates = curated.Duplicates
	r.Steps = append(r.Steps, StepResult{
		Name: "Curate",
		Summary: fmt.Sprintf("%d kept, %d dropped, %d duplicates collapsed",
			len(kept), len(curated.Dropped)+len(expired), curated.Duplicates),
	})

	// Step 3: Enrich
	if p.cfg.Enrich.Enabled {
		log.Println("Step 3/8: Enriching summaries...")
		enriched := p.enricher.Run(ctx, kept)
		r.Steps = append(r.Steps, StepResult{
			Name:    "Enrich",
			Summary: fmt.Sprintf("%d summaries back-filled, %d failed", enriched.Enriched, enriched.Failed),
		})
	} else {
		r.Steps = append(r.Steps, StepResult{Name: "Enrich", Summary: "disabled"})
	}

	// Step 4: Score
	log.Println("Step 4/8: Scoring records...")
	for i := range kept {
		p.classifier.Classify(&kept[i])
		p.scorer.Apply(&kept[i], now)
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Score",
		Summary: fmt.Sprintf("%d records classified and scored", len(kept)),
	})

	// Step 5: Rank
	log.Println("Step 5/8: Ranking...")
	rank.Sort(kept)
	r.Steps = append(r.Steps, StepResult{Name: "Rank", Summary: rankSummary(kept)})

	// Step 6: Merge
	log.Println("Step 6/8: Merging with prior feed...")
	merged, stats := p.merger.Merge(prior.Doc.Items, kept, now)
	r.Drops[curate.ReasonExpired] += len(stats.Expired)
	if stats.Duplicates > 0 {
		r.Duplicates += stats.Duplicates
		r.Drops[curate.ReasonDuplicate] += stats.Duplicates
	}
	r.NoChange = stats.NoChange
	r.TotalItems = len(merged)
	countCategories(merged, r.PerCategory)
	r.Top = topRecords(merged, p.cfg.Feed.TopN)
	r.Steps = append(r.Steps, StepResult{
		Name: "Merge",
		Summary: fmt.Sprintf("%d items (%d new, %d refreshed, %d retained, %d aged out)",
			len(merged), stats.New, stats.Refreshed, stats.Retained, len(stats.Expired)),
	})

	// Step 7: Write
	log.Println("Step 7/8: Writing feed...")
	writeStep, wrote, err := p.write(prior, merged, now, opts.DryRun)
	r.Steps = append(r.Steps, writeStep)
	r.Wrote = wrote
	if err != nil {
		return r, err
	}

	// Step 8: Record
	if opts.DryRun {
		r.Steps = append(r.Steps, StepResult{Name: "Record", Summary: "[dry-run] not recorded"})
		return r, nil
	}
	log.Println("Step 8/8: Recording run report...")
	r.Steps = append(r.Steps, p.record(r, collected, stats, len(kept), now, time.Since(started)))

	return r, nil
}

// write persists the merged feed and regenerates the preview. Nothing is
// touched when the content did not change or in dry-run mode.
func (p *Pipeline) write(prior *feed.LoadResult, merged []feed.CompetitionRecord, now time.Time, dryRun bool) (StepResult, bool, error) {
	if dryRun {
		summary := "[dry-run] feed unchanged"
		if !sameItems(prior, merged) {
			summary = fmt.Sprintf("[dry-run] would write %d items to %s", len(merged), p.cfg.Feed.Path)
		}
		return StepResult{Name: "Write", Summary: summary}, false, nil
	}

	if sameItems(prior, merged) {
		return StepResult{Name: "Write", Summary: "feed unchanged, nothing written"}, false, nil
	}

	doc := &feed.FeedDocument{
		Version:   feed.SchemaVersion,
		UpdatedAt: feed.NextUpdatedAt(prior.Doc.UpdatedAt, now),
		Items:     merged,
	}
	if err := feed.Write(p.cfg.Feed.Path, doc); err != nil {
		return StepResult{Name: "Write", Err: err}, false, fmt.Errorf("writing feed: %w", err)
	}

	if p.cfg.Feed.PreviewDir != "" {
		if err := p.previewer.Write(p.cfg.Feed.PreviewDir, doc); err != nil {
			log.Printf("Warning: preview not updated: %v", err)
		}
	}

	return StepResult{
		Name:    "Write",
		Summary: fmt.Sprintf("%d items written to %s", len(merged), p.cfg.Feed.Path),
	}, true, nil
}

// record stores the run report. History failures are warnings only.
func (p *Pipeline) record(r *Result, collected *source.Result, stats *merge.Stats, kept int, now time.Time, elapsed time.Duration) StepResult {
	report := &history.RunReport{
		EvaluatedFor:     feed.DateOnly(now).Format(feed.DateFormat),
		Fetched:          len(collected.Records),
		Kept:             kept,
		Total:            r.TotalItems,
		New:              stats.New,
		Refreshed:        stats.Refreshed,
		Retained:         stats.Retained,
		DroppedMalformed: r.Drops[curate.ReasonMalformed],
		DroppedBadTitle:  r.Drops[curate.ReasonBadTitle],
		DroppedExpired:   r.Drops[curate.ReasonExpired],
		Duplicates:       r.Duplicates,
		SourcesOK:        collected.Succeeded(),
		SourcesFailed:    strings.Join(r.Unavailable, ","),
		Wrote:            r.Wrote,
		DurationMs:       elapsed.Milliseconds(),
	}

	db, err := history.Open(filepath.Join(p.cfg.GetDataDir(), "history.db"))
	if err != nil {
		log.Printf("Warning: run not recorded: %v", err)
		return StepResult{Name: "Record", Summary: "skipped: " + err.Error()}
	}
	defer db.Close()

	if err := db.InsertRun(report); err != nil {
		log.Printf("Warning: run not recorded: %v", err)
		return StepResult{Name: "Record", Summary: "skipped: " + err.Error()}
	}
	return StepResult{Name: "Record", Summary: "run report stored"}
}

// sameItems reports whether writing merged would leave the feed on disk
// with the same content it already has.
func sameItems(prior *feed.LoadResult, merged []feed.CompetitionRecord) bool {
	if !prior.Existed {
		return false
	}
	if len(prior.Doc.Items) != len(merged) {
		return false
	}
	next, err := feed.Marshal(&feed.FeedDocument{
		Version:   prior.Doc.Version,
		UpdatedAt: prior.Doc.UpdatedAt,
		Items:     merged,
	})
	if err != nil {
		return false
	}
	old, err := feed.Marshal(prior.Doc)
	if err != nil {
		return false
	}
	return string(next) == string(old)
}

func countCategories(records []feed.CompetitionRecord, into map[string]int) {
	for i := range records {
		if len(records[i].Category) == 0 {
			into[UncategorizedLabel]++
			continue
		}
		for _, c := range records[i].Category {
			into[c]++
		}
	}
}

func topRecords(records []feed.CompetitionRecord, n int) []feed.CompetitionRecord {
	if n <= 0 || n > len(records) {
		n = len(records)
	}
	top := make([]feed.CompetitionRecord, n)
	for i := 0; i < n; i++ {
		top[i] = records[i].Clone()
	}
	return top
}

func rankSummary(records []feed.CompetitionRecord) string {
	if len(records) == 0 {
		return "nothing to rank"
	}
	return fmt.Sprintf("%d records ranked, top: %s (%.0f)",
		len(records), records[0].Title, records[0].QualityScore)
}
