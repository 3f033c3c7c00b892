package source

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/eprogressing/race-radar/internal/config"
)

// Result holds the outcome of one collection pass.
type Result struct {
	Records   []Record
	PerSource map[string]int
	Failures  map[string]error
}

// Succeeded counts sources that produced at least one record.
func (r *Result) Succeeded() int {
	n := 0
	for _, c := range r.PerSource {
		if c > 0 {
			n++
		}
	}
	return n
}

// Collector fetches all enabled sources concurrently, each under its own
// timeout. A failing source is reported in the result and never disturbs
// the others.
type Collector struct {
	sources []Source
	timeout time.Duration
}

// NewCollector builds a collector from the configured sources. Entries
// with an unknown type are skipped with a log line.
func NewCollector(cfg *config.Config) *Collector {
	timeout := time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	var sources []Source
	for _, sc := range cfg.Sources {
		if !sc.IsEnabled() {
			continue
		}
		s, err := New(sc)
		if err != nil {
			log.Printf("Skipping source %s: %v", sc.Name, err)
			continue
		}
		sources = append(sources, s)
	}

	return &Collector{sources: sources, timeout: timeout}
}

// Sources returns the instantiated adapters.
func (c *Collector) Sources() []Source {
	return c.sources
}

// Timeout returns the effective per-source timeout.
func (c *Collector) Timeout() time.Duration {
	return c.timeout
}

// Collect runs every adapter and gathers records in config order, so the
// combined result does not depend on goroutine scheduling.
func (c *Collector) Collect(ctx context.Context) *Result {
	r := &Result{
		PerSource: make(map[string]int),
		Failures:  make(map[string]error),
	}

	perSource := make([][]Record, len(c.sources))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i, s := range c.sources {
		wg.Add(1)
		go func(i int, s Source) {
			defer wg.Done()

			sctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			records, err := s.Fetch(sctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("Source %s unavailable: %v", s.Name(), err)
				r.Failures[s.Name()] = err
				return
			}
			perSource[i] = records
			r.PerSource[s.Name()] = len(records)
			log.Printf("Fetched %d records from %s", len(records), s.Name())
		}(i, s)
	}
	wg.Wait()

	for _, records := range perSource {
		r.Records = append(r.Records, records...)
	}
	return r
}
