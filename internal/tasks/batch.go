package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/qaren/internal/models"
	"github.com/desertthunder/qaren/internal/services"
	"github.com/desertthunder/qaren/internal/shared"
	"golang.org/x/time/rate"
)

const (
	DefaultWorkers   = 3
	MaxWorkers       = 10
	DefaultRateLimit = 2.0
)

// BatchOpts contains configuration for batch searches.
type BatchOpts struct {
	NumWorkers int     // Concurrent workers (default: 3, max: 10)
	RateLimit  float64 // Searches dispatched per second (default: 2)
}

// BatchResult is the outcome of one query in a batch.
type BatchResult struct {
	Index   int
	Query   models.SearchQuery
	Result  models.SearchResult
	Err     error
	Latency time.Duration
}

// Offers counts the entries of the payload's data array, or -1 when it has none.
func (r BatchResult) Offers() int {
	var body struct {
		Data []json.RawMessage `json:"data"`
	}
	if len(r.Result) == 0 || json.Unmarshal(r.Result, &body) != nil || body.Data == nil {
		return -1
	}
	return len(body.Data)
}

// BatchSummary holds every result in input order.
type BatchSummary struct {
	Results   []BatchResult
	Succeeded int
	Failed    int
}

type batchJob struct {
	index int
	query models.SearchQuery
}

// BatchSearch runs queries through searcher on a rate-limited worker pool.
//
// A failed search never aborts the batch. When ctx is cancelled, queries that were not
// dispatched yet are reported with the context error, and that error is returned alongside the summary.
func BatchSearch(
	ctx context.Context,
	searcher services.FlightSearcher,
	queries []models.SearchQuery,
	opts BatchOpts,
	prog chan<- ProgressUpdate,
) (*BatchSummary, error) {
	if searcher == nil {
		return nil, fmt.Errorf("%w: searcher not initialized", shared.ErrInvalidInput)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = DefaultWorkers
	}
	if opts.NumWorkers > MaxWorkers {
		opts.NumWorkers = MaxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}

	total := len(queries)
	summary := &BatchSummary{Results: make([]BatchResult, total)}
	dispatched := make([]bool, total)

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan batchJob)
	results := make(chan BatchResult, total)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go searchWorker(ctx, &wg, searcher, jobs, results)
	}

	go func() {
		defer close(jobs)
		for i, q := range queries {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- batchJob{index: i, query: q}:
				sendProgress(prog, dispatchedUpdate(i+1, total, q))
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		dispatched[res.Index] = true
		summary.Results[res.Index] = res
		if res.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
		sendProgress(prog, completedUpdate(completed, total, res))
	}

	if err := ctx.Err(); err != nil {
		for i, q := range queries {
			if dispatched[i] {
				continue
			}
			summary.Results[i] = BatchResult{Index: i, Query: q, Err: err}
			summary.Failed++
		}
		return summary, err
	}

	return summary, nil
}

// searchWorker is a worker goroutine that runs searches from the jobs channel.
func searchWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	searcher services.FlightSearcher,
	jobs <-chan batchJob,
	results chan<- BatchResult,
) {
	defer wg.Done()

	for job := range jobs {
		start := time.Now()
		result, err := searcher.Search(ctx, job.query)
		results <- BatchResult{
			Index:   job.index,
			Query:   job.query,
			Result:  result,
			Err:     err,
			Latency: time.Since(start),
		}
	}
}
