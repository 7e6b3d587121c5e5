package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/penwyp/go-runalyze/internal/core/model"
	"github.com/penwyp/go-runalyze/internal/data/cache"
	"github.com/penwyp/go-runalyze/internal/data/extractor"
	"github.com/penwyp/go-runalyze/internal/runalyze"
	"github.com/penwyp/go-runalyze/internal/util"
	"golang.org/x/sync/errgroup"
)

// ReportSource downloads the data browser page of a year.
type ReportSource interface {
	FetchYear(ctx context.Context, year int, loc *time.Location) ([]byte, error)
}

// YearResult is the outcome of one year of a fetch run.
type YearResult struct {
	Year       int
	Activities int
	Fetched    bool
	Reason     cache.CacheMissReason
}

// Years returns the years of a fetch run, newest first. A zero ToYear means
// the current year.
func (a *Analyzer) Years() ([]int, error) {
	to := a.config.ToYear
	if to == 0 {
		to = util.GetTimeProvider().CurrentYear()
	}
	from := a.config.FromYear
	if from == 0 {
		from = to
	}
	if from > to {
		return nil, fmt.Errorf("first year %d is after last year %d", from, to)
	}

	years := make([]int, 0, to-from+1)
	for y := to; y >= from; y-- {
		years = append(years, y)
	}
	return years, nil
}

// Fetch brings every year's result file up to date, downloading only years
// whose file is missing or stale. The first failure cancels the run.
func (a *Analyzer) Fetch(ctx context.Context, source ReportSource) ([]YearResult, error) {
	years, err := a.Years()
	if err != nil {
		return nil, err
	}

	util.LogInfo(fmt.Sprintf("Fetching activities for %d..%d", years[len(years)-1], years[0]))

	stats := NewFetchStats()
	var mu sync.Mutex
	results := make([]YearResult, 0, len(years))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.Concurrency)

	for _, year := range years {
		stats.IncrementTotal()

		cached := a.store.Get(year)
		if cached.Found {
			stats.IncrementHit()
			stats.AddActivities(len(cached.Activities))
			util.LogDebug(fmt.Sprintf("Using result file for %d (%d activities)", year, len(cached.Activities)))
			mu.Lock()
			results = append(results, YearResult{Year: year, Activities: len(cached.Activities)})
			mu.Unlock()
			continue
		}

		stats.IncrementMiss(year, cached.MissReason)
		reason := cached.MissReason
		g.Go(func() error {
			activities, err := a.fetchYear(ctx, source, year)
			if err != nil {
				stats.IncrementFailure()
				return err
			}
			stats.AddActivities(len(activities))

			mu.Lock()
			results = append(results, YearResult{Year: year, Activities: len(activities), Fetched: true, Reason: reason})
			mu.Unlock()
			return nil
		})
	}

	err = g.Wait()
	stats.PrintFinalStats()

	sort.Slice(results, func(i, j int) bool { return results[i].Year > results[j].Year })
	return results, err
}

func (a *Analyzer) fetchYear(ctx context.Context, source ReportSource, year int) ([]model.Activity, error) {
	start := time.Now()
	body, err := source.FetchYear(ctx, year, a.location)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %d: %w", year, err)
	}

	if a.config.SaveHTML {
		if err := a.store.SaveRaw(year, body); err != nil {
			util.LogWarn(fmt.Sprintf("Failed to save page of %d: %v", year, err))
		}
	}

	activities, err := extractor.ParseActivities(bytes.NewReader(body))
	if err != nil {
		if errors.Is(err, extractor.ErrNoTable) {
			return nil, fmt.Errorf("no activity table in the page of %d, is the session cookie still valid: %w", year, err)
		}
		return nil, fmt.Errorf("failed to extract activities of %d: %w", year, err)
	}

	activities, err = runalyze.NormalizeDates(activities, model.FieldSetting, year, a.location)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize dates of %d: %w", year, err)
	}

	if err := a.store.Set(year, activities); err != nil {
		return nil, fmt.Errorf("failed to save activities of %d: %w", year, err)
	}

	util.LogInfo(fmt.Sprintf("Fetched %d activities for %d in %v", len(activities), year, time.Since(start).Round(time.Millisecond)))
	return activities, nil
}
