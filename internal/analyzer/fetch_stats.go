package analyzer

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/penwyp/go-runalyze/internal/data/cache"
	"github.com/penwyp/go-runalyze/internal/util"
)

// FetchStats counts which years came from result files and which were fetched
type FetchStats struct {
	totalYears  int64
	cacheHits   int64
	cacheMisses int64
	failures    int64
	activities  int64
	mu          sync.Mutex
	missDetails []MissDetail
}

// MissDetail records why a year had to be fetched
type MissDetail struct {
	Year   int
	Reason cache.CacheMissReason
}

func NewFetchStats() *FetchStats {
	return &FetchStats{
		missDetails: make([]MissDetail, 0),
	}
}

func (fs *FetchStats) IncrementTotal() {
	atomic.AddInt64(&fs.totalYears, 1)
}

func (fs *FetchStats) IncrementHit() {
	atomic.AddInt64(&fs.cacheHits, 1)
}

// IncrementMiss increases the miss count and records the reason
func (fs *FetchStats) IncrementMiss(year int, reason cache.CacheMissReason) {
	atomic.AddInt64(&fs.cacheMisses, 1)

	fs.mu.Lock()
	fs.missDetails = append(fs.missDetails, MissDetail{Year: year, Reason: reason})
	fs.mu.Unlock()
}

func (fs *FetchStats) IncrementFailure() {
	atomic.AddInt64(&fs.failures, 1)
}

// AddActivities adds n to the number of activities seen
func (fs *FetchStats) AddActivities(n int) {
	atomic.AddInt64(&fs.activities, int64(n))
}

// GetStats returns the current statistics and hit rate
func (fs *FetchStats) GetStats() (total, hits, misses, failures int64, hitRate float64) {
	total = atomic.LoadInt64(&fs.totalYears)
	hits = atomic.LoadInt64(&fs.cacheHits)
	misses = atomic.LoadInt64(&fs.cacheMisses)
	failures = atomic.LoadInt64(&fs.failures)

	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	return
}

// Misses returns the recorded misses ordered by year
func (fs *FetchStats) Misses() []MissDetail {
	fs.mu.Lock()
	out := make([]MissDetail, len(fs.missDetails))
	copy(out, fs.missDetails)
	fs.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// PrintFinalStats logs the totals and a summary of miss reasons
func (fs *FetchStats) PrintFinalStats() {
	total, hits, misses, failures, hitRate := fs.GetStats()

	util.LogInfo(fmt.Sprintf("Fetch complete: %d years, %d activities, result file hit rate %.1f%% (%d hits/%d fetched/%d failures)",
		total, atomic.LoadInt64(&fs.activities), hitRate, hits, misses, failures))

	if misses > 0 {
		reasonCounts := make(map[cache.CacheMissReason]int)
		for _, detail := range fs.Misses() {
			util.LogDebug(fmt.Sprintf("  %d (%s)", detail.Year, detail.Reason))
			reasonCounts[detail.Reason]++
		}

		util.LogInfo("Fetch reason summary:")
		for reason, count := range reasonCounts {
			util.LogInfo(fmt.Sprintf("  %s: %d years", reason, count))
		}
	}
}
