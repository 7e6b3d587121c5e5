package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/penwyp/go-runalyze/internal/core/model"
	"github.com/penwyp/go-runalyze/internal/data/extractor"
	"github.com/penwyp/go-runalyze/internal/util"
)

var yearInName = regexp.MustCompile(`(?:^|\D)((?:19|20)\d{2})(?:\D|$)`)

// Parser extracts activities from saved data browser pages.
type Parser struct {
	concurrency int
	options     []extractor.Option
	mu          sync.Mutex
	cache       map[string][]model.Activity
}

// ParseResult represents the result of parsing a single file.
type ParseResult struct {
	File       string
	Year       int
	Activities []model.Activity
	Error      error
}

// NewParser creates a new Parser instance. opts are passed to every extraction.
func NewParser(concurrency int, opts ...extractor.Option) *Parser {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Parser{
		concurrency: concurrency,
		options:     opts,
		cache:       make(map[string][]model.Activity),
	}
}

// YearFromName returns the four digit year in a report file name such as
// debug-2023.html, or 0 when there is none.
func YearFromName(path string) int {
	m := yearInName.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0
	}
	year, _ := strconv.Atoi(m[1])
	return year
}

// ParseFile extracts the activities of the page at path. Results are cached
// per path until Invalidate is called.
func (p *Parser) ParseFile(path string) ([]model.Activity, error) {
	p.mu.Lock()
	if cached, ok := p.cache[path]; ok {
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	util.LogDebug(fmt.Sprintf("Start parsing file: %s", path))

	file, err := os.Open(path)
	if err != nil {
		util.LogDebug(fmt.Sprintf("Failed to open file: %s - %v", path, err))
		return nil, err
	}
	defer file.Close()

	activities, err := extractor.ParseActivities(file, p.options...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	p.mu.Lock()
	p.cache[path] = activities
	p.mu.Unlock()

	util.LogDebug(fmt.Sprintf("Parsed %d activities from %s", len(activities), path))
	return activities, nil
}

// Invalidate drops the cached result of path.
func (p *Parser) Invalidate(path string) {
	p.mu.Lock()
	delete(p.cache, path)
	p.mu.Unlock()
}

// ParseFiles parses multiple files concurrently and returns a channel of ParseResult.
func (p *Parser) ParseFiles(files []string) <-chan ParseResult {
	start := time.Now()
	results := make(chan ParseResult, len(files))
	var wg sync.WaitGroup

	util.LogDebug(fmt.Sprintf("Start concurrent parsing of %d files, concurrency: %d", len(files), p.concurrency))

	semaphore := make(chan struct{}, p.concurrency)

	for _, file := range files {
		wg.Add(1)
		go func(f string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			fileStart := time.Now()
			activities, err := p.ParseFile(f)
			if err != nil {
				util.LogDebug(fmt.Sprintf("File parsing failed: %s, duration %v - %v", f, time.Since(fileStart), err))
			}

			results <- ParseResult{
				File:       f,
				Year:       YearFromName(f),
				Activities: activities,
				Error:      err,
			}
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
		util.LogDebug(fmt.Sprintf("Concurrent parsing finished, total duration: %v", time.Since(start)))
	}()

	return results
}
