// Package cache keeps one JSON result file per year of activities.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-runalyze/internal/core/model"
	"github.com/penwyp/go-runalyze/internal/util"
)

type CacheMissReason int

const (
	MissReasonNone CacheMissReason = iota
	MissReasonError
	MissReasonNotFound
	MissReasonStale
)

func (r CacheMissReason) String() string {
	switch r {
	case MissReasonNone:
		return "none"
	case MissReasonError:
		return "result file unreadable"
	case MissReasonNotFound:
		return "result file not found"
	case MissReasonStale:
		return "result file older than max age"
	default:
		return "unknown reason"
	}
}

type CacheResult struct {
	Activities []model.Activity
	Found      bool
	MissReason CacheMissReason
}

type Cache interface {
	Get(year int) CacheResult
	Set(year int, activities []model.Activity) error
	Years() ([]int, error)
	Clear() error
}

var resultFilePattern = regexp.MustCompile(`^activities-(\d{4})\.json$`)

// yearEntry is a decoded result file and the file state it was read from.
type yearEntry struct {
	activities []model.Activity
	info       util.FileInfo
}

// YearStore stores activities-YYYY.json files in baseDir. Files of past
// years never expire; the current year's file expires after maxAge.
type YearStore struct {
	baseDir     string
	maxAge      time.Duration
	currentYear func() int
	mu          sync.RWMutex
	memoryCache map[int]yearEntry
}

func NewYearStore(baseDir string, maxAge time.Duration) (*YearStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &YearStore{
		baseDir:     baseDir,
		maxAge:      maxAge,
		currentYear: util.GetTimeProvider().CurrentYear,
		memoryCache: make(map[int]yearEntry),
	}, nil
}

// Path returns the result file of year.
func (s *YearStore) Path(year int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("activities-%d.json", year))
}

// RawPath returns where the downloaded page of year is kept for debugging.
func (s *YearStore) RawPath(year int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("debug-%d.html", year))
}

// Validate reports whether year has a usable result file.
func (s *YearStore) Validate(year int) CacheMissReason {
	info, err := util.GetFileInfo(s.Path(year))
	if err != nil {
		if os.IsNotExist(err) {
			return MissReasonNotFound
		}
		util.LogDebug(fmt.Sprintf("Result file check failed for %d: %v", year, err))
		return MissReasonError
	}

	if year >= s.currentYear() && s.maxAge > 0 && info.Age() > s.maxAge {
		util.LogDebug(fmt.Sprintf("Result file for %d is %v old (max %v)", year, info.Age().Round(time.Second), s.maxAge))
		return MissReasonStale
	}
	return MissReasonNone
}

// Get returns year's activities when its result file is present and fresh.
func (s *YearStore) Get(year int) CacheResult {
	if reason := s.Validate(year); reason != MissReasonNone {
		s.mu.Lock()
		delete(s.memoryCache, year)
		s.mu.Unlock()
		return CacheResult{MissReason: reason}
	}

	activities, err := s.Load(year)
	if err != nil {
		util.LogWarn(fmt.Sprintf("Failed to read result file for %d: %v", year, err))
		return CacheResult{MissReason: MissReasonError}
	}
	return CacheResult{Activities: activities, Found: true, MissReason: MissReasonNone}
}

// Load reads year's result file regardless of its age. A decoded file is
// kept in memory until its inode, size or modification time changes.
func (s *YearStore) Load(year int) ([]model.Activity, error) {
	path := s.Path(year)
	info, err := util.GetFileInfo(path)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	cached, ok := s.memoryCache[year]
	s.mu.RUnlock()
	if ok && cached.info == *info {
		return cached.activities, nil
	}
	if ok {
		util.LogDebug(fmt.Sprintf("Result file for %d changed on disk (%s)", year, changeReason(cached.info, *info)))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var activities []model.Activity
	if err := sonic.Unmarshal(data, &activities); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	s.mu.Lock()
	s.memoryCache[year] = yearEntry{activities: activities, info: *info}
	s.mu.Unlock()
	return activities, nil
}

func changeReason(old, cur util.FileInfo) string {
	switch {
	case old.Inode != cur.Inode:
		return "inode changed"
	case old.Size != cur.Size:
		return "size changed"
	default:
		return "modification time changed"
	}
}

// Set writes year's result file. Keys are sorted so the same activities
// always produce the same bytes.
func (s *YearStore) Set(year int, activities []model.Activity) error {
	if activities == nil {
		activities = []model.Activity{}
	}
	data, err := sonic.ConfigStd.Marshal(activities)
	if err != nil {
		return fmt.Errorf("failed to encode activities for %d: %w", year, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFileAtomic(s.Path(year), data); err != nil {
		return err
	}
	if info, err := util.GetFileInfo(s.Path(year)); err == nil {
		s.memoryCache[year] = yearEntry{activities: activities, info: *info}
	} else {
		delete(s.memoryCache, year)
	}
	return nil
}

// SaveRaw keeps the downloaded page of year next to its result file.
func (s *YearStore) SaveRaw(year int, body []byte) error {
	return writeFileAtomic(s.RawPath(year), body)
}

// Years lists the years that have a result file, ascending.
func (s *YearStore) Years() ([]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	var years []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := resultFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		year, _ := strconv.Atoi(m[1])
		years = append(years, year)
	}
	sort.Ints(years)
	return years, nil
}

// LoadAll concatenates every result file in year order.
func (s *YearStore) LoadAll() ([]model.Activity, error) {
	years, err := s.Years()
	if err != nil {
		return nil, err
	}

	var all []model.Activity
	for _, year := range years {
		activities, err := s.Load(year)
		if err != nil {
			return nil, err
		}
		all = append(all, activities...)
	}
	util.LogDebug(fmt.Sprintf("Loaded %d activities from %d result files", len(all), len(years)))
	return all, nil
}

// Clear removes every result file and empties the memory cache.
func (s *YearStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memoryCache = make(map[int]yearEntry)

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() && resultFilePattern.MatchString(entry.Name()) {
			if err := os.Remove(filepath.Join(s.baseDir, entry.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
