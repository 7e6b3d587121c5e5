package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-runalyze/internal/core/model"
	"github.com/penwyp/go-runalyze/internal/data/parser"
	"github.com/penwyp/go-runalyze/internal/data/scanner"
	"github.com/penwyp/go-runalyze/internal/data/watcher"
	"github.com/penwyp/go-runalyze/internal/runalyze"
	"github.com/penwyp/go-runalyze/internal/util"
)

// MergedFileName is the file written by Merge inside the data directory.
const MergedFileName = "all_activities.json"

// ParseReports extracts the activities of saved data browser pages, in the
// order of files. When year is 0 the year is taken from each file name; dates
// of files without a year are left as they appear in the table.
func (a *Analyzer) ParseReports(files []string, year int) ([]model.Activity, error) {
	byFile := make(map[string]parser.ParseResult, len(files))
	for result := range a.parser.ParseFiles(files) {
		byFile[result.File] = result
	}

	var all []model.Activity
	for _, file := range files {
		result := byFile[file]
		if result.Error != nil {
			return nil, result.Error
		}

		activities, err := a.normalize(result.Activities, year, result.Year, file)
		if err != nil {
			return nil, err
		}
		all = append(all, activities...)
	}
	return all, nil
}

func (a *Analyzer) normalize(activities []model.Activity, year, fileYear int, file string) ([]model.Activity, error) {
	if year == 0 {
		year = fileYear
	}
	if year == 0 {
		util.LogDebug(fmt.Sprintf("No year for %s, keeping date cells as is", file))
		return activities, nil
	}

	normalized, err := runalyze.NormalizeDates(activities, model.FieldSetting, year, a.location)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return normalized, nil
}

// Merge concatenates every yearly result file into one JSON array and writes
// it to path, or to the data directory when path is empty.
func (a *Analyzer) Merge(path string) (string, int, error) {
	if path == "" {
		path = filepath.Join(a.config.DataDir, MergedFileName)
	}

	activities, err := a.store.LoadAll()
	if err != nil {
		return "", 0, fmt.Errorf("failed to load activities: %w", err)
	}
	if activities == nil {
		activities = []model.Activity{}
	}

	data, err := sonic.ConfigStd.Marshal(activities)
	if err != nil {
		return "", 0, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", 0, err
	}

	util.LogInfo(fmt.Sprintf("Merged %d activities into %s", len(activities), path))
	return path, len(activities), nil
}

// Sync parses every saved page of dir whose name carries a year and writes
// the year's result file.
func (a *Analyzer) Sync(dir string) (int, error) {
	files, err := scanner.NewFileScanner(dir).Scan()
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, file := range files {
		ok, err := a.syncFile(file)
		if err != nil {
			util.LogWarn(fmt.Sprintf("Failed to sync %s: %v", file, err))
			continue
		}
		if ok {
			synced++
		}
	}
	return synced, nil
}

func (a *Analyzer) syncFile(file string) (bool, error) {
	year := parser.YearFromName(file)
	if year == 0 {
		util.LogDebug(fmt.Sprintf("Skip %s: no year in file name", file))
		return false, nil
	}

	a.parser.Invalidate(file)
	activities, err := a.parser.ParseFile(file)
	if err != nil {
		return false, err
	}
	activities, err = a.normalize(activities, year, year, file)
	if err != nil {
		return false, err
	}
	if err := a.store.Set(year, activities); err != nil {
		return false, err
	}

	util.LogInfo(fmt.Sprintf("Synced %d activities of %d from %s", len(activities), year, file))
	return true, nil
}

// Watch syncs dir once, then again for every changed page until ctx is done.
// onSync is called after each sync attempt of a changed file.
func (a *Analyzer) Watch(ctx context.Context, dir string, onSync func(file string, err error)) error {
	if _, err := a.Sync(dir); err != nil {
		return err
	}

	fs := scanner.NewFileScanner(dir)
	fw, err := watcher.NewFileWatcher([]string{dir}, fs.Matches)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	defer fw.Close()

	util.LogInfo(fmt.Sprintf("Watching %s for report changes", dir))

	// Bursts of writes to one file are synced once.
	const settle = 200 * time.Millisecond
	pending := make(map[string]bool)
	timer := time.NewTimer(settle)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events():
			if !ok {
				return nil
			}
			if ev.Removed {
				a.parser.Invalidate(ev.Path)
				util.LogDebug(fmt.Sprintf("Report removed: %s", ev.Path))
				continue
			}
			pending[ev.Path] = true
			timer.Reset(settle)

		case <-timer.C:
			for file := range pending {
				_, err := a.syncFile(file)
				if err != nil {
					util.LogWarn(fmt.Sprintf("Failed to sync %s: %v", file, err))
				}
				if onSync != nil {
					onSync(file, err)
				}
			}
			pending = make(map[string]bool)
		}
	}
}
