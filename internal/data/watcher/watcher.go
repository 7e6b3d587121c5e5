package watcher

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/penwyp/go-runalyze/internal/util"
)

// FileEvent is a change to a watched report page.
type FileEvent struct {
	Path      string
	Operation string
	Removed   bool
}

// FileWatcher reports changes of matching files under a set of directories.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	paths   []string
	match   func(path string) bool
	events  chan FileEvent
	done    chan struct{}
}

// NewFileWatcher watches paths recursively and emits events for files
// accepted by match.
func NewFileWatcher(paths []string, match func(path string) bool) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		watcher: watcher,
		paths:   paths,
		match:   match,
		events:  make(chan FileEvent, 100),
		done:    make(chan struct{}),
	}

	for _, path := range paths {
		if err := fw.addPath(path); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	go fw.processEvents()

	return fw, nil
}

func (fw *FileWatcher) addPath(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		if info.IsDir() {
			return fw.watcher.Add(p)
		}

		return nil
	})
}

func (fw *FileWatcher) processEvents() {
	defer close(fw.events)

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.addPath(event.Name); err != nil {
						util.LogWarn("Failed to watch new directory " + event.Name + ": " + err.Error())
					}
					continue
				}
			}

			if !fw.match(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}

			fileEvent := FileEvent{
				Path:      event.Name,
				Operation: event.Op.String(),
				Removed:   event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename),
			}
			select {
			case fw.events <- fileEvent:
			case <-fw.done:
				return
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("File monitoring error: " + err.Error())

		case <-fw.done:
			return
		}
	}
}

// Events is closed once the watcher is closed.
func (fw *FileWatcher) Events() <-chan FileEvent {
	return fw.events
}

func (fw *FileWatcher) Close() error {
	close(fw.done)
	return fw.watcher.Close()
}
