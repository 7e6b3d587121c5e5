package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/penwyp/go-runalyze/internal/util"
)

// FileScanner finds saved data browser pages under a directory
type FileScanner struct {
	baseDir    string
	extensions []string
}

// NewFileScanner creates a scanner matching .html and .htm files
func NewFileScanner(baseDir string) *FileScanner {
	return &FileScanner{
		baseDir:    baseDir,
		extensions: []string{".html", ".htm"},
	}
}

// Matches reports whether path has one of the scanned extensions
func (s *FileScanner) Matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range s.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Scan walks the directory and returns the sorted paths of every report page
func (s *FileScanner) Scan() ([]string, error) {
	start := time.Now()
	var files []string
	dirCount := 0
	totalCount := 0

	util.LogDebug(fmt.Sprintf("Start scanning directory: %s", s.baseDir))

	err := filepath.Walk(s.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			util.LogDebug(fmt.Sprintf("Skip file (error): %s - %v", path, err))
			return nil
		}

		if info.IsDir() {
			dirCount++
			return nil
		}

		totalCount++
		if s.Matches(path) {
			files = append(files, path)
		}

		return nil
	})

	sort.Strings(files)

	util.LogDebug(fmt.Sprintf("File scan completed: duration %v, scanned %d directories, %d files, found %d HTML files",
		time.Since(start), dirCount, totalCount, len(files)))

	return files, err
}
