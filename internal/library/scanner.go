package library

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"github.com/llehouerou/undertow/internal/db"
	"github.com/llehouerou/undertow/internal/tags"
	"github.com/llehouerou/undertow/internal/track"
)

const numWorkers = 8

// ScanStats holds statistics for a completed scan.
type ScanStats struct {
	Scanned int
	Added   int
	Updated int
	Removed int
}

type fileInfo struct {
	path  string
	mtime int64
}

type trackResult struct {
	track *track.Track
	mtime int64
	isNew bool
}

// Refresh performs an incremental scan of the given source directories:
// files whose modification time matches the stored record are skipped,
// records for files gone from disk are removed.
func (l *Library) Refresh(sources []string) (*ScanStats, error) {
	return l.refresh(sources, false)
}

// FullRefresh rescans all files, ignoring modification times. Use this to
// pick up metadata changes that did not touch the file mtime.
func (l *Library) FullRefresh(sources []string) (*ScanStats, error) {
	return l.refresh(sources, true)
}

func (l *Library) refresh(sources []string, force bool) (*ScanStats, error) {
	stats := &ScanStats{}

	files := discoverFiles(sources)
	stats.Scanned = len(files)

	existing, err := l.existingMtimes(sources)
	if err != nil {
		return nil, err
	}

	var toProcess []fileInfo
	isNew := make(map[string]bool)
	for _, f := range files {
		if !force {
			if mtime, ok := existing[f.path]; ok && mtime == f.mtime {
				continue
			}
		}
		_, existed := existing[f.path]
		isNew[f.path] = !existed
		toProcess = append(toProcess, f)
	}

	if len(toProcess) > 0 {
		if err := l.processFiles(toProcess, isNew, stats); err != nil {
			return nil, err
		}
	}

	discovered := make(map[string]struct{}, len(files))
	for _, f := range files {
		discovered[f.path] = struct{}{}
	}
	for path := range existing {
		if _, ok := discovered[path]; !ok {
			if err := l.deleteTrackByPath(path); err != nil {
				return nil, err
			}
			stats.Removed++
		}
	}

	return stats, nil
}

// processFiles reads tags from changed files in parallel and stores the
// results in one transaction.
func (l *Library) processFiles(toProcess []fileInfo, isNew map[string]bool, stats *ScanStats) error {
	workCh := make(chan fileInfo, len(toProcess))
	resultCh := make(chan trackResult, len(toProcess))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Go(func() {
			for f := range workCh {
				t, err := tags.Read(f.path)
				if err != nil {
					continue
				}
				resultCh <- trackResult{track: t, mtime: f.mtime, isNew: isNew[f.path]}
			}
		})
	}

	go func() {
		for _, f := range toProcess {
			workCh <- f
		}
		close(workCh)
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var results []trackResult
	for r := range resultCh {
		results = append(results, r)
	}

	return db.WithTx(l.db, func(tx *sql.Tx) error {
		for _, r := range results {
			if err := upsert(tx, r.track, r.mtime); err != nil {
				return err
			}
			if r.isNew {
				stats.Added++
			} else {
				stats.Updated++
			}
		}
		return nil
	})
}

// discoverFiles walks the source directories and returns all music files.
// Walk errors are skipped so one unreadable directory does not abort the
// scan.
func discoverFiles(sources []string) []fileInfo {
	var files []fileInfo
	for _, src := range sources {
		_ = filepath.WalkDir(src, func(path string, d os.DirEntry, walkErr error) error {
			if walkErr != nil {
				return nil //nolint:nilerr // intentionally skipping errors
			}
			if d.IsDir() || !tags.IsMusicFile(path) {
				return nil
			}
			info, infoErr := d.Info()
			if infoErr != nil {
				return nil //nolint:nilerr // intentionally skipping errors
			}
			files = append(files, fileInfo{path: path, mtime: info.ModTime().Unix()})
			return nil
		})
	}
	return files
}
