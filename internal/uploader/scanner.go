package uploader

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/eusougabrielgadelha/charbot/internal/logging"
)

// Scanner finds uploadable files under the download root. A file qualifies
// when its extension matches, it has not been modified for stableAge, and it
// fits under the size limit. Partial downloads (.part) qualify for recovery
// after the longer partStableAge.
type Scanner struct {
	root          string
	extensions    map[string]bool
	stableAge     time.Duration
	partStableAge time.Duration
	maxBytes      int64
	logger        logging.Logger
}

// NewScanner builds a Scanner from the uploader options.
func NewScanner(root string, opts Options, logger logging.Logger) *Scanner {
	return &Scanner{
		root:          root,
		extensions:    extensionSet(opts.Extensions),
		stableAge:     opts.stableAge(),
		partStableAge: opts.partStableAge(),
		maxBytes:      opts.maxBytes(),
		logger:        logger,
	}
}

// Scan walks the root and returns stable regular files (oldest first) and
// stable partials awaiting recovery.
func (s *Scanner) Scan() (regular, partials []string) {
	type candidate struct {
		path  string
		mtime time.Time
	}
	var files []candidate
	now := time.Now()

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("Scan error", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		age := now.Sub(info.ModTime())

		if strings.HasSuffix(strings.ToLower(path), ".part") {
			if age >= s.partStableAge {
				partials = append(partials, path)
			}
			return nil
		}

		if !s.extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if age < s.stableAge {
			return nil
		}
		if s.maxBytes > 0 && info.Size() > s.maxBytes {
			s.logger.Warn("Skipping oversized file", "file", path, "bytes", info.Size())
			return nil
		}

		files = append(files, candidate{path: path, mtime: info.ModTime()})
		return nil
	})
	if err != nil {
		s.logger.Error("Scan failed", "root", s.root, "error", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].mtime.Before(files[j].mtime) })
	for _, f := range files {
		regular = append(regular, f.path)
	}
	sort.Strings(partials)
	return regular, partials
}

// Subdirs returns the root and its direct subdirectories, the set of paths
// the filesystem watcher needs.
func (s *Scanner) Subdirs() []string {
	dirs := []string{s.root}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return dirs
	}
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(s.root, e.Name()))
		}
	}
	return dirs
}
