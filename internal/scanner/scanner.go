// Package scanner discovers IR input files under a directory root. It
// walks the tree for .ll files, skipping hidden entries, common build
// directories, and anything matched by a .ifqignore file with
// gitignore-style patterns.
package scanner

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// IRExtension is the only input format the analyzer accepts.
const IRExtension = ".ll"

// FileInfo describes one discovered IR file.
type FileInfo struct {
	Path     string // relative to the scan root, forward slashes
	FullPath string // absolute path
	Size     int64
}

// Options configures scanning behavior.
type Options struct {
	SkipHidden      bool
	DefaultExcludes []string
	IgnoreFileName  string
}

// DefaultOptions returns the scanner defaults.
func DefaultOptions() Options {
	return Options{
		SkipHidden:     true,
		IgnoreFileName: ".ifqignore",
		DefaultExcludes: []string{
			".git",
			".hg",
			".svn",
			"build",
			"dist",
			"node_modules",
			"vendor",
			"CMakeFiles",
		},
	}
}

// Scanner walks a directory tree collecting IR files.
type Scanner struct {
	opts Options
}

// New creates a Scanner with the given options.
func New(opts Options) *Scanner {
	return &Scanner{opts: opts}
}

// Scan walks root and returns every .ll file found, sorted by relative
// path so runs over the same tree are deterministic. A missing or
// unreadable root is the one fatal condition; errors on individual
// entries are skipped.
func (s *Scanner) Scan(root string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("checking root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", absRoot)
	}

	patterns := s.loadIgnorePatterns(absRoot)

	var files []FileInfo
	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries, keep walking
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil || relPath == "." {
			return nil
		}
		relSlash := filepath.ToSlash(relPath)

		if s.opts.SkipHidden && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if s.isExcluded(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.EqualFold(filepath.Ext(path), IRExtension) {
			return nil
		}
		if matchesIgnore(relSlash, patterns) {
			return nil
		}

		files = append(files, FileInfo{
			Path:     relSlash,
			FullPath: path,
			Size:     info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", absRoot, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (s *Scanner) isExcluded(name string) bool {
	for _, exclude := range s.opts.DefaultExcludes {
		if strings.EqualFold(name, exclude) {
			return true
		}
	}
	return false
}

// loadIgnorePatterns reads the ignore file at the scan root. A missing
// file means no patterns.
func (s *Scanner) loadIgnorePatterns(root string) []ignorePattern {
	f, err := os.Open(filepath.Join(root, s.opts.IgnoreFileName))
	if err != nil {
		return nil
	}
	defer f.Close()

	var patterns []ignorePattern
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, parseIgnorePattern(line))
	}
	return patterns
}

// Scan walks root with default options.
func Scan(root string) ([]FileInfo, error) {
	return New(DefaultOptions()).Scan(root)
}
