// Package scanner finds definition files under a directory tree.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gnolang/skpat/syntax"
)

type FileInfo struct {
	Path   string
	Format syntax.Format
	Size   int64
}

type Scanner struct {
	rootDir string
}

func New(rootDir string) *Scanner {
	return &Scanner{rootDir: rootDir}
}

// Scan returns the definition files under the root, sorted by path. Hidden
// directories are skipped. A root that is itself a file is returned as is,
// whatever its extension, so that loading it reports the problem.
func (s *Scanner) Scan() ([]FileInfo, error) {
	info, err := os.Stat(s.rootDir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		format, _ := syntax.FormatOf(s.rootDir)
		return []FileInfo{{Path: s.rootDir, Format: format, Size: info.Size()}}, nil
	}

	var files []FileInfo
	err = filepath.WalkDir(s.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.rootDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		format, err := syntax.FormatOf(path)
		if err != nil {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{Path: path, Format: format, Size: fi.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
