package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// defaultIgnoredNames are directory and file names skipped when a directory is
// expanded into files. They match a whole path element only.
var defaultIgnoredNames = []string{
	".git",
	".svn",
	".idea",
	".vscode",
	".cache",
	"node_modules",
	"bin",
	"obj",
	"dist",
}

// defaultIgnoredSuffixes match the end of a path element, e.g. "*.log".
var defaultIgnoredSuffixes = []string{
	"*.tmp",
	"*.swp",
	"*~",
	"*.exe",
	"*.dll",
	"*.so",
	"*.log",
	"*.bak",
	"*.bkp",
	"*.jpg",
	"*.jpeg",
	"*.png",
	"*.gif",
	"*.mp3",
	"*.mp4",
}

// IsDefaultIgnored reports whether any element of path is an ignored name or
// ends with an ignored suffix.
func IsDefaultIgnored(path string) bool {
	parts := strings.Split(filepath.ToSlash(path), "/")

	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			continue
		}
		part = strings.ToLower(part)
		for _, name := range defaultIgnoredNames {
			if part == name {
				return true
			}
		}
		for _, pattern := range defaultIgnoredSuffixes {
			if strings.HasSuffix(part, strings.TrimPrefix(pattern, "*")) {
				return true
			}
		}
	}
	return false
}

// ExpandPaths turns the given files and directories into a sorted, de-duplicated
// list of regular files. Directories are walked once; files named explicitly are
// always kept, even when they match an ignore pattern.
func ExpandPaths(fs afero.Fs, paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	add := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, root := range paths {
		info, err := fs.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		err = afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return relErr
			}
			if rel != "." && IsDefaultIgnored(rel) {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if info.Mode().IsRegular() {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}
