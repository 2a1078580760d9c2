package repo

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFunc reports whether a repo-relative path should be excluded from
// working-tree scans. The engine treats it as an opaque predicate; pattern
// syntax is entirely the concern of whoever builds the function.
type IgnoreFunc func(path string) bool

// LoadIgnore builds the default ignore predicate for a repository root.
// It always excludes .grit/ and .git/, plus any patterns found in a
// .gritignore file at the root. Supported pattern forms:
//
//	name        matches any path component equal to name
//	name/       matches the directory name and everything under it
//	*.ext       glob matched against the path's base name
//	dir/sub     literal or glob matched against the full relative path
//	# comment   and blank lines are skipped
func LoadIgnore(root string) IgnoreFunc {
	patterns := []ignorePattern{
		{pattern: ".grit", dirOnly: true},
		{pattern: ".git", dirOnly: true},
	}

	f, err := os.Open(filepath.Join(root, ".gritignore"))
	if err == nil {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if p, ok := parseIgnoreLine(scanner.Text()); ok {
				patterns = append(patterns, p)
			}
		}
	}

	return func(path string) bool {
		path = filepath.ToSlash(path)
		for _, p := range patterns {
			if p.matches(path) {
				return true
			}
		}
		return false
	}
}

type ignorePattern struct {
	pattern  string
	dirOnly  bool
	hasSlash bool
}

func parseIgnoreLine(line string) (ignorePattern, bool) {
	line = strings.TrimRight(line, " \t")
	if line == "" || strings.HasPrefix(line, "#") {
		return ignorePattern{}, false
	}

	p := ignorePattern{}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	p.hasSlash = strings.Contains(line, "/")
	p.pattern = line
	return p, true
}

func (p ignorePattern) matches(path string) bool {
	if p.dirOnly {
		if path == p.pattern || strings.HasPrefix(path, p.pattern+"/") {
			return true
		}
		// A bare directory name also matches nested occurrences.
		if !p.hasSlash && strings.Contains(path, "/"+p.pattern+"/") {
			return true
		}
		return false
	}

	if p.hasSlash {
		matched, _ := filepath.Match(p.pattern, path)
		return matched || path == p.pattern
	}

	base := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		base = path[i+1:]
	}
	matched, _ := filepath.Match(p.pattern, base)
	return matched || base == p.pattern
}
