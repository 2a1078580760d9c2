package repo

import (
	"path/filepath"
	"testing"
)

func TestLoadIgnoreAlwaysExcludesRepoDirs(t *testing.T) {
	ignore := LoadIgnore(t.TempDir())

	for _, path := range []string{".grit", ".grit/objects/ab/cd", ".git", ".git/config"} {
		if !ignore(path) {
			t.Errorf("ignore(%q) = false, want true", path)
		}
	}
	if ignore("src/main.go") {
		t.Error("ordinary paths must not be ignored by default")
	}
}

func TestLoadIgnorePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".gritignore"), []byte(
		"# build output\n"+
			"*.log\n"+
			"dist/\n"+
			"secret.txt\n"+
			"docs/internal.md\n"+
			"\n"))

	ignore := LoadIgnore(dir)

	cases := []struct {
		path string
		want bool
	}{
		{"app.log", true},
		{"nested/deep/app.log", true},
		{"app.log.bak", false},
		{"dist", true},
		{"dist/bundle.js", true},
		{"distance.txt", false},
		{"secret.txt", true},
		{"sub/secret.txt", true},
		{"docs/internal.md", true},
		{"docs/public.md", false},
	}
	for _, tc := range cases {
		if got := ignore(tc.path); got != tc.want {
			t.Errorf("ignore(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}
