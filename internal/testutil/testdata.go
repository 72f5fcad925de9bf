// Package testutil locates shared test data.
package testutil

import (
	"os"
	"path/filepath"

	"github.com/bazelbuild/rules_go/go/tools/bazel"
)

// CasesDir returns the directory holding the shared case fixtures.
// In Bazel tests, it uses runfiles to find the directory.
// Outside of Bazel, it walks up to the module root.
func CasesDir() string {
	if path, err := bazel.Runfile("testdata/cases/maybe.yaml"); err == nil {
		return filepath.Dir(path)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	dir := cwd
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "testdata", "cases")
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Case returns the path of the named fixture file.
func Case(name string) string {
	return filepath.Join(CasesDir(), name)
}
