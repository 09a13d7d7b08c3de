package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/systemstart/kube-prelint/pkg/api"
)

// DefaultIncludes matches the manifest extensions recognized during
// directory discovery.
var DefaultIncludes = []string{"**/*.yaml", "**/*.yml"}

var yamlExtensions = map[string]bool{".yaml": true, ".yml": true}

// Find resolves path into an ordered list of manifest files. A single
// file resolves to itself when it carries a recognized extension and to
// an empty list otherwise. A directory is enumerated recursively with
// include/exclude glob filtering and lexicographic ordering. A missing
// path yields a not-found error.
func Find(path string, include, exclude []string) ([]string, error) {
	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, api.Errorf(api.KindNotFound, "path does not exist: %s", path)
		}
		return nil, fmt.Errorf("checking path %s: %w", path, err)
	}

	if !st.IsDir() {
		if yamlExtensions[filepath.Ext(path)] {
			return []string{path}, nil
		}
		return nil, nil
	}

	rel, err := filterFiles(os.DirFS(path), include, exclude)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(rel))
	for _, f := range rel {
		files = append(files, filepath.Join(path, filepath.FromSlash(f)))
	}
	return files, nil
}

func globFS(fsys fs.FS, patterns []string) ([]string, error) {
	var result []string
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		result = append(result, matches...)
	}
	slices.Sort(result)
	result = slices.Compact(result)
	return result, nil
}

func filterFiles(fsys fs.FS, include, exclude []string) ([]string, error) {
	if len(include) == 0 {
		include = DefaultIncludes
	}

	included, err := globFS(fsys, include)
	if err != nil {
		return nil, fmt.Errorf("include filter: %w", err)
	}

	excluded, err := globFS(fsys, exclude)
	if err != nil {
		return nil, fmt.Errorf("exclude filter: %w", err)
	}

	var result []string
	for _, f := range included {
		info, err := fs.Stat(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", f, err)
		}
		if info.IsDir() {
			continue
		}
		if slices.Contains(excluded, f) {
			continue
		}
		result = append(result, f)
	}
	return result, nil
}
