package manifest

import (
	"path/filepath"
	"testing"
)

func TestFindSingleFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.yaml", "kind: ConfigMap\n")

	files, err := Find(filepath.Join(dir, "app.yaml"), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
}

func TestFindSingleFileWrongExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.json", "{}")

	files, err := Find(filepath.Join(dir, "app.json"), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files for unrecognized extension, got %v", files)
	}
}

func TestFindDirectoryFiltering(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "z.yaml", "")
	writeFile(t, dir, "a.yml", "")
	writeFile(t, dir, "skip.yaml", "")
	writeFile(t, dir, "readme.md", "")

	files, err := Find(dir, nil, []string{"skip.yaml"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	want := []string{"a.yml", "z.yaml"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("file %d = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestFindCustomInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "release.yaml", "")
	writeFile(t, dir, "other.yaml", "")

	files, err := Find(dir, []string{"release.yaml"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "release.yaml" {
		t.Errorf("got %v, want just release.yaml", files)
	}
}
