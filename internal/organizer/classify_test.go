package organizer

import (
	"path/filepath"
	"testing"
)

func TestExtensionTag(t *testing.T) {
	cases := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"a.PDF", "pdf", true},
		{"b.txt", "txt", true},
		{"photo.JpG", "jpg", true},
		{"archive.tar.gz", "gz", true},
		{".gitignore", "gitignore", true},
		{"README", "", false},
		{"trailing.", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := ExtensionTag(tc.name)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("ExtensionTag(%q) = (%q, %v), want (%q, %v)", tc.name, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestDestination(t *testing.T) {
	root := filepath.Join("/data", "downloads")
	got := Destination(root, filepath.Join(root, "nested", "deep", "a.PDF"), "pdf")
	want := filepath.Join(root, "pdf", "a.PDF")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDestination_StaysUnderRoot(t *testing.T) {
	root := filepath.Join("/data", "downloads")
	for _, name := range []string{"x.txt", ".bashrc", "a.b.c", "weird..md"} {
		tag, ok := ExtensionTag(name)
		if !ok {
			t.Fatalf("expected a tag for %q", name)
		}
		dest := Destination(root, filepath.Join(root, name), tag)
		rel, err := filepath.Rel(root, dest)
		if err != nil {
			t.Fatal(err)
		}
		if rel != filepath.Join(tag, name) {
			t.Errorf("%q: destination %q escapes %q", name, dest, filepath.Join(root, tag))
		}
	}
}
