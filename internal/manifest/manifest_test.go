package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFiltersCommentsAndBlanks(t *testing.T) {
	text := strings.Join([]string{
		"# build tooling",
		"requests",
		"",
		"   ",
		"  rich==13.7.1  ",
		"#pillow",
		"numpy>=1.26,<2",
		"",
	}, "\n")

	specifiers, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("parse failed: %s", err)
	}

	expected := []string{"requests", "rich==13.7.1", "numpy>=1.26,<2"}
	if len(specifiers) != len(expected) {
		t.Fatalf("expected %d specifiers but got %d: %v", len(expected), len(specifiers), specifiers)
	}
	for i, specifier := range expected {
		if specifiers[i] != specifier {
			t.Errorf("expected %q at position %d but got %q", specifier, i, specifiers[i])
		}
	}
}

func TestParseAllFilteredOut(t *testing.T) {
	specifiers, err := Parse(strings.NewReader("# nothing\n\n  \n# here\n"))
	if err != nil {
		t.Fatalf("parse failed: %s", err)
	}
	if len(specifiers) != 0 {
		t.Errorf("expected empty result but got %v", specifiers)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "venv.txt")
	if err := os.WriteFile(path, []byte("requests\n# comment\n\nrich==13.7.1"), 0o644); err != nil {
		t.Fatal(err)
	}

	specifiers, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %s", err)
	}
	if len(specifiers) != 2 || specifiers[0] != "requests" || specifiers[1] != "rich==13.7.1" {
		t.Errorf("unexpected specifiers: %v", specifiers)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "venv.txt")); err == nil {
		t.Error("expected error for missing manifest")
	}
}
