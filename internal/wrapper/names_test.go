package wrapper

import (
	"path/filepath"
	"testing"
)

func TestPlainNameDerivation(t *testing.T) {
	names := NewNameSet()
	name, err := names.Claim(filepath.FromSlash("/managed/tools/report.py"), filepath.FromSlash("/managed"), "", ".py")
	if err != nil {
		t.Fatalf("claim failed: %s", err)
	}
	if name != "report" {
		t.Errorf("expected plain name report but got %s", name)
	}
}

func TestPrefixApplies(t *testing.T) {
	names := NewNameSet()
	name, err := names.Claim(filepath.FromSlash("/managed/report.py"), filepath.FromSlash("/managed"), "Py", ".py")
	if err != nil {
		t.Fatalf("claim failed: %s", err)
	}
	if name != "Pyreport" {
		t.Errorf("expected prefixed name Pyreport but got %s", name)
	}
}

func TestCollisionFallsBackToPathDerivedName(t *testing.T) {
	names := NewNameSet()
	root := filepath.FromSlash("/managed")

	first, err := names.Claim(filepath.Join(root, "convert.py"), root, "", ".py")
	if err != nil {
		t.Fatalf("first claim failed: %s", err)
	}
	second, err := names.Claim(filepath.Join(root, "tools", "my convert", "convert.py"), root, "", ".py")
	if err != nil {
		t.Fatalf("second claim failed: %s", err)
	}

	if first != "convert" {
		t.Errorf("first script must keep the plain name, got %s", first)
	}
	if second != "tools-my-convert-convert" {
		t.Errorf("expected path-derived name tools-my-convert-convert but got %s", second)
	}
	if targets := names.Names(); len(targets) != 2 {
		t.Errorf("expected 2 claimed names but got %d", len(targets))
	}
}

func TestCollisionWithPrefix(t *testing.T) {
	names := NewNameSet()
	root := filepath.FromSlash("/managed")
	names.Claim(filepath.Join(root, "run.py"), root, "x-", ".py")
	second, err := names.Claim(filepath.Join(root, "jobs", "run.py"), root, "x-", ".py")
	if err != nil {
		t.Fatalf("claim failed: %s", err)
	}
	if second != "x-jobs-run" {
		t.Errorf("expected x-jobs-run but got %s", second)
	}
}

func TestUnresolvableCollisionReported(t *testing.T) {
	names := NewNameSet()
	root := filepath.FromSlash("/managed")

	//same basename and the same disambiguated relative path (underscore vs dash)
	if _, err := names.Claim(filepath.Join(root, "run.py"), root, "", ".py"); err != nil {
		t.Fatalf("unexpected claim failure: %s", err)
	}
	if _, err := names.Claim(filepath.Join(root, "jobs_x", "run.py"), root, "", ".py"); err != nil {
		t.Fatalf("unexpected claim failure: %s", err)
	}
	if _, err := names.Claim(filepath.Join(root, "jobs-x", "run.py"), root, "", ".py"); err == nil {
		t.Error("expected claim failure for unresolvable collision")
	}
}
