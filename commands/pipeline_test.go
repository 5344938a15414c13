package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/assessortools/covmap/export"
	"github.com/assessortools/covmap/mapping"
	"github.com/assessortools/covmap/session"
	"github.com/assessortools/covmap/standard"
)

func TestExpandDocuments(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "unit1")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.txt", "b.txt", filepath.Join("unit1", "c.txt"), "notes.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	paths, err := expandDocuments([]string{filepath.Join(dir, "**", "*.txt")})
	if err != nil {
		t.Fatalf("expandDocuments: %v", err)
	}
	if len(paths) != 3 {
		t.Errorf("got %d paths, want 3: %v", len(paths), paths)
	}

	// Literal paths pass through untouched, and duplicates collapse.
	literal := filepath.Join(dir, "a.txt")
	paths, err = expandDocuments([]string{literal, literal})
	if err != nil {
		t.Fatalf("expandDocuments: %v", err)
	}
	if len(paths) != 1 || paths[0] != literal {
		t.Errorf("paths = %v, want [%s]", paths, literal)
	}
}

func TestResolvePolicyPrecedence(t *testing.T) {
	p, err := resolvePolicy("fail-fast", "degrade")
	if err != nil || p != mapping.PolicyFailFast {
		t.Errorf("flag should win: %v, %v", p, err)
	}
	p, err = resolvePolicy("", "degrade")
	if err != nil || p != mapping.PolicyDegrade {
		t.Errorf("config fallback: %v, %v", p, err)
	}
	if _, err := resolvePolicy("sometimes", "degrade"); err == nil {
		t.Error("bad flag value accepted")
	}
}

func TestOutputName(t *testing.T) {
	sess := session.New(&standard.Set{Code: "HLTINF006"}, "written", "assessment v2.html")

	name := outputName(sess, "audit", export.FormatCSV)
	if name != "assessment v2_HLTINF006_audit.csv" {
		t.Errorf("name = %q", name)
	}

	sess.Filename = ""
	name = outputName(sess, "remediation", export.FormatJSON)
	if name != sess.ID+"_HLTINF006_remediation.json" {
		t.Errorf("name = %q", name)
	}
}
