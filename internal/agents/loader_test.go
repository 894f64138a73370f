package agents

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/whatif-advisor/internal/domain"
)

func writeAgent(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write agent file: %v", err)
	}
	return path
}

const validAgent = `---
id: sfi
display_name: Secure Future Initiative
default_threshold: medium
display: table
icon: "🔒"
columns:
  - name: SFI ID and Name
    description: The control identifier
  - name: Status
---
Evaluate each change against SFI requirements.
`

func TestParseFileValidAgent(t *testing.T) {
	dir := t.TempDir()
	path := writeAgent(t, dir, "sfi.md", validAgent)

	bucket, ok, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile error: %v", err)
	}
	if !ok {
		t.Fatal("agent should be enabled")
	}

	if bucket.ID != "sfi" || !bucket.Custom {
		t.Fatalf("unexpected bucket identity: %+v", bucket)
	}
	if bucket.DefaultThreshold != domain.RiskMedium {
		t.Fatalf("threshold = %q, want medium", bucket.DefaultThreshold)
	}
	if bucket.Display != domain.DisplayTable {
		t.Fatalf("display = %q, want table", bucket.Display)
	}
	if !strings.Contains(bucket.Instructions, "SFI requirements") {
		t.Fatalf("body should become instructions, got %q", bucket.Instructions)
	}

	wantColumns := []domain.FindingsColumn{
		{Name: "SFI ID and Name", Key: "sfi_id_and_name", Description: "The control identifier"},
		{Name: "Status", Key: "status", Description: "Status"},
	}
	if diff := cmp.Diff(wantColumns, bucket.Columns); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFileDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeAgent(t, dir, "minimal.md", "---\nid: minimal\ndisplay_name: Minimal\n---\nBody.\n")

	bucket, ok, err := ParseFile(path)
	if err != nil || !ok {
		t.Fatalf("ParseFile: ok=%v err=%v", ok, err)
	}
	if bucket.DefaultThreshold != domain.RiskHigh {
		t.Fatalf("default threshold = %q, want high", bucket.DefaultThreshold)
	}
	if bucket.Display != domain.DisplaySummary {
		t.Fatalf("default display = %q, want summary", bucket.Display)
	}
}

func TestParseFileDisabledAgent(t *testing.T) {
	dir := t.TempDir()
	path := writeAgent(t, dir, "off.md", "---\nid: off\ndisplay_name: Off\nenabled: false\n---\nBody.\n")

	_, ok, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile error: %v", err)
	}
	if ok {
		t.Fatal("disabled agent must be skipped without error")
	}
}

func TestParseFileRejections(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing id", "---\ndisplay_name: X\n---\nBody.\n", "missing required 'id'"},
		{"bad id charset", "---\nid: \"bad id!\"\ndisplay_name: X\n---\nBody.\n", "invalid characters"},
		{"builtin collision", "---\nid: drift\ndisplay_name: X\n---\nBody.\n", "collides with a built-in"},
		{"missing display name", "---\nid: x\n---\nBody.\n", "missing required 'display_name'"},
		{"bad threshold", "---\nid: x\ndisplay_name: X\ndefault_threshold: extreme\n---\nBody.\n", "invalid default_threshold"},
		{"bad display", "---\nid: x\ndisplay_name: X\ndisplay: chart\n---\nBody.\n", "invalid display"},
		{"no frontmatter", "Just a markdown file.\n", "missing opening frontmatter"},
		{"unterminated frontmatter", "---\nid: x\n", "missing closing frontmatter"},
		{"duplicate column keys", "---\nid: x\ndisplay_name: X\ncolumns:\n  - name: Status\n  - name: status\n---\nBody.\n", "duplicate column key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeAgent(t, dir, "agent.md", tt.content)
			_, _, err := ParseFile(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"SFI ID and Name", "sfi_id_and_name"},
		{"Status", "status"},
		{"  Weird -- Name  ", "weird_name"},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadDirectoryPartialSuccess(t *testing.T) {
	dir := t.TempDir()
	writeAgent(t, dir, "01-good.md", validAgent)
	writeAgent(t, dir, "02-bad.md", "---\ndisplay_name: No ID\n---\nBody.\n")
	writeAgent(t, dir, "03-off.md", "---\nid: off\ndisplay_name: Off\nenabled: false\n---\nBody.\n")
	writeAgent(t, dir, "ignored.txt", "not markdown")

	loaded, warnings := LoadDirectory(dir)
	if len(loaded) != 1 || loaded[0].ID != "sfi" {
		t.Fatalf("loaded = %+v, want just sfi", loaded)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "02-bad.md") {
		t.Fatalf("warnings = %v, want one naming 02-bad.md", warnings)
	}
}

func TestLoadDirectoryMissingDirIsWarning(t *testing.T) {
	loaded, warnings := LoadDirectory(filepath.Join(t.TempDir(), "nope"))
	if loaded != nil {
		t.Fatalf("loaded = %+v, want nil", loaded)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warnings)
	}
}
