package pkgspec

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		spec    string
		name    string
		version string
	}{
		{"requests", "requests", ""},
		{"keras==3.11.2", "keras", "3.11.2"},
		{"django>=4.0", "django", ""},
		{"numpy<=1.26", "numpy", ""},
		{"scipy>1.0", "scipy", ""},
		{"pandas<3", "pandas", ""},
		{"flask~=2.3", "flask", ""},
		{"  requests  ", "requests", ""},
		{"keras == 3.11.2", "keras", "3.11.2"},
	}
	for _, tc := range cases {
		ref, err := Parse(tc.spec)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", tc.spec, err)
			continue
		}
		if ref.Name != tc.name || ref.Version != tc.version {
			t.Errorf("Parse(%q) = %+v, want {%s %s}", tc.spec, ref, tc.name, tc.version)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, spec := range []string{"", "   ", "==1.0"} {
		if _, err := Parse(spec); err == nil {
			t.Errorf("Parse(%q): expected error", spec)
		}
	}
}

func TestRefString(t *testing.T) {
	if got := (Ref{Name: "keras", Version: "3.11.2"}).String(); got != "keras==3.11.2" {
		t.Errorf("got %q", got)
	}
	if got := (Ref{Name: "requests"}).String(); got != "requests" {
		t.Errorf("got %q", got)
	}
}

func TestReadRequirements(t *testing.T) {
	content := `
# core deps
requests==2.32.0
keras>=3.0  # pinned later

	numpy
`
	specs, err := ReadRequirements(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ReadRequirements error: %v", err)
	}
	want := []string{"requests==2.32.0", "keras>=3.0", "numpy"}
	if len(specs) != len(want) {
		t.Fatalf("got %v, want %v", specs, want)
	}
	for i := range want {
		if specs[i] != want[i] {
			t.Errorf("specs[%d] = %q, want %q", i, specs[i], want[i])
		}
	}
}

func TestLoadRequirementsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requirements.txt")
	if err := os.WriteFile(path, []byte("requests\n#comment\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	specs, err := LoadRequirementsFile(path)
	if err != nil {
		t.Fatalf("LoadRequirementsFile error: %v", err)
	}
	if len(specs) != 1 || specs[0] != "requests" {
		t.Errorf("got %v", specs)
	}
}

func TestLoadRequirementsFile_Missing(t *testing.T) {
	if _, err := LoadRequirementsFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
