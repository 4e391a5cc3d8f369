package runner

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestPipArgs(t *testing.T) {
	args := PipArgs([]string{"pip"}, InstallOptions{Packages: []string{"requests", "keras==3.11.2"}})
	want := "pip install requests keras==3.11.2"
	if got := strings.Join(args, " "); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPipArgs_AllFlags(t *testing.T) {
	args := PipArgs([]string{"python", "-m", "pip"}, InstallOptions{
		Packages:      []string{"requests"},
		Upgrade:       true,
		IndexURL:      "http://127.0.0.1:8000/simple/",
		ExtraIndexURL: "https://pypi.org/simple/",
		TrustedHost:   "127.0.0.1",
		NoDeps:        true,
	})
	want := "python -m pip install requests --upgrade" +
		" --index-url http://127.0.0.1:8000/simple/" +
		" --extra-index-url https://pypi.org/simple/" +
		" --trusted-host 127.0.0.1 --no-deps"
	if got := strings.Join(args, " "); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPipArgs_RequirementWinsOverPackages(t *testing.T) {
	args := PipArgs([]string{"pip"}, InstallOptions{
		Packages:    []string{"requests"},
		Requirement: "requirements.txt",
	})
	want := "pip install -r requirements.txt"
	if got := strings.Join(args, " "); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRun_ForwardsOutputAndExitCode(t *testing.T) {
	var out bytes.Buffer
	m := NewMonitor(&out)

	code, err := Run(context.Background(), []string{"sh", "-c", "echo hello; echo oops >&2; exit 3"}, m)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if code != 3 {
		t.Errorf("exit code: got %d, want 3", code)
	}
	if !strings.Contains(out.String(), "hello") {
		t.Errorf("stdout not forwarded: %q", out.String())
	}
	if !strings.Contains(out.String(), "oops") {
		t.Errorf("stderr not merged into stream: %q", out.String())
	}
}

func TestRun_Success(t *testing.T) {
	var out bytes.Buffer
	m := NewMonitor(&out)

	code, err := Run(context.Background(), []string{"sh", "-c", "echo done"}, m)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if code != 0 {
		t.Errorf("exit code: got %d, want 0", code)
	}
}

func TestRun_CollectsBlockSignals(t *testing.T) {
	var out bytes.Buffer
	m := NewMonitor(&out)

	script := "echo 'ERROR: HTTP error 403 while getting http://host/pypi/packages/numpy-2.3.5-cp313-cp313-win_amd64.whl.metadata'; exit 1"
	code, err := Run(context.Background(), []string{"sh", "-c", script}, m)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if code != 1 {
		t.Errorf("exit code: got %d, want 1", code)
	}
	blocked := m.Blocked()
	if len(blocked) != 1 || blocked[0].Name != "numpy" || blocked[0].Version != "2.3.5" {
		t.Errorf("blocked records: %v", blocked)
	}
}

func TestRun_MissingBinary(t *testing.T) {
	var out bytes.Buffer
	if _, err := Run(context.Background(), []string{"definitely-not-a-real-binary-xyz"}, NewMonitor(&out)); err == nil {
		t.Error("expected error for missing binary")
	}
}

func TestRun_EmptyCommand(t *testing.T) {
	var out bytes.Buffer
	if _, err := Run(context.Background(), nil, NewMonitor(&out)); err == nil {
		t.Error("expected error for empty command")
	}
}
