package runner

import (
	"bytes"
	"strings"
	"testing"
)

const signalLine = "ERROR: HTTP error 403 while getting http://host/pypi/packages/numpy-2.3.5-cp313-cp313-win_amd64.whl.metadata"

func TestMonitor_ExtractsBlockedPackage(t *testing.T) {
	var out bytes.Buffer
	m := NewMonitor(&out)

	if err := m.Scan(strings.NewReader(signalLine + "\n")); err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	blocked := m.Blocked()
	if len(blocked) != 1 {
		t.Fatalf("got %d records, want 1", len(blocked))
	}
	if blocked[0].Name != "numpy" || blocked[0].Version != "2.3.5" {
		t.Errorf("got %+v", blocked[0])
	}
	if blocked[0].String() != "numpy==2.3.5" {
		t.Errorf("String() = %q", blocked[0].String())
	}
}

func TestMonitor_DeduplicatesRecords(t *testing.T) {
	var out bytes.Buffer
	m := NewMonitor(&out)

	input := signalLine + "\n" + signalLine + "\n"
	if err := m.Scan(strings.NewReader(input)); err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(m.Blocked()) != 1 {
		t.Errorf("duplicate line produced %d records, want 1", len(m.Blocked()))
	}
}

func TestMonitor_PreservesFirstOccurrenceOrder(t *testing.T) {
	var out bytes.Buffer
	m := NewMonitor(&out)

	input := strings.Join([]string{
		"ERROR: HTTP error 403 while getting http://host/pypi/packages/keras-3.11.2.tar.gz",
		signalLine,
		"ERROR: HTTP error 403 while getting http://host/pypi/packages/keras-3.11.2.tar.gz",
	}, "\n")
	if err := m.Scan(strings.NewReader(input)); err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	blocked := m.Blocked()
	if len(blocked) != 2 {
		t.Fatalf("got %d records, want 2", len(blocked))
	}
	if blocked[0].Name != "keras" || blocked[1].Name != "numpy" {
		t.Errorf("order not preserved: %v", blocked)
	}
}

func TestMonitor_ForwardsEveryLine(t *testing.T) {
	var out bytes.Buffer
	m := NewMonitor(&out)

	input := "Collecting numpy\n" + signalLine + "\nDone\n"
	if err := m.Scan(strings.NewReader(input)); err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if out.String() != input {
		t.Errorf("pass-through output differs:\ngot  %q\nwant %q", out.String(), input)
	}
}

func TestMonitor_IgnoresNonSignalLines(t *testing.T) {
	var out bytes.Buffer
	m := NewMonitor(&out)

	// Package URL present but no 403 marker.
	line := "Downloading http://host/pypi/packages/numpy-2.3.5-cp313-cp313-win_amd64.whl\n"
	if err := m.Scan(strings.NewReader(line)); err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(m.Blocked()) != 0 {
		t.Errorf("non-signal line produced records: %v", m.Blocked())
	}
}

func TestMonitor_SignalWithoutPackageURL(t *testing.T) {
	var out bytes.Buffer
	m := NewMonitor(&out)

	line := "ERROR: 403 Client Error: Forbidden for url: http://host/simple/keras/\n"
	if err := m.Scan(strings.NewReader(line)); err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(m.Blocked()) != 0 {
		t.Errorf("signal without package URL produced records: %v", m.Blocked())
	}
}

func TestMonitor_LowercasesName(t *testing.T) {
	var out bytes.Buffer
	m := NewMonitor(&out)

	line := "ERROR: 403 Client Error: Forbidden /packages/Django-4.2.1.tar.gz\n"
	if err := m.Scan(strings.NewReader(line)); err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	blocked := m.Blocked()
	if len(blocked) != 1 || blocked[0].Name != "django" {
		t.Errorf("got %v, want lowercased django", blocked)
	}
}
