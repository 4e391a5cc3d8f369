// Package runner spawns the pip subprocess and scans its live output for
// firewall block signals. The authoritative allow/block decision happens
// before pip ever runs; the monitor is a safety net that surfaces blocks
// pip hits on its own, e.g. for transitive dependencies.
package runner

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Block signal markers emitted by pip when the firewall denies a download.
const (
	signal403        = "HTTP error 403"
	signal403Verbose = "403 Client Error: Forbidden"
)

// packageRe extracts name and version from a package file URL, e.g.
// /packages/numpy-2.3.5-cp313-cp313-win_amd64.whl.metadata -> numpy, 2.3.5.
// The split on the first dash before a digit-led segment can mis-split
// names with embedded digit-led hyphenated segments; the looser pattern is
// kept on purpose so legitimate detections are never dropped.
var packageRe = regexp.MustCompile(`/packages/([a-zA-Z0-9_-]+)-([\d.]+[a-zA-Z0-9.]*)`)

// BlockedPackage is a package/version pair extracted from a block signal.
type BlockedPackage struct {
	Name    string
	Version string
}

// String renders the pair in pip specifier form.
func (b BlockedPackage) String() string {
	if b.Version == "" {
		return b.Name
	}
	return b.Name + "==" + b.Version
}

// Monitor forwards every line of pip output unchanged while collecting
// blocked packages from block-signal lines. The collection is deduplicated
// by (name, version) and keeps first-occurrence order.
type Monitor struct {
	out     io.Writer
	blocked []BlockedPackage
	seen    map[BlockedPackage]bool
}

// NewMonitor creates a Monitor that forwards lines to out.
func NewMonitor(out io.Writer) *Monitor {
	return &Monitor{out: out, seen: make(map[BlockedPackage]bool)}
}

// Scan consumes the stream line by line until EOF, writing each line
// through immediately so pip progress stays visible in real time.
func (m *Monitor) Scan(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		fmt.Fprintln(m.out, line)
		m.inspect(line)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading install output: %w", err)
	}
	return nil
}

func (m *Monitor) inspect(line string) {
	if !strings.Contains(line, signal403) && !strings.Contains(line, signal403Verbose) {
		return
	}
	match := packageRe.FindStringSubmatch(line)
	if match == nil {
		// Signal observed but the line carries no package URL.
		return
	}
	rec := BlockedPackage{Name: strings.ToLower(match[1]), Version: match[2]}
	if m.seen[rec] {
		return
	}
	m.seen[rec] = true
	m.blocked = append(m.blocked, rec)
}

// Blocked returns the collected packages in first-occurrence order.
func (m *Monitor) Blocked() []BlockedPackage {
	return m.blocked
}
