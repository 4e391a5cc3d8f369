// Package pkgspec parses pip package specifiers and requirements files.
package pkgspec

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Ref identifies a package and, when pinned with ==, an exact version.
type Ref struct {
	Name    string
	Version string
}

// String reconstructs the specifier form of the reference.
func (r Ref) String() string {
	if r.Version == "" {
		return r.Name
	}
	return r.Name + "==" + r.Version
}

// operators in match order; ">=" and "<=" must precede ">" and "<".
var operators = []string{"==", ">=", "<=", ">", "<", "~="}

// Parse splits a specifier such as "requests", "keras==3.11.2" or
// "django>=4.0" into a Ref. Only == pins a version: range operators keep
// the name and drop the constraint, since the firewall matches exact
// versions only.
func Parse(spec string) (Ref, error) {
	for _, op := range operators {
		i := strings.Index(spec, op)
		if i < 0 {
			continue
		}
		name := strings.TrimSpace(spec[:i])
		if name == "" {
			return Ref{}, fmt.Errorf("invalid package specifier %q", spec)
		}
		ref := Ref{Name: name}
		if op == "==" {
			ref.Version = strings.TrimSpace(spec[i+len(op):])
		}
		return ref, nil
	}

	name := strings.TrimSpace(spec)
	if name == "" {
		return Ref{}, fmt.Errorf("empty package specifier")
	}
	return Ref{Name: name}, nil
}

// ReadRequirements extracts package specifiers from requirements.txt
// content, skipping blank lines and comments.
func ReadRequirements(r io.Reader) ([]string, error) {
	var specs []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line != "" {
			specs = append(specs, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading requirements: %w", err)
	}
	return specs, nil
}

// LoadRequirementsFile reads package specifiers from the file at path.
func LoadRequirementsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening requirements file %s: %w", path, err)
	}
	defer f.Close()
	return ReadRequirements(f)
}
