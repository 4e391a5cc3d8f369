package tui

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Renderer writes user-facing status output.
type Renderer struct {
	out    io.Writer
	styles *StyleSet
	isTTY  bool
}

// NewRenderer creates a Renderer for out. The spinner animates only when
// out is a terminal.
func NewRenderer(out io.Writer, styles *StyleSet) *Renderer {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return &Renderer{out: out, styles: styles, isTTY: isTTY}
}

// Success prints a green check line.
func (r *Renderer) Success(msg string) {
	fmt.Fprintln(r.out, r.styles.SuccessTxt.Render("✓ "+msg))
}

// Warning prints a yellow warning line.
func (r *Renderer) Warning(msg string) {
	fmt.Fprintln(r.out, r.styles.WarningTxt.Render("⚠ "+msg))
}

// Error prints a red error line.
func (r *Renderer) Error(msg string) {
	fmt.Fprintln(r.out, r.styles.ErrorTxt.Render("✗ "+msg))
}

// Info prints an accent-colored informational line.
func (r *Renderer) Info(msg string) {
	fmt.Fprintln(r.out, r.styles.InfoTxt.Render("ℹ "+msg))
}

// Installing announces the pip hand-off.
func (r *Renderer) Installing(what string) {
	fmt.Fprintln(r.out, r.styles.InfoTxt.Render("📦 Installing: "+what))
}

// BlockedItem prints one blocked package in a post-install summary.
func (r *Renderer) BlockedItem(spec string) {
	fmt.Fprintln(r.out, "  "+r.styles.ErrorTxt.Render("✗")+" "+spec)
}

// Println writes a plain line.
func (r *Renderer) Println(msg string) {
	fmt.Fprintln(r.out, msg)
}

// BlockedPanel renders the bordered block report for a package.
func (r *Renderer) BlockedPanel(pkg, version, reason, auditURL string) {
	s := r.styles
	content := s.PanelTitle.Render("🚫 PACKAGE BLOCKED") + "\n\n" +
		s.PanelKey.Render("Package") + s.PanelValue.Render(pkg) + "\n" +
		s.PanelKey.Render("Version") + s.PanelValue.Render(version) + "\n" +
		s.PanelKey.Render("Reason") + s.PanelValue.Render(reason) + "\n" +
		s.PanelKey.Render("Audit") + s.DimTxt.Render(auditURL)
	fmt.Fprintln(r.out, s.PanelBorder.Render(content))
}

// BlockedVersions lists the blocked versions under an audit panel.
func (r *Renderer) BlockedVersions(versions []string) {
	if len(versions) == 0 {
		return
	}
	line := "Blocked versions: "
	for i, v := range versions {
		if i > 0 {
			line += ", "
		}
		line += v
	}
	fmt.Fprintln(r.out, r.styles.ErrorTxt.Render(line))
}
