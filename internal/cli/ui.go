package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/covercluster/pkg/pipeline"
)

// Palette. Numbers are ANSI 256 colors.
var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorLink   = lipgloss.Color("75")
	colorValue  = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("240")
)

var (
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleValue   = lipgloss.NewStyle().Foreground(colorValue)
	styleNumber  = lipgloss.NewStyle().Foreground(colorAccent)
	styleWarn    = lipgloss.NewStyle().Foreground(colorWarn)
	styleOK      = lipgloss.NewStyle().Foreground(colorOK)
	styleSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleCommand = lipgloss.NewStyle().Foreground(colorLink)
)

const (
	markOK    = "✓"
	markWarn  = "!"
	markInfo  = "›"
	markArrow = "→"
	separator = " · "
)

// printer writes the human-readable result lines of a command. Logs go to
// the logger on stderr; everything a user reads as output goes here.
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) printer {
	return printer{w: w}
}

func (p printer) line(mark lipgloss.Style, icon, msg string) {
	fmt.Fprintln(p.w, mark.Render(icon)+" "+msg)
}

func (p printer) success(format string, args ...any) {
	p.line(styleOK, markOK, fmt.Sprintf(format, args...))
}

func (p printer) warning(format string, args ...any) {
	p.line(styleWarn, markWarn, styleWarn.Render(fmt.Sprintf(format, args...)))
}

func (p printer) info(format string, args ...any) {
	p.line(styleMuted, markInfo, fmt.Sprintf(format, args...))
}

// detail prints an indented secondary line.
func (p printer) detail(format string, args ...any) {
	fmt.Fprintln(p.w, "  "+styleMuted.Render(fmt.Sprintf(format, args...)))
}

// file prints a path the command wrote.
func (p printer) file(path string) {
	fmt.Fprintln(p.w, "  "+styleMuted.Render(markArrow)+" "+styleValue.Render(path))
}

// nextStep suggests the command to run after this one.
func (p printer) nextStep(description, cmd string) {
	fmt.Fprintln(p.w, styleMuted.Render(description+":")+" "+styleCommand.Render(cmd))
}

// summary prints album count, canvas size, exclusions and whether both the
// layout and the image came from the cache.
func (p printer) summary(s pipeline.Summary, cached bool) {
	parts := []string{
		styleNumber.Render(strconv.Itoa(s.Albums)) + styleMuted.Render(" albums"),
		styleValue.Render(fmt.Sprintf("%d×%d", s.Width, s.Height)),
	}
	if s.Excluded > 0 {
		parts = append(parts, styleWarn.Render(fmt.Sprintf("%d excluded", s.Excluded)))
	}
	if cached {
		parts = append(parts, styleOK.Render("cached"))
	} else {
		parts = append(parts, styleMuted.Render("fresh"))
	}
	fmt.Fprintln(p.w, "  "+strings.Join(parts, styleMuted.Render(separator)))
}

// crawlStats prints the album and cover counts of a crawl.
func (p printer) crawlStats(albums, downloaded, skipped, failed int) {
	line := fmt.Sprintf("%d albums%s%d downloaded%s%d already present",
		albums, separator, downloaded, separator, skipped)
	out := "  " + styleMuted.Render(line)
	if failed > 0 {
		out += styleMuted.Render(separator) + styleWarn.Render(fmt.Sprintf("%d failed", failed))
	}
	fmt.Fprintln(p.w, out)
}
