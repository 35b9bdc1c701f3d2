// Package ui renders terminal output for the progsync CLI.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	ColorPass   = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#81C784"}
	ColorWarn   = lipgloss.AdaptiveColor{Light: "#EF6C00", Dark: "#FFB74D"}
	ColorFail   = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#E57373"}
	ColorAccent = lipgloss.AdaptiveColor{Light: "#1565C0", Dark: "#64B5F6"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9E9E9E"}
)

var (
	PassStyle   = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle   = lipgloss.NewStyle().Foreground(ColorFail)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	BoldStyle   = lipgloss.NewStyle().Bold(true)
)

// RenderPass renders s in the success color.
func RenderPass(s string) string { return PassStyle.Render(s) }

// RenderWarn renders s in the warning color.
func RenderWarn(s string) string { return WarnStyle.Render(s) }

// RenderFail renders s in the failure color.
func RenderFail(s string) string { return FailStyle.Render(s) }

// RenderAccent renders s in the accent color.
func RenderAccent(s string) string { return AccentStyle.Render(s) }

// RenderMuted renders s dimmed.
func RenderMuted(s string) string { return MutedStyle.Render(s) }

// RenderBold renders s in bold.
func RenderBold(s string) string { return BoldStyle.Render(s) }

// DisableColor forces plain output, e.g. for --no-color or NO_COLOR.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ConfigureColor disables color when requested or when NO_COLOR is set.
func ConfigureColor(noColor bool) {
	if noColor || termenv.EnvNoColor() {
		DisableColor()
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
