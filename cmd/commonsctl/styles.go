package main

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent  = lipgloss.Color("#5FAFD7")
	colorSuccess = lipgloss.Color("#87D787")
	colorWarn    = lipgloss.Color("#F4D03F")
	colorHigh    = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("244")

	styleBadge = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess)

	styleMuted = lipgloss.NewStyle().Foreground(colorMuted)

	styleHeader = lipgloss.NewStyle().Bold(true).Underline(true)

	styleWarnBanner = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorWarn).
			Foreground(colorWarn).
			Padding(0, 1)

	styleHighBanner = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorHigh).
			Foreground(colorHigh).
			Padding(0, 1)
)

func bannerStyle(level string) lipgloss.Style {
	if level == "high" {
		return styleHighBanner
	}
	return styleWarnBanner
}
