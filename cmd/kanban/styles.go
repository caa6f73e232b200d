// ABOUTME: lipgloss styles for CLI output: success marks, errors, headings, and muted detail.
// ABOUTME: Styles are bound to the output writer so redirected output carries no escape codes.
package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	success lipgloss.Style
	failure lipgloss.Style
	heading lipgloss.Style
	muted   lipgloss.Style
	prompt  lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		success: r.NewStyle().Foreground(lipgloss.Color("42")),
		failure: r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		heading: r.NewStyle().Foreground(lipgloss.Color("170")).Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("241")),
		prompt:  r.NewStyle().Foreground(lipgloss.Color("75")).Bold(true),
	}
}
