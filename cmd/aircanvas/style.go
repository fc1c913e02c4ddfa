package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleID     = lipgloss.NewStyle().Foreground(colorCyan)
	styleOK     = lipgloss.NewStyle().Foreground(colorGreen)
	styleLabel  = lipgloss.NewStyle().Foreground(colorGray)
	styleDetail = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	iconInfo  = "›"
	iconArrow = "→"
)

func printTitle(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleTitle.Render(fmt.Sprintf(format, args...)))
}

func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+styleDetail.Render(fmt.Sprintf(format, args...)))
}
