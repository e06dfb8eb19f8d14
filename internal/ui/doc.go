// Package ui holds the color themes shared by the CLI, the error handler and
// the terminal dashboard. ANSI themes serve plain terminal output; TUITheme
// carries the matching lipgloss colors.
package ui
