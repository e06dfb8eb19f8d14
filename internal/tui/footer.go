package tui

import (
	"github.com/charmbracelet/bubbles/help"
)

// FooterModel renders the status and the key help line.
type FooterModel struct {
	help   help.Model
	keys   KeyMap
	paused bool
	done   bool
	failed bool
	width  int
}

// NewFooterModel creates a new footer.
func NewFooterModel(keys KeyMap) FooterModel {
	return FooterModel{help: help.New(), keys: keys}
}

func (f *FooterModel) SetPaused(p bool) { f.paused = p }
func (f *FooterModel) SetDone(d bool)   { f.done = d }
func (f *FooterModel) SetError(e bool)  { f.failed = e }

// SetWidth updates the available width.
func (f *FooterModel) SetWidth(w int) {
	f.width = w
	f.help.Width = w
}

// Status returns the status label.
func (f FooterModel) Status() string {
	switch {
	case f.failed:
		return "FAILED"
	case f.done:
		return "DONE"
	case f.paused:
		return "PAUSED"
	}
	return "RUNNING"
}

// View renders the footer.
func (f FooterModel) View() string {
	style := statusRunningStyle
	switch {
	case f.failed:
		style = statusErrorStyle
	case f.done:
		style = statusDoneStyle
	case f.paused:
		style = statusPausedStyle
	}
	return " " + style.Render(f.Status()) + "  " + f.help.View(f.keys)
}
