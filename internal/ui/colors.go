package ui

// The Color* functions return the escape sequence of the active theme for
// one role, so callers can interpolate them into format strings.

func ColorReset() string     { return GetCurrentTheme().Reset }
func ColorBold() string      { return GetCurrentTheme().Bold }
func ColorUnderline() string { return GetCurrentTheme().Underline }
func ColorRed() string       { return GetCurrentTheme().Error }
func ColorGreen() string     { return GetCurrentTheme().Success }
func ColorYellow() string    { return GetCurrentTheme().Warning }
func ColorBlue() string      { return GetCurrentTheme().Primary }
func ColorCyan() string      { return GetCurrentTheme().Info }
func ColorDim() string       { return GetCurrentTheme().Secondary }

// CLIColorProvider adapts the active theme to the apperrors.ColorProvider
// interface used by the error handler.
type CLIColorProvider struct{}

func (CLIColorProvider) Red() string    { return ColorRed() }
func (CLIColorProvider) Yellow() string { return ColorYellow() }
func (CLIColorProvider) Reset() string  { return ColorReset() }
