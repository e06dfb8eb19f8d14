package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies the ANSI sequences used when rendering error
// messages. A nil provider renders plain text.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

// HandleSumError writes a user-facing description of err to out and returns
// the matching exit code. A nil error yields ExitSuccess and writes nothing.
//
// Parameters:
//   - err: The error returned by the reduction.
//   - duration: How long the reduction ran before failing (0 if unknown).
//   - out: The writer for the message.
//   - colors: Optional color provider.
//
// Returns:
//   - int: The exit code to report to the OS.
func HandleSumError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	red, yellow, reset := "", "", ""
	if colors != nil {
		red, yellow, reset = colors.Red(), colors.Yellow(), colors.Reset()
	}
	suffix := ""
	if duration > 0 {
		suffix = fmt.Sprintf(" after %s%s%s", yellow, duration, reset)
	}

	var timeoutErr TimeoutError
	switch {
	case errors.As(err, &timeoutErr):
		fmt.Fprintf(out, "%sStatus: Failure (Timeout).%s The reduction did not finish within %s%s.\n", red, reset, timeoutErr.Limit, suffix)
		return ExitErrorTimeout
	case errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintf(out, "%sStatus: Failure (Timeout).%s The reduction did not finish in time%s.\n", red, reset, suffix)
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(out, "%sStatus: Canceled%s%s.\n", yellow, reset, suffix)
		return ExitErrorCanceled
	case IsValidationError(err):
		fmt.Fprintf(out, "%sStatus: Rejected.%s %v\n", red, reset, err)
		return ExitErrorValidation
	case errors.As(err, new(ConfigError)):
		fmt.Fprintf(out, "%sConfiguration error:%s %v\n", red, reset, err)
		return ExitErrorConfig
	default:
		fmt.Fprintf(out, "%sStatus: Failure.%s %v%s\n", red, reset, err, suffix)
		return ExitErrorGeneric
	}
}
