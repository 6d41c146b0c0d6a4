package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
)

// Printer writes user-facing output, suppressing informational messages in
// quiet mode. Errors are never suppressed.
type Printer struct {
	// Out receives informational output.
	Out io.Writer
	// Err receives error output.
	Err io.Writer
	// Quiet suppresses informational output.
	Quiet bool
}

// Printf prints informational output unless quiet mode is enabled.
func (p *Printer) Printf(format string, args ...interface{}) {
	if p.Quiet {
		return
	}
	fmt.Fprintf(p.Out, format, args...)
}

// Println prints informational output unless quiet mode is enabled.
func (p *Printer) Println(a ...interface{}) {
	if p.Quiet {
		return
	}
	fmt.Fprintln(p.Out, a...)
}

// Errorf prints error output regardless of quiet mode.
func (p *Printer) Errorf(format string, args ...interface{}) {
	fmt.Fprintf(p.Err, format, args...)
}

// Success prints a success marker line unless quiet mode is enabled.
func (p *Printer) Success(format string, args ...interface{}) {
	if p.Quiet {
		return
	}
	fmt.Fprintf(p.Out, "%s %s\n", text.FgGreen.Sprint("✓"), fmt.Sprintf(format, args...))
}

// Warning prints a warning marker line unless quiet mode is enabled.
func (p *Printer) Warning(format string, args ...interface{}) {
	if p.Quiet {
		return
	}
	fmt.Fprintf(p.Out, "%s %s\n", text.FgYellow.Sprint("⚠"), fmt.Sprintf(format, args...))
}

// FormatError formats an error message for CLI output.
func FormatError(err error) string {
	return fmt.Sprintf("Error: %v", err)
}

// FormatDuration formats a duration in a human-readable way.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return "expired"
	}
	if d < time.Minute {
		return "< 1 minute"
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	days := int(d.Hours() / 24)
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

// FormatExpiryWithDirection formats a time as "in X" or "expired X ago".
func FormatExpiryWithDirection(expiresAt time.Time) string {
	remaining := time.Until(expiresAt)
	if remaining > 0 {
		return "in " + FormatDuration(remaining)
	}
	expiredAgo := -remaining
	return text.FgYellow.Sprintf("expired %s ago", FormatDuration(expiredAgo))
}
