package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tonimelisma/syncpaste/internal/fingerprint"
	"github.com/tonimelisma/syncpaste/internal/sync"
)

// shortFingerprintLen is how much of a fingerprint is shown in tables.
const shortFingerprintLen = 12

// statusf prints a status message to stderr unless quiet mode is set.
func statusf(quiet bool, format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// formatTickLine renders a one-line summary of a tick that moved content.
func formatTickLine(st sync.Status) string {
	var b strings.Builder

	b.WriteString(st.Time.Format(time.TimeOnly))

	if st.Mode == sync.ModePush {
		b.WriteString(" sent to server")
	} else {
		b.WriteString(" received from server")
	}

	if st.Message != "" {
		fmt.Fprintf(&b, ": %s", st.Message)
	}

	return b.String()
}

// formatAge returns a relative time such as "3 minutes ago", or "never" for
// the zero time.
func formatAge(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	return humanize.Time(t)
}

// formatFingerprint shortens a fingerprint for display.
func formatFingerprint(fp string) string {
	if fp == fingerprint.None {
		return "(none)"
	}

	if len(fp) > shortFingerprintLen {
		return fp[:shortFingerprintLen]
	}

	return fp
}

// printTable writes aligned columns to the given writer.
// headers and each row must have the same length.
func printTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}

	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow(w, headers, widths)

	for _, row := range rows {
		printRow(w, row, widths)
	}
}

// printRow writes a single padded row. Trailing padding is trimmed.
func printRow(w io.Writer, cells []string, widths []int) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
	}

	fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
}
