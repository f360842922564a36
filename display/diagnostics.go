package display

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"github.com/teranos/clutz/diag"
)

// RunSummary describes one generate or check run.
type RunSummary struct {
	Units       int           `json:"units"`
	Emitted     int           `json:"emitted"`
	Skipped     []string      `json:"skipped,omitempty"`
	Diagnostics int           `json:"diagnostics"`
	Duration    time.Duration `json:"duration_ns"`
	Written     []string      `json:"written,omitempty"`
}

// SummaryRows tabulates diagnostics by code, header first, codes sorted.
func SummaryRows(ds []diag.Diagnostic) [][]string {
	counts := diag.CountByCode(ds)
	codes := make([]diag.Code, 0, len(counts))
	for c := range counts {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	rows := [][]string{{"Code", "Severity", "Count"}}
	for _, c := range codes {
		rows = append(rows, []string{
			string(c),
			diag.DefaultSeverity(c).String(),
			strconv.Itoa(counts[c]),
		})
	}
	return rows
}

// PrintDiagnostics writes the summary table to w. With verbose set, every
// diagnostic is listed above the table.
func PrintDiagnostics(w io.Writer, ds []diag.Diagnostic, verbose bool) error {
	if len(ds) == 0 {
		_, err := fmt.Fprint(w, pterm.Success.Sprintln("No diagnostics"))
		return err
	}

	if verbose {
		for _, d := range ds {
			if _, err := fmt.Fprintln(w, severityColor(d.Severity)(d.String())); err != nil {
				return err
			}
		}
		fmt.Fprintln(w)
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(SummaryRows(ds)).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, table)
	return err
}

// PrintRunSummary writes a one-line outcome followed by skipped units.
func PrintRunSummary(w io.Writer, s RunSummary) error {
	line := fmt.Sprintf("Emitted %s of %d units in %s",
		pterm.Green(strconv.Itoa(s.Emitted)), s.Units, s.Duration.Round(time.Millisecond))
	if s.Diagnostics > 0 {
		line += fmt.Sprintf(" with %s diagnostics", pterm.Yellow(strconv.Itoa(s.Diagnostics)))
	}
	printer := pterm.Success
	if len(s.Skipped) > 0 {
		printer = pterm.Warning
	}
	if _, err := fmt.Fprint(w, printer.Sprintln(line)); err != nil {
		return err
	}
	for _, name := range s.Skipped {
		if _, err := fmt.Fprintf(w, "  skipped %s\n", pterm.Red(name)); err != nil {
			return err
		}
	}
	return nil
}

func severityColor(s diag.Severity) func(a ...interface{}) string {
	switch s {
	case diag.Error:
		return pterm.Red
	case diag.Warning:
		return pterm.Yellow
	default:
		return pterm.LightCyan
	}
}
