package stopwatch

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Render writes a table of the summaries of run to w. The first summary is
// the baseline for the speedup column. With styled set, the table is drawn
// in a rounded box with a highlighted header, for terminals.
func Render(w io.Writer, run *Run, styled bool) error {
	summaries := run.Summaries()
	p := message.NewPrinter(language.English)

	var table strings.Builder
	tw := tabwriter.NewWriter(&table, 0, 0, 2, ' ', 0)
	header := "STRATEGY\tELEMENTS\tREPEATS\tMEAN\tSTDDEV\tMEDIAN\tMIN\tMAX\tELEM/S\tSPEEDUP"
	fmt.Fprintln(tw, header)
	var baseline time.Duration
	for i, s := range summaries {
		if i == 0 {
			baseline = s.Mean
		}
		speedup := "-"
		if s.Mean > 0 && baseline > 0 {
			speedup = fmt.Sprintf("%.2fx", float64(baseline)/float64(s.Mean))
		}
		p.Fprintf(tw, "%s\t%d\t%d\t%v\t%v\t%v\t%v\t%v\t%.0f\t%s\n",
			s.Label, s.Elements, s.Repeats,
			round(s.Mean), round(s.StdDev), round(s.Median), round(s.Min), round(s.Max),
			s.Throughput(), speedup)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	title := fmt.Sprintf("run %s", run.ID)
	if !styled {
		_, err := fmt.Fprintf(w, "%s\n%s", title, table.String())
		return err
	}

	lines := strings.SplitN(strings.TrimRight(table.String(), "\n"), "\n", 2)
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("33"))
	titleStyle := lipgloss.NewStyle().Bold(true)
	boxStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 1)
	var content strings.Builder
	content.WriteString(titleStyle.Render(title))
	content.WriteString("\n")
	content.WriteString(headerStyle.Render(lines[0]))
	if len(lines) > 1 {
		content.WriteString("\n")
		content.WriteString(lines[1])
	}
	_, err := fmt.Fprintln(w, boxStyle.Render(content.String()))
	return err
}

func round(d time.Duration) time.Duration {
	switch {
	case d >= time.Second:
		return d.Round(time.Millisecond)
	case d >= time.Millisecond:
		return d.Round(time.Microsecond)
	}
	return d
}
