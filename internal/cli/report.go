package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/bastiangx/kwserve/internal/utils"
	"github.com/bastiangx/kwserve/pkg/analysis"
	"github.com/bastiangx/kwserve/pkg/model"
	"github.com/bastiangx/kwserve/pkg/suggest"
)

// TextSink prints reports for people to read.
type TextSink struct {
	w         io.Writer
	precision int
	styles    Styles
}

// NewTextSink writes to w with precision decimals per frequency.
func NewTextSink(w io.Writer, precision int) *TextSink {
	return &TextSink{w: w, precision: precision, styles: NewStyles(w)}
}

// Write prints one document's result.
func (s *TextSink) Write(res analysis.DocumentResult) error {
	if res.Err != nil {
		_, err := fmt.Fprintln(s.w, s.styles.Error.Render(fmt.Sprintf("%s: %v", res.Path, res.Err)))
		return err
	}
	return s.WriteReport(res.Report)
}

// WriteReport prints the usage and recommendation lists of every function.
func (s *TextSink) WriteReport(r *analysis.Report) error {
	var b strings.Builder
	if r.Document != "" {
		fmt.Fprintf(&b, "%s\n", s.styles.Document.Render(fmt.Sprintf("==> %s (prefix %s)", r.Document, r.Prefix)))
	}
	if len(r.Usages) == 0 {
		fmt.Fprintf(&b, "%s\n", s.styles.None.Render("No calls found."))
	}
	for _, u := range r.Usages {
		fmt.Fprintf(&b, "%s\n", s.styles.Heading.Render(fmt.Sprintf("You used function %s with keywords and frequency:", u.Function)))
		s.writeList(&b, u.Local)
		fmt.Fprintf(&b, "%s\n", s.styles.Heading.Render("We recommend these keywords with frequency:"))
		s.writeList(&b, u.Trained)
	}
	_, err := io.WriteString(s.w, b.String())
	return err
}

func (s *TextSink) writeList(b *strings.Builder, recs []suggest.Recommendation) {
	if len(recs) == 0 {
		fmt.Fprintf(b, "%s\n", s.styles.None.Render("None!"))
		return
	}
	for _, rec := range recs {
		fmt.Fprintf(b, "%s  %s\n", s.styles.Keyword.Render(rec.Keyword), s.styles.Freq.Render(utils.FormatFrequency(rec.Frequency, s.precision)))
	}
}

// WriteModel prints the training summary: vocabularies and the normalised
// frequency table.
func (s *TextSink) WriteModel(m *model.FrequencyModel) error {
	snap := m.Snapshot()
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", s.styles.Label.Render("Functions:"), strings.Join(snap.Functions, ", "))
	fmt.Fprintf(&b, "%s %s\n", s.styles.Label.Render("Keywords:"), strings.Join(snap.Keywords, ", "))
	fmt.Fprintf(&b, "%s\n", s.styles.Heading.Render("Normalized kw frequency:"))

	width := 0
	for _, fn := range snap.Functions {
		width = max(width, len(fn))
	}
	for i, fn := range snap.Functions {
		cells := make([]string, len(snap.Table[i]))
		for j, f := range snap.Table[i] {
			cells[j] = utils.FormatFrequency(f, s.precision)
		}
		fmt.Fprintf(&b, "%-*s (%d) %s\n", width, fn, snap.Counts[i], strings.Join(cells, " "))
	}
	_, err := io.WriteString(s.w, b.String())
	return err
}
