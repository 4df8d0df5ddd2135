// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sheet

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx/v3"

	"github.com/pdiddy/file-converter/internal/ai"
	"github.com/pdiddy/file-converter/internal/privacy"
)

const (
	privacySampleRows = 20
	previewRows       = 10
	sampleValues      = 5
	suggestTokens     = 2000
	headerFill        = "FFD3D3D3"
)

// Suggester asks the AI service for formatting suggestions.
type Suggester interface {
	Suggest(ctx context.Context, system, user string, maxTokens int) (map[string]any, error)
}

// Gate decides whether sensitive rows may be sent to the AI service.
type Gate interface {
	Check(r privacy.Report) (privacy.Decision, error)
}

// ColumnInfo summarises one CSV column.
type ColumnInfo struct {
	Type         string   `json:"dtype"`
	NullCount    int      `json:"null_count"`
	UniqueCount  int      `json:"unique_count"`
	SampleValues []string `json:"sample_values"`
}

// enhanced writes a workbook with a styled header, sized columns and a
// frozen header row. Sensitive data the user does not release, and any AI
// failure, degrade to plain formatting rather than failing the conversion.
func (c *Converter) enhanced(ctx context.Context, t *Table, output string, log logrus.FieldLogger) error {
	if c.ai == nil {
		log.Warn("AI mode unavailable, falling back to basic mode")
		return c.basic(t, output)
	}

	log.Info("checking CSV sample for sensitive data")
	report := privacy.Check(t.Text(privacySampleRows))
	if report.Sensitive() && c.gate != nil {
		d, err := c.gate.Check(report)
		if err != nil {
			return err
		}
		if d != privacy.Proceed {
			log.WithField("decision", d).Info("using basic mode instead")
			return c.basic(t, output)
		}
	}

	log.Info("requesting AI formatting analysis")
	suggestions := c.suggest(ctx, t, log)

	wb, err := buildWorkbook(t)
	if err != nil {
		return err
	}
	if headerBold(suggestions) {
		header, err := wb.sheet.Row(0)
		if err != nil {
			return err
		}
		style := headerStyle()
		err = header.ForEachCell(func(cell *xlsx.Cell) error {
			cell.SetStyle(style)
			return nil
		})
		if err != nil {
			return err
		}
	}
	for i, w := range columnWidths(t) {
		wb.sheet.SetColWidth(i+1, i+1, w)
	}
	wb.sheet.SheetViews = []xlsx.SheetView{{
		Pane: &xlsx.Pane{YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft", State: "frozen"},
	}}
	return save(wb, output)
}

func (c *Converter) suggest(ctx context.Context, t *Table, log logrus.FieldLogger) map[string]any {
	preview, _ := json.Marshal(t.Records(previewRows))
	columns, _ := json.Marshal(t.Columns())
	prompt, err := ai.CSVPrompt(string(preview), string(columns))
	if err != nil {
		log.WithError(err).Warn("AI analysis failed, using basic formatting")
		return nil
	}
	out, err := c.ai.Suggest(ctx, ai.CSVEnhancementSystemPrompt, prompt, suggestTokens)
	if err != nil {
		log.WithError(err).Warn("AI analysis failed, using basic formatting")
		return nil
	}
	return out
}

// headerBold reads header_style.bold, defaulting to true.
func headerBold(s map[string]any) bool {
	hs, ok := s["header_style"].(map[string]any)
	if !ok {
		return true
	}
	b, ok := hs["bold"].(bool)
	return !ok || b
}

func headerStyle() *xlsx.Style {
	s := xlsx.NewStyle()
	s.Font = *xlsx.NewFont(11, "Calibri")
	s.Font.Bold = true
	s.Fill = *xlsx.NewFill("solid", headerFill, headerFill)
	s.Alignment.Horizontal = "center"
	s.Alignment.Vertical = "center"
	s.ApplyFont = true
	s.ApplyFill = true
	s.ApplyAlignment = true
	return s
}

// Text renders the header and the first n rows as tab-separated lines.
func (t *Table) Text(n int) string {
	var b strings.Builder
	b.WriteString(strings.Join(t.Header, "\t"))
	for _, row := range t.Rows[:min(n, len(t.Rows))] {
		b.WriteByte('\n')
		b.WriteString(strings.Join(row, "\t"))
	}
	return b.String()
}

// Records returns the first n rows keyed by header name.
func (t *Table) Records(n int) []map[string]string {
	out := make([]map[string]string, 0, min(n, len(t.Rows)))
	for _, row := range t.Rows[:min(n, len(t.Rows))] {
		rec := make(map[string]string, len(t.Header))
		for i, h := range t.Header {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

// Columns describes each header column for the AI prompt.
func (t *Table) Columns() map[string]ColumnInfo {
	out := make(map[string]ColumnInfo, len(t.Header))
	for i, h := range t.Header {
		info := ColumnInfo{Type: "int64", SampleValues: []string{}}
		seen := map[string]bool{}
		values := 0
		for _, v := range t.Column(i) {
			v = strings.TrimSpace(v)
			if v == "" {
				info.NullCount++
				continue
			}
			values++
			if !seen[v] {
				seen[v] = true
				info.UniqueCount++
			}
			if len(info.SampleValues) < sampleValues {
				info.SampleValues = append(info.SampleValues, v)
			}
			info.Type = widen(info.Type, v)
		}
		if values == 0 {
			info.Type = "float64"
		}
		out[h] = info
	}
	return out
}

// widen moves a column type from int64 to float64 to object as values
// stop parsing.
func widen(current, v string) string {
	switch current {
	case "int64":
		if _, err := strconv.Atoi(v); err == nil {
			return current
		}
		fallthrough
	case "float64":
		if _, err := strconv.ParseFloat(v, 64); err == nil && isDecimal(v) {
			return "float64"
		}
	}
	return "object"
}
