// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sheet

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"

	"github.com/pdiddy/file-converter/internal/privacy"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakeSuggester struct {
	out   map[string]any
	err   error
	calls int
	user  string
}

func (f *fakeSuggester) Suggest(_ context.Context, _, user string, maxTokens int) (map[string]any, error) {
	f.calls++
	f.user = user
	if maxTokens != suggestTokens {
		return nil, errors.New("unexpected token budget")
	}
	return f.out, f.err
}

type fakeGate struct {
	decision privacy.Decision
	calls    int
}

func (g *fakeGate) Check(privacy.Report) (privacy.Decision, error) {
	g.calls++
	return g.decision, nil
}

const sample = "name,qty,price\nwidget,3,2.50\ngadget,12,10\n"

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func openCell(t *testing.T, path string, row, col int) *xlsx.Cell {
	t.Helper()
	wb, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, wb.Sheets)
	cell, err := wb.Sheets[0].Cell(row, col)
	require.NoError(t, err)
	return cell
}

func TestReadCSV(t *testing.T) {
	tbl, err := ReadCSV(writeCSV(t, "\ufeffa,b\n1,2,3\n4\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Header)
	assert.Equal(t, 3, tbl.Width())
	assert.Equal(t, []string{"2", ""}, tbl.Column(1))

	_, err = ReadCSV(writeCSV(t, ""))
	assert.ErrorContains(t, err, "no columns")

	_, err = ReadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestCSVToXLSXBasicRoundTrip(t *testing.T) {
	in := writeCSV(t, sample)
	out := filepath.Join(t.TempDir(), "out", "data.xlsx")
	c := NewConverter(nil, nil, quietLogger())

	got, err := c.CSVToXLSX(context.Background(), in, out, "")
	require.NoError(t, err)
	assert.Equal(t, out, got)

	qty := openCell(t, out, 2, 1)
	assert.Equal(t, xlsx.CellTypeNumeric, qty.Type())
	assert.Equal(t, "12", qty.Value)
	assert.Equal(t, xlsx.CellTypeString, openCell(t, out, 1, 0).Type())

	back := filepath.Join(t.TempDir(), "back.csv")
	_, err = c.XLSXToCSV(out, back)
	require.NoError(t, err)
	data, err := os.ReadFile(back)
	require.NoError(t, err)
	assert.Equal(t, "name,qty,price\nwidget,3,2.5\ngadget,12,10\n", string(data))
}

func TestCSVToXLSXUnknownMode(t *testing.T) {
	_, err := NewConverter(nil, nil, quietLogger()).CSVToXLSX(context.Background(), writeCSV(t, sample), "x.xlsx", "fancy")
	assert.ErrorContains(t, err, "unknown mode")
}

func TestCSVToXLSXAI(t *testing.T) {
	tests := []struct {
		name        string
		csv         string
		suggestions map[string]any
		suggestErr  error
		gate        *fakeGate
		wantCalls   int
		wantBold    bool
	}{
		{
			name:      "defaults style the header",
			csv:       sample,
			wantCalls: 1,
			wantBold:  true,
		},
		{
			name:        "header bold disabled",
			csv:         sample,
			suggestions: map[string]any{"header_style": map[string]any{"bold": false}},
			wantCalls:   1,
		},
		{
			name:       "AI failure keeps default styling",
			csv:        sample,
			suggestErr: errors.New("rate limited"),
			wantCalls:  1,
			wantBold:   true,
		},
		{
			name:      "declined sensitive data falls back to basic",
			csv:       "name,email\nann,ann@example.com\n",
			gate:      &fakeGate{decision: privacy.Declined},
			wantCalls: 0,
		},
		{
			name:      "released sensitive data is enhanced",
			csv:       "name,email\nann,ann@example.com\n",
			gate:      &fakeGate{decision: privacy.Proceed},
			wantCalls: 1,
			wantBold:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSuggester{out: tt.suggestions, err: tt.suggestErr}
			var gate Gate
			if tt.gate != nil {
				gate = tt.gate
			}
			out := filepath.Join(t.TempDir(), "data.xlsx")
			_, err := NewConverter(s, gate, quietLogger()).CSVToXLSX(context.Background(), writeCSV(t, tt.csv), out, ModeAI)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCalls, s.calls)
			if tt.gate != nil {
				assert.Equal(t, 1, tt.gate.calls)
			}

			header := openCell(t, out, 0, 0)
			assert.Equal(t, "name", header.Value)
			assert.Equal(t, tt.wantBold, header.GetStyle().Font.Bold)
		})
	}
}

func TestSuggestPromptCarriesColumns(t *testing.T) {
	s := &fakeSuggester{}
	_, err := NewConverter(s, nil, quietLogger()).CSVToXLSX(context.Background(), writeCSV(t, sample), filepath.Join(t.TempDir(), "d.xlsx"), ModeAI)
	require.NoError(t, err)
	assert.Contains(t, s.user, `"widget"`)
	assert.Contains(t, s.user, `"dtype":"float64"`)
}

func TestColumns(t *testing.T) {
	tbl := &Table{
		Header: []string{"id", "score", "label", "empty"},
		Rows: [][]string{
			{"1", "1.5", "a", ""},
			{"2", "2", "a", ""},
			{"2", "", "inf", ""},
		},
	}
	cols := tbl.Columns()
	assert.Equal(t, ColumnInfo{Type: "int64", UniqueCount: 2, SampleValues: []string{"1", "2", "2"}}, cols["id"])
	assert.Equal(t, ColumnInfo{Type: "float64", NullCount: 1, UniqueCount: 2, SampleValues: []string{"1.5", "2"}}, cols["score"])
	assert.Equal(t, "object", cols["label"].Type)
	assert.Equal(t, 3, cols["empty"].NullCount)
}

func TestColumnWidths(t *testing.T) {
	long := strings.Repeat("x", 80)
	tbl := &Table{Header: []string{"id", "description"}, Rows: [][]string{{"12345", long}, {"1"}}}
	assert.Equal(t, []float64{7, 50}, columnWidths(tbl))
}

func TestHeaderBold(t *testing.T) {
	assert.True(t, headerBold(nil))
	assert.True(t, headerBold(map[string]any{"header_style": "loud"}))
	assert.True(t, headerBold(map[string]any{"header_style": map[string]any{"bg_color": "#ccc"}}))
	assert.False(t, headerBold(map[string]any{"header_style": map[string]any{"bold": false}}))
}

func TestSetValue(t *testing.T) {
	tests := []struct {
		in   string
		want xlsx.CellType
	}{
		{"42", xlsx.CellTypeNumeric},
		{"-3.25", xlsx.CellTypeNumeric},
		{"1e3", xlsx.CellTypeNumeric},
		{"inf", xlsx.CellTypeString},
		{"0x1p-2", xlsx.CellTypeString},
		{"12 apples", xlsx.CellTypeString},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f := xlsx.NewFile()
			sh, err := f.AddSheet("s")
			require.NoError(t, err)
			cell := sh.AddRow().AddCell()
			setValue(cell, tt.in)
			assert.Equal(t, tt.want, cell.Type())
		})
	}
}
