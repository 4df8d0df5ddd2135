// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/file-converter/pkg/types"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.HistoryConfig{Enabled: true, DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recs := []types.ConversionRecord{
		{Input: "a.pdf", Output: "a.docx", SourceExt: "pdf", TargetExt: "docx", Mode: "text", Status: types.ConversionDone, Bytes: 2048, Duration: 200 * time.Millisecond, CreatedAt: base},
		{Input: "b.pdf", Output: "b.docx", SourceExt: "pdf", TargetExt: "docx", Mode: "ocr", Status: types.ConversionFailed, Error: "tesseract missing", Duration: 400 * time.Millisecond, CreatedAt: base.Add(time.Minute)},
		{Input: "c.csv", Output: "c.xlsx", SourceExt: "csv", TargetExt: "xlsx", Mode: "basic", Status: types.ConversionDone, Bytes: 512, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, r := range recs {
		if err := s.Record(context.Background(), r); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
}

func TestNewStoreRequiresDir(t *testing.T) {
	if _, err := NewStore(types.HistoryConfig{}); err == nil {
		t.Fatal("expected error for empty data dir")
	}
}

func TestNewStoreReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(types.HistoryConfig{DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Record(context.Background(), types.ConversionRecord{Input: "x.md", SourceExt: "md", TargetExt: "html", Status: types.ConversionDone}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = NewStore(types.HistoryConfig{DataDir: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	recs, err := s.List(context.Background(), QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records after reopen, want 1", len(recs))
	}
	if _, err := os.Stat(s.Path()); err != nil {
		t.Errorf("database file: %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := setupStore(t)
	seed(t, s)

	recs, err := s.List(context.Background(), QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	want := []string{"c.csv", "b.pdf", "a.pdf"}
	for i, r := range recs {
		if r.Input != want[i] {
			t.Errorf("record %d input = %q, want %q", i, r.Input, want[i])
		}
	}
	if recs[1].Error != "tesseract missing" || recs[1].Status != types.ConversionFailed {
		t.Errorf("failed record not round-tripped: %+v", recs[1])
	}
	if recs[1].Duration != 400*time.Millisecond {
		t.Errorf("duration = %v", recs[1].Duration)
	}
	if recs[0].ID == 0 {
		t.Error("expected ID to be set")
	}
}

func TestListFilters(t *testing.T) {
	s := setupStore(t)
	seed(t, s)
	ctx := context.Background()

	tests := []struct {
		name string
		opts QueryOptions
		want int
	}{
		{"source", QueryOptions{Source: "pdf"}, 2},
		{"source with dot and case", QueryOptions{Source: ".PDF"}, 2},
		{"route", QueryOptions{Source: "csv", Target: "xlsx"}, 1},
		{"status", QueryOptions{Status: types.ConversionFailed}, 1},
		{"limit", QueryOptions{Limit: 2}, 2},
		{"no match", QueryOptions{Target: "html"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := s.List(ctx, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if len(recs) != tt.want {
				t.Errorf("got %d records, want %d", len(recs), tt.want)
			}
		})
	}
}

func TestStats(t *testing.T) {
	s := setupStore(t)
	seed(t, s)

	stats, err := s.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 2 {
		t.Fatalf("got %d routes, want 2", len(stats))
	}
	pdf := stats[0]
	if pdf.Source != "pdf" || pdf.Target != "docx" {
		t.Fatalf("first route = %s→%s, want pdf→docx", pdf.Source, pdf.Target)
	}
	if pdf.Total != 2 || pdf.Failed != 1 || pdf.Bytes != 2048 {
		t.Errorf("pdf route = %+v", pdf)
	}
	if pdf.AvgDuration != 300*time.Millisecond {
		t.Errorf("avg duration = %v, want 300ms", pdf.AvgDuration)
	}
}

func TestRecordAudit(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	entry := types.AuditEntry{TotalPages: 2, TotalBlocks: 14, Data: &types.Layout{}}
	if err := s.RecordAudit(ctx, entry); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordAudit(ctx, types.AuditEntry{}); err != nil {
		t.Fatal(err)
	}
	n, err := s.AuditCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("audit count = %d, want 2", n)
	}
}

func TestExport(t *testing.T) {
	s := setupStore(t)
	seed(t, s)
	ctx := context.Background()

	jsonPath, err := s.ExportJSON(ctx, QueryOptions{Source: "pdf"})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var exp Export
	if err := json.Unmarshal(data, &exp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(exp.Conversions) != 2 || len(exp.Routes) != 2 {
		t.Errorf("export = %d conversions, %d routes", len(exp.Conversions), len(exp.Routes))
	}

	yamlPath, err := s.ExportYAML(ctx, QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(yamlPath, "export.yaml") {
		t.Errorf("yaml path = %s", yamlPath)
	}
	data, err = os.ReadFile(yamlPath)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if convs, ok := doc["conversions"].([]any); !ok || len(convs) != 3 {
		t.Errorf("yaml conversions = %v", doc["conversions"])
	}
}

func TestExportEmpty(t *testing.T) {
	s := setupStore(t)
	path, err := s.ExportJSON(context.Background(), QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"conversions": []`) {
		t.Errorf("empty export should list no conversions, got %s", data)
	}
}
