// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/file-converter/pkg/types"
)

const exportLimit = 100000

// Export is the document written by ExportYAML and ExportJSON.
type Export struct {
	Conversions []types.ConversionRecord `json:"conversions" yaml:"conversions"`
	Routes      []RouteStats             `json:"routes" yaml:"routes"`
}

// ExportYAML writes the history matching opts to dataDir/export.yaml and
// returns the path.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) (string, error) {
	exp, err := s.export(ctx, opts)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(exp)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	path := filepath.Join(s.dataDir, "export.yaml")
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the history matching opts to dataDir/export.json and
// returns the path.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) (string, error) {
	exp, err := s.export(ctx, opts)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	path := filepath.Join(s.dataDir, "export.json")
	return path, os.WriteFile(path, data, 0o644)
}

func (s *Store) export(ctx context.Context, opts QueryOptions) (*Export, error) {
	opts.Limit = exportLimit
	recs, err := s.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	routes, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []types.ConversionRecord{}
	}
	return &Export{Conversions: recs, Routes: routes}, nil
}
