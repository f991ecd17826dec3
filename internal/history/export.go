// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// ExportYAML writes every record, most recently touched first, as YAML.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer) error {
	records, err := s.List(ctx)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes every record, most recently touched first, as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer) error {
	records, err := s.List(ctx)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
