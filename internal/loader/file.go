// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/design-compiler/pkg/types"
)

// LoadFile reads a DesignDocument from a local fixture. YAML files (.yaml,
// .yml) and JSON files in DesignDocument form are decoded directly; a JSON
// file carrying a top-level "document" key is treated as a saved API
// response and mapped the same way Load maps live responses.
func LoadFile(path string) (*types.DesignDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc types.DesignDocument
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &types.Error{Kind: types.KindParse, Op: "load file", Subject: path, Err: err}
		}
		return &doc, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, &types.Error{Kind: types.KindParse, Op: "load file", Subject: path, Err: err}
	}
	if _, ok := probe["document"]; ok {
		var resp fileResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, &types.Error{Kind: types.KindParse, Op: "load file", Subject: path, Err: err}
		}
		return &types.DesignDocument{
			Name:         resp.Name,
			Version:      resp.Version,
			LastModified: parseTime(resp.LastModified),
			ThumbnailURL: resp.ThumbnailURL,
			Roots:        convertRoots(resp.Document.Children),
		}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, &types.Error{Kind: types.KindParse, Op: "load file", Subject: path, Err: err}
	}
	return &doc, nil
}
