package main

import (
	"encoding/json"
	"fmt"
	"io"

	"panchayat-docstore/pkg/docstore"

	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func printDocument(w io.Writer, format string, snap *docstore.DocumentSnapshot) error {
	if format == formatYAML {
		return writeYAML(w, snap.Data())
	}
	// Object keeps the stored field order
	return writeJSON(w, snap.Object())
}

func printQuery(w io.Writer, format string, snap *docstore.QuerySnapshot) error {
	if format == formatYAML {
		docs := make([]map[string]any, 0, snap.Size())
		for _, d := range snap.Docs {
			docs = append(docs, d.Data())
		}
		return writeYAML(w, docs)
	}
	docs := make([]any, 0, snap.Size())
	for _, d := range snap.Docs {
		docs = append(docs, d.Object())
	}
	return writeJSON(w, docs)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
