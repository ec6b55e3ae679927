// Package catalog loads the human-authored schema description document and
// renders it into the prompt block the agent shows the model.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Field describes one column of a table.
type Field struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Table describes one table: free-text description plus its fields in
// document order.
type Table struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields"`
}

// Schema is the full description document. Table order matches the source
// document so rendering is deterministic. Immutable once loaded.
type Schema struct {
	Tables []Table
}

// LoadError reports a missing or malformed schema document.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load schema %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

type tableSpec struct {
	Description string  `json:"description"`
	Fields      []Field `json:"fields"`
}

// Load reads a JSON document mapping table name to description and fields.
// The decoder walks tokens rather than unmarshalling into a map so the
// document's table order survives into the rendered prompt.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("expected JSON object, got %v", tok)}
	}

	var schema Schema
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("expected table name, got %v", keyTok)}
		}

		var spec tableSpec
		if err := dec.Decode(&spec); err != nil {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("table %q: %w", name, err)}
		}
		schema.Tables = append(schema.Tables, Table{
			Name:        name,
			Description: spec.Description,
			Fields:      spec.Fields,
		})
	}

	if _, err := dec.Token(); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return &schema, nil
}

// Render formats the schema as the prompt-ready text block: a header, then
// per table a name line, a description line, and one line per field.
func (s *Schema) Render() string {
	var sb strings.Builder
	sb.WriteString("DATABASE SCHEMA:\n\n")

	for _, tbl := range s.Tables {
		sb.WriteString("Table: " + tbl.Name + "\n")
		sb.WriteString("Description: " + tbl.Description + "\n")
		sb.WriteString("Fields:\n")
		for _, f := range tbl.Fields {
			sb.WriteString(fmt.Sprintf("- %s (%s)", f.Name, f.Type))
			if f.Description != "" {
				sb.WriteString(": " + f.Description)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Table returns the named table, or nil if the document does not describe it.
func (s *Schema) Table(name string) *Table {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}
