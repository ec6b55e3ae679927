// Package sqlgen compiles a structured query description into SQL text.
//
// Compilation is a pure function: no I/O, no state, same output for the same
// input. Identifiers (table, column, and join names) are interpolated
// verbatim with no quoting or escaping — model-influenced strings flow
// straight into SQL text. That injection surface is inherent to the design;
// callers that need a safety net validate the finished statement separately
// (see the security package).
package sqlgen

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// QueryStructure is the intermediate representation the model produces via
// the query_database tool. Field names match the tool's JSON schema.
type QueryStructure struct {
	Table      string      `json:"table"`
	Columns    []string    `json:"columns,omitempty"`
	Conditions []Condition `json:"conditions,omitempty"`
	Joins      []Join      `json:"joins,omitempty"`
	GroupBy    []string    `json:"group_by,omitempty"`
	OrderBy    []OrderSpec `json:"order_by,omitempty"`
	Limit      int         `json:"limit,omitempty"`
}

// Condition renders as "<column> <operator> <value>" in the WHERE clause.
// Value may be a string or a number; decode tool arguments with
// json.Decoder.UseNumber so numeric literals stay unquoted.
type Condition struct {
	Column   string `json:"column"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// Join describes one JOIN clause against the primary table.
type Join struct {
	Table string `json:"table"`
	Type  string `json:"type,omitempty"`
	On    JoinOn `json:"on"`
}

// JoinOn names the equi-join columns: left from the primary table, right
// from the joined table.
type JoinOn struct {
	LeftColumn  string `json:"left_column"`
	RightColumn string `json:"right_column"`
}

// OrderSpec is one ORDER BY term. Direction defaults to ASC.
type OrderSpec struct {
	Column    string `json:"column"`
	Direction string `json:"direction,omitempty"`
}

// MissingTableDiagnostic is the legacy placeholder emitted when no table was
// specified. It exists for diagnostic output only; Compile reports the
// condition as an error and the string must never reach an executor.
const MissingTableDiagnostic = "-- Error: No table specified"

// CompileError reports a query structure that cannot compile to SQL.
type CompileError struct {
	Reason string
}

func (e *CompileError) Error() string {
	return "compile query: " + e.Reason
}

// Compile converts a QueryStructure into a SQL string. Clauses are emitted
// in fixed SQL order regardless of input field order:
// SELECT, JOIN, WHERE, GROUP BY, ORDER BY, LIMIT.
func Compile(q QueryStructure) (string, error) {
	if q.Table == "" {
		return "", &CompileError{Reason: "missing table"}
	}

	columns := "*"
	if len(q.Columns) > 0 {
		columns = strings.Join(q.Columns, ", ")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", columns, q.Table)

	for _, join := range q.Joins {
		joinType := join.Type
		if joinType == "" {
			joinType = "INNER"
		}
		fmt.Fprintf(&sb, " %s JOIN %s ON %s.%s = %s.%s",
			strings.ToUpper(joinType), join.Table,
			q.Table, join.On.LeftColumn,
			join.Table, join.On.RightColumn)
	}

	if len(q.Conditions) > 0 {
		terms := make([]string, len(q.Conditions))
		for i, c := range q.Conditions {
			op := c.Operator
			if op == "" {
				op = "="
			}
			terms[i] = fmt.Sprintf("%s %s %s", c.Column, op, formatValue(c.Value))
		}
		// Conditions only ever AND together. OR and nested grouping are
		// deliberately unsupported in this representation.
		sb.WriteString(" WHERE " + strings.Join(terms, " AND "))
	}

	if len(q.GroupBy) > 0 {
		sb.WriteString(" GROUP BY " + strings.Join(q.GroupBy, ", "))
	}

	if len(q.OrderBy) > 0 {
		terms := make([]string, len(q.OrderBy))
		for i, o := range q.OrderBy {
			dir := o.Direction
			if dir == "" {
				dir = "ASC"
			}
			terms[i] = o.Column + " " + dir
		}
		sb.WriteString(" ORDER BY " + strings.Join(terms, ", "))
	}

	// A zero limit is indistinguishable from "no limit requested".
	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	}

	return sb.String(), nil
}

// formatValue quotes string values unless they carry a numeric literal or
// look like a sub-query; both pass through unquoted. The tool schema types
// every condition value as a string, so "2023" must still compare as a
// number. Actual numbers render as their literal form.
func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		if strings.HasPrefix(strings.ToLower(val), "select") {
			return val
		}
		if _, err := strconv.ParseFloat(val, 64); err == nil && val != "" {
			return val
		}
		return "'" + val + "'"
	case json.Number:
		return val.String()
	case nil:
		return "NULL"
	default:
		return fmt.Sprintf("%v", val)
	}
}
