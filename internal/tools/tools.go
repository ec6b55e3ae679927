// Package tools defines the two function schemas the agent exposes to the
// model: query_database for structured query descriptions and execute_query
// for raw SQL.
package tools

import "github.com/sqlsage/sqlsage/internal/llm"

// Tool names, shared with the orchestrator's intent decoding.
const (
	QueryDatabaseName = "query_database"
	ExecuteQueryName  = "execute_query"
)

// QueryDatabase describes the structured-query tool. The argument object is
// QueryStructure-shaped; the agent compiles it to SQL rather than executing
// anything directly.
func QueryDatabase() llm.Tool {
	return llm.Tool{
		Name:        QueryDatabaseName,
		Description: "Generate a database query structure based on the user's question",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"table": map[string]interface{}{
					"type":        "string",
					"description": "The primary table to query",
				},
				"columns": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "List of columns to select",
				},
				"conditions": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"column": map[string]interface{}{
								"type":        "string",
								"description": "Column name for the condition",
							},
							"operator": map[string]interface{}{
								"type":        "string",
								"description": "Operator for the condition (=, >, <, etc.)",
							},
							"value": map[string]interface{}{
								"type":        "string",
								"description": "Value to compare against",
							},
						},
						"required": []string{"column", "operator", "value"},
					},
					"description": "Conditions for the WHERE clause",
				},
				"joins": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"table": map[string]interface{}{
								"type":        "string",
								"description": "Table to join with",
							},
							"type": map[string]interface{}{
								"type":        "string",
								"description": "Type of join (INNER, LEFT, RIGHT, etc.)",
							},
							"on": map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"left_column": map[string]interface{}{
										"type":        "string",
										"description": "Column from the primary table",
									},
									"right_column": map[string]interface{}{
										"type":        "string",
										"description": "Column from the joined table",
									},
								},
								"required": []string{"left_column", "right_column"},
							},
						},
						"required": []string{"table", "on"},
					},
					"description": "Joins with other tables",
				},
				"group_by": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Columns to group by",
				},
				"order_by": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"column": map[string]interface{}{
								"type":        "string",
								"description": "Column to order by",
							},
							"direction": map[string]interface{}{
								"type":        "string",
								"description": "Direction (ASC or DESC)",
							},
						},
						"required": []string{"column"},
					},
					"description": "Columns to order by",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Limit the number of results",
				},
			},
			"required": []string{"table"},
		},
	}
}

// ExecuteQuery describes the raw-SQL tool.
func ExecuteQuery() llm.Tool {
	return llm.Tool{
		Name:        ExecuteQueryName,
		Description: "Execute a SQL query against the database",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "The SQL query to execute",
				},
			},
			"required": []string{"query"},
		},
	}
}

// All returns both tools in the order they are offered to the model.
func All() []llm.Tool {
	return []llm.Tool{QueryDatabase(), ExecuteQuery()}
}
