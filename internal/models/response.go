package models

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// QueryResponse is returned by POST /api/v1/query
type QueryResponse struct {
	Status          string           `json:"status"`
	Data            []map[string]any `json:"data"`
	RowCount        int              `json:"row_count"`
	ExecutionTimeMs int64            `json:"execution_time_ms"`
}

// TableResponse describes one catalog table for GET /api/v1/tables
type TableResponse struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Fields      []FieldResponse `json:"fields"`
}

// FieldResponse is one column of a TableResponse
type FieldResponse struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// AskResponse is returned by POST /api/v1/ask
type AskResponse struct {
	Status       string           `json:"status"`
	Question     string           `json:"question"`
	SQLQuery     *string          `json:"sql_query"`
	QueryResults []map[string]any `json:"query_results"`
	FinalAnswer  string           `json:"final_answer"`
	Metadata     map[string]any   `json:"metadata,omitempty"`
}
