package models

// QueryRequest for POST /api/v1/query (direct SQL)
type QueryRequest struct {
	SQL       string `json:"sql"`
	TimeoutMs int    `json:"timeout_ms"`
}

func (r *QueryRequest) SetDefaults() {
	if r.TimeoutMs == 0 {
		r.TimeoutMs = 60000
	}
	if r.TimeoutMs < 1000 {
		r.TimeoutMs = 1000
	}
	if r.TimeoutMs > 300000 {
		r.TimeoutMs = 300000
	}
}

// AskRequest for POST /api/v1/ask
type AskRequest struct {
	Question string `json:"question"`
	Timeout  int    `json:"timeout"`
}

func (r *AskRequest) SetDefaults() {
	if r.Timeout == 0 {
		r.Timeout = 300
	}
	if r.Timeout < 10 {
		r.Timeout = 10
	}
	if r.Timeout > 600 {
		r.Timeout = 600
	}
}
