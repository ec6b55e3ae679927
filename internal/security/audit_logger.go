package security

import (
	"github.com/rs/zerolog/log"
)

// AuditLogger logs security-relevant events with hashed identifiers
type AuditLogger struct {
	enabled bool
}

func NewAuditLogger(enabled bool) *AuditLogger {
	return &AuditLogger{enabled: enabled}
}

// LogQuery records a direct SQL execution event
func (a *AuditLogger) LogQuery(
	sql, apiKey string,
	executionTimeMs int64,
	rowCount int,
	success bool,
	errMsg string,
) {
	if !a.enabled {
		return
	}
	sqlHash := hashStr(sql)[:16]
	keyHash := hashStr(apiKey)[:16]

	evt := log.Info().
		Str("event", "query_audit").
		Str("sql_hash", sqlHash).
		Str("api_key_hash", keyHash).
		Int64("execution_time_ms", executionTimeMs).
		Int("row_count", rowCount).
		Bool("success", success)

	if errMsg != "" {
		evt = evt.Str("error", errMsg)
	}
	evt.Msg("audit")
}

// LogAgentRequest records an agent question-answering event
func (a *AuditLogger) LogAgentRequest(
	question, apiKey, executedSQL string,
	answered bool,
	executionTimeMs int64,
) {
	if !a.enabled {
		return
	}
	questionHash := hashStr(question)[:16]
	keyHash := hashStr(apiKey)[:16]
	sqlHash := ""
	if executedSQL != "" {
		sqlHash = hashStr(executedSQL)[:16]
	}

	log.Info().
		Str("event", "agent_audit").
		Str("question_hash", questionHash).
		Str("api_key_hash", keyHash).
		Str("sql_hash", sqlHash).
		Bool("answered", answered).
		Int64("execution_time_ms", executionTimeMs).
		Msg("agent audit")
}
