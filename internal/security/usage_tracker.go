package security

import (
	"crypto/sha256"
	"fmt"

	"github.com/rs/zerolog/log"
)

// UsageTracker enforces a result-row budget on query responses. The embedded
// engine bills nothing, so row volume stands in for query cost: a runaway
// SELECT is truncated at the API boundary instead of shipping the whole
// table to a client.
type UsageTracker struct {
	maxRows int
}

func NewUsageTracker(maxRows int) *UsageTracker {
	return &UsageTracker{maxRows: maxRows}
}

// CheckLimits returns false and a message when rowCount exceeds the budget.
func (u *UsageTracker) CheckLimits(rowCount int, apiKey string) (bool, string) {
	if rowCount <= u.maxRows {
		return true, ""
	}
	return false, fmt.Sprintf(
		"Result size limit exceeded. Rows: %d, Limit: %d",
		rowCount, u.maxRows,
	)
}

// LogQueryUsage logs per-query usage with hashed identifiers.
func (u *UsageTracker) LogQueryUsage(sql string, rowCount int, apiKey string, durationMs int64) {
	sqlHash := hashStr(sql)[:16]
	keyHash := hashStr(apiKey)[:16]

	log.Info().
		Str("event", "query_usage").
		Str("sql_hash", sqlHash).
		Str("api_key_hash", keyHash).
		Int("row_count", rowCount).
		Int64("duration_ms", durationMs).
		Msg("query usage")
}

func hashStr(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h)
}
