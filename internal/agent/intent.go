package agent

import (
	"bytes"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/sqlsage/sqlsage/internal/llm"
	"github.com/sqlsage/sqlsage/internal/sqlgen"
	"github.com/sqlsage/sqlsage/internal/tools"
)

// Intent is what the model decided to do with its turn: answer directly,
// propose a structured query, or run raw SQL.
type Intent interface {
	isIntent()
}

// NoAction carries an answer given without any tool use.
type NoAction struct {
	Content string
}

// StructuredQuery carries a decoded query_database invocation.
type StructuredQuery struct {
	Call  llm.ToolCall
	Query sqlgen.QueryStructure
}

// RawQuery carries an execute_query invocation.
type RawQuery struct {
	Call llm.ToolCall
	SQL  string
}

func (NoAction) isIntent()        {}
func (StructuredQuery) isIntent() {}
func (RawQuery) isIntent()       {}

// decodeIntent inspects the model's tool calls in order and returns the
// first recognizable intent. Unknown tool names and malformed arguments are
// ignored rather than fatal: the user should still get an answer, so a
// protocol slip degrades to NoAction at worst.
func decodeIntent(msg llm.Message) Intent {
	for _, tc := range msg.ToolCalls {
		switch tc.Name {
		case tools.QueryDatabaseName:
			var q sqlgen.QueryStructure
			if err := decodeArgs(tc.Arguments, &q); err != nil {
				log.Warn().Err(err).Str("tool", tc.Name).Msg("malformed tool arguments, ignoring")
				continue
			}
			return StructuredQuery{Call: tc, Query: q}
		case tools.ExecuteQueryName:
			var args struct {
				Query string `json:"query"`
			}
			if err := decodeArgs(tc.Arguments, &args); err != nil || args.Query == "" {
				log.Warn().Err(err).Str("tool", tc.Name).Msg("malformed tool arguments, ignoring")
				continue
			}
			return RawQuery{Call: tc, SQL: args.Query}
		default:
			log.Warn().Str("tool", tc.Name).Msg("unrecognized tool requested, ignoring")
		}
	}
	return NoAction{Content: msg.Content}
}

// decodeArgs unmarshals tool arguments with UseNumber so numeric condition
// values keep their literal form through compilation.
func decodeArgs(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}
