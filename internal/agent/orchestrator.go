// Package agent drives the model through the bounded question-answering
// protocol: propose a query, compile it, execute it, observe the rows, then
// answer in plain language. At most two query/execute round trips happen per
// question; the only transitions are the ones written here, so the model
// cannot keep the loop alive by requesting more tools.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sqlsage/sqlsage/internal/catalog"
	"github.com/sqlsage/sqlsage/internal/database"
	"github.com/sqlsage/sqlsage/internal/llm"
	"github.com/sqlsage/sqlsage/internal/sqlgen"
	"github.com/sqlsage/sqlsage/internal/tools"
)

// Executor runs SQL and reports failures as data rows, never as errors.
type Executor interface {
	Execute(ctx context.Context, sql string) []database.Row
}

// Result is the outcome of one question. SQLQuery is the statement actually
// executed (the forced call's SQL, not necessarily the compiler's output);
// it and QueryResults stay nil when the model answered without querying.
type Result struct {
	Question     string         `json:"question"`
	SQLQuery     *string        `json:"sql_query"`
	QueryResults []database.Row `json:"query_results"`
	FinalAnswer  string         `json:"final_answer"`
}

// Orchestrator owns one question-answering protocol run at a time. The
// conversation it builds is per-call and discarded with the result; nothing
// persists across questions.
type Orchestrator struct {
	completer llm.Completer
	db        Executor
	store     *catalog.Store
}

// NewOrchestrator wires the model capability, the executor, and the schema
// store together.
func NewOrchestrator(completer llm.Completer, db Executor, store *catalog.Store) *Orchestrator {
	return &Orchestrator{completer: completer, db: db, store: store}
}

func systemPrompt(schema *catalog.Schema) string {
	return "You are a helpful database assistant that helps users query a database. Here is the database schema:\n\n" + schema.Render()
}

// Answer runs the protocol for one question. Strictly sequential: every
// model invocation and database call blocks in turn.
func (o *Orchestrator) Answer(ctx context.Context, question string) (*Result, error) {
	system := systemPrompt(o.store.Get())
	conv := []llm.Message{llm.UserMessage(question)}
	result := &Result{Question: question}

	resp, err := o.completer.Complete(ctx, llm.Request{
		System:     system,
		Messages:   conv,
		Tools:      tools.All(),
		ToolChoice: llm.ChooseAuto(),
	})
	if err != nil {
		return nil, fmt.Errorf("query intent call: %w", err)
	}
	// The model's own framing of its action is preserved verbatim for its
	// next turn, tool-call metadata included.
	conv = append(conv, resp.Message)

	switch intent := decodeIntent(resp.Message).(type) {
	case NoAction:
		log.Debug().Str("stop_reason", resp.StopReason).Msg("model answered without querying")
		result.FinalAnswer = intent.Content
		return result, nil

	case StructuredQuery:
		conv, err = o.compileAndForce(ctx, system, conv, intent, result)
		if err != nil {
			return nil, err
		}

	case RawQuery:
		log.Info().Str("sql", intent.SQL).Msg("executing model-supplied SQL")
		conv = o.runQuery(ctx, conv, intent.Call.ID, intent.SQL, result)
	}

	final, err := o.completer.Complete(ctx, llm.Request{
		System:     system,
		Messages:   conv,
		ToolChoice: llm.ChooseNone(),
	})
	if err != nil {
		return nil, fmt.Errorf("final answer call: %w", err)
	}
	result.FinalAnswer = final.Message.Content
	return result, nil
}

// compileAndForce compiles the structured query, reports the SQL (or the
// compile failure) back as a tool result, then forces an execute_query call.
// The SQL the model supplies under force is what actually runs; the compiled
// statement is advisory context it may revise.
func (o *Orchestrator) compileAndForce(ctx context.Context, system string, conv []llm.Message, intent StructuredQuery, result *Result) ([]llm.Message, error) {
	compiled, compileErr := sqlgen.Compile(intent.Query)
	if compileErr != nil {
		// Invalid SQL never reaches the executor. The model sees the legacy
		// diagnostic plus the error text and gets its forced turn to write a
		// correct statement itself.
		log.Warn().Err(compileErr).Msg("query structure did not compile")
		payload, _ := json.Marshal(map[string]string{
			"error": compileErr.Error(),
			"sql":   sqlgen.MissingTableDiagnostic,
		})
		conv = append(conv, llm.ToolResult(intent.Call.ID, string(payload), true))
	} else {
		log.Info().Str("sql", compiled).Msg("compiled SQL query")
		payload, _ := json.Marshal(map[string]string{"sql": compiled})
		conv = append(conv, llm.ToolResult(intent.Call.ID, string(payload), false))
	}

	resp, err := o.completer.Complete(ctx, llm.Request{
		System:     system,
		Messages:   conv,
		Tools:      tools.All(),
		ToolChoice: llm.ChooseTool(tools.ExecuteQueryName),
	})
	if err != nil {
		return nil, fmt.Errorf("forced execute call: %w", err)
	}
	conv = append(conv, resp.Message)

	raw, ok := decodeIntent(resp.Message).(RawQuery)
	if !ok {
		// Forced choice not honored; nothing to execute.
		log.Warn().Str("stop_reason", resp.StopReason).Msg("forced execute_query call missing, skipping execution")
		return conv, nil
	}

	if raw.SQL != compiled {
		log.Debug().Str("compiled", compiled).Str("executed", raw.SQL).Msg("model revised SQL before execution")
	}
	return o.runQuery(ctx, conv, raw.Call.ID, raw.SQL, result), nil
}

// runQuery executes sql, records it on the result, and appends the rows as a
// tool result. Execution failures arrive as {"error": ...} rows and travel
// the same path, so the model can react to them.
func (o *Orchestrator) runQuery(ctx context.Context, conv []llm.Message, callID, sql string, result *Result) []llm.Message {
	rows := o.db.Execute(ctx, sql)
	if rows == nil {
		rows = []database.Row{}
	}
	result.SQLQuery = &sql
	result.QueryResults = rows

	payload, err := json.Marshal(rows)
	if err != nil {
		payload = []byte(`[{"error":"failed to serialize query results"}]`)
	}
	log.Debug().Int("rows", len(rows)).Msg("query executed")
	return append(conv, llm.ToolResult(callID, string(payload), false))
}
