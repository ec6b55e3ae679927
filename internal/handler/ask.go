package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sqlsage/sqlsage/internal/agent"
	"github.com/sqlsage/sqlsage/internal/models"
	"github.com/sqlsage/sqlsage/internal/security"
)

// Answerer runs the question-answering protocol for one question.
type Answerer interface {
	Answer(ctx context.Context, question string) (*agent.Result, error)
}

// AskHandler handles POST /api/v1/ask: security checks, then the agent
// protocol, then masking and audit.
type AskHandler struct {
	answerer      Answerer
	piiDetector   *security.PIIDetector
	promptVal     *security.PromptValidator
	dataMasker    *security.DataMasker
	auditLogger   *security.AuditLogger
	model         string
	enableMasking bool
	enablePII     bool
}

func NewAskHandler(
	answerer Answerer,
	piiDetector *security.PIIDetector,
	promptVal *security.PromptValidator,
	dataMasker *security.DataMasker,
	auditLogger *security.AuditLogger,
	model string,
	enableMasking, enablePII bool,
) *AskHandler {
	return &AskHandler{
		answerer:      answerer,
		piiDetector:   piiDetector,
		promptVal:     promptVal,
		dataMasker:    dataMasker,
		auditLogger:   auditLogger,
		model:         model,
		enableMasking: enableMasking,
		enablePII:     enablePII,
	}
}

// Ask handles POST /api/v1/ask
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	if h.answerer == nil {
		models.WriteError(w, http.StatusServiceUnavailable, "agent is not configured")
		return
	}

	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.SetDefaults()

	if req.Question == "" {
		models.WriteError(w, http.StatusBadRequest, "question is required")
		return
	}

	apiKey := r.Header.Get("X-API-Key")
	start := time.Now()
	metadata := map[string]any{"model": h.model}

	if h.enablePII {
		if found, kw := h.piiDetector.Detect(req.Question); found {
			metadata["pii_check"] = "blocked: " + kw
			models.WriteError(w, http.StatusBadRequest, "PII detected in question: "+kw)
			return
		}
		metadata["pii_check"] = "passed"
	}

	if vr := h.promptVal.Validate(req.Question); !vr.Valid {
		metadata["prompt_validation"] = "blocked: " + vr.Message
		models.WriteError(w, http.StatusBadRequest, "question validation failed: "+vr.Message)
		return
	}
	metadata["prompt_validation"] = "passed"

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(req.Timeout)*time.Second)
	defer cancel()

	result, err := h.answerer.Answer(ctx, req.Question)
	if err != nil {
		log.Error().Err(err).Msg("agent run failed")
		models.WriteError(w, http.StatusInternalServerError, "agent run: "+err.Error())
		return
	}

	results := result.QueryResults
	if results != nil && h.enableMasking {
		results = h.dataMasker.MaskRows(results)
		metadata["data_masking"] = "applied"
	}

	executedSQL := ""
	if result.SQLQuery != nil {
		executedSQL = *result.SQLQuery
	}
	h.auditLogger.LogAgentRequest(req.Question, apiKey, executedSQL, result.FinalAnswer != "", time.Since(start).Milliseconds())

	models.WriteJSON(w, http.StatusOK, models.AskResponse{
		Status:       "success",
		Question:     result.Question,
		SQLQuery:     result.SQLQuery,
		QueryResults: results,
		FinalAnswer:  result.FinalAnswer,
		Metadata:     metadata,
	})
}
