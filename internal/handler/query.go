package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sqlsage/sqlsage/internal/database"
	"github.com/sqlsage/sqlsage/internal/models"
	"github.com/sqlsage/sqlsage/internal/security"
)

// Executor runs SQL and reports failures as data rows.
type Executor interface {
	Execute(ctx context.Context, sql string) []database.Row
}

// QueryHandler handles POST /api/v1/query (direct SQL). Unlike the agent
// path, direct SQL from clients goes through the SELECT-only validator.
type QueryHandler struct {
	db            Executor
	sqlVal        *security.SQLValidator
	usage         *security.UsageTracker
	dataMasker    *security.DataMasker
	auditLogger   *security.AuditLogger
	enableMasking bool
}

func NewQueryHandler(
	db Executor,
	sqlVal *security.SQLValidator,
	usage *security.UsageTracker,
	dataMasker *security.DataMasker,
	auditLogger *security.AuditLogger,
	enableMasking bool,
) *QueryHandler {
	return &QueryHandler{
		db:            db,
		sqlVal:        sqlVal,
		usage:         usage,
		dataMasker:    dataMasker,
		auditLogger:   auditLogger,
		enableMasking: enableMasking,
	}
}

// Execute handles POST /api/v1/query
func (h *QueryHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.SetDefaults()

	if errMsg := h.sqlVal.Validate(req.SQL); errMsg != "" {
		models.WriteError(w, http.StatusBadRequest, "SQL validation failed: "+errMsg)
		return
	}

	apiKey := r.Header.Get("X-API-Key")

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(req.TimeoutMs)*time.Millisecond)
	defer cancel()

	start := time.Now()
	rows := h.db.Execute(ctx, req.SQL)
	execMs := time.Since(start).Milliseconds()

	// The executor folds engine failures into a single error row.
	if len(rows) == 1 {
		if msg, ok := rows[0][database.ErrorColumn].(string); ok {
			h.auditLogger.LogQuery(req.SQL, apiKey, execMs, 0, false, msg)
			models.WriteError(w, http.StatusBadRequest, "query failed: "+msg)
			return
		}
	}

	if ok, limitMsg := h.usage.CheckLimits(len(rows), apiKey); !ok {
		h.auditLogger.LogQuery(req.SQL, apiKey, execMs, len(rows), false, limitMsg)
		models.WriteError(w, http.StatusRequestEntityTooLarge, limitMsg)
		return
	}

	if h.enableMasking {
		rows = h.dataMasker.MaskRows(rows)
	}

	h.usage.LogQueryUsage(req.SQL, len(rows), apiKey, execMs)
	h.auditLogger.LogQuery(req.SQL, apiKey, execMs, len(rows), true, "")

	models.WriteJSON(w, http.StatusOK, models.QueryResponse{
		Status:          "success",
		Data:            rows,
		RowCount:        len(rows),
		ExecutionTimeMs: execMs,
	})
}
