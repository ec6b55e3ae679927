package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/sqlsage/sqlsage/internal/agent"
	"github.com/sqlsage/sqlsage/internal/catalog"
	"github.com/sqlsage/sqlsage/internal/database"
	"github.com/sqlsage/sqlsage/internal/handler"
	"github.com/sqlsage/sqlsage/internal/llm"
	"github.com/sqlsage/sqlsage/internal/middleware"
	"github.com/sqlsage/sqlsage/internal/security"
)

// setupRoutes returns (router, db, error) so db can be closed on shutdown
func (s *Server) setupRoutes() (http.Handler, *database.Service, error) {
	cfg := s.cfg

	// ─── Services ───────────────────────────────────────────────────────────────
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database %q: %w", cfg.DatabasePath, err)
	}

	store, err := catalog.NewStore(cfg.SchemaPath)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("load schema catalog: %w", err)
	}

	// ─── Security ───────────────────────────────────────────────────────────────
	piiDetector := security.NewPIIDetector(cfg.PIIKeywords)
	promptVal := security.NewPromptValidator()
	sqlVal := security.NewSQLValidator()
	usage := security.NewUsageTracker(cfg.MaxResultRows)
	dataMasker := security.NewDataMasker(cfg.SensitiveColumns)
	auditLogger := security.NewAuditLogger(cfg.EnableAuditLogging)

	// ─── AI Agent ────────────────────────────────────────────────────────────────
	var orchestrator *agent.Orchestrator
	model := cfg.Model
	if cfg.AnthropicAPIKey != "" {
		client := llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.Model, cfg.AnthropicBaseURL)
		model = client.Model()
		orchestrator = agent.NewOrchestrator(client, db, store)
	} else {
		log.Warn().Msg("ANTHROPIC_API_KEY not set - AI agent disabled")
	}

	log.Info().
		Bool("agent_enabled", orchestrator != nil).
		Bool("auth_enabled", cfg.EnableAuth && len(cfg.APIKeys) > 0).
		Bool("data_masking", cfg.EnableDataMasking).
		Bool("audit_logging", cfg.EnableAuditLogging).
		Bool("pii_detection", cfg.EnablePIIDetection).
		Str("database", cfg.DatabasePath).
		Str("schema", cfg.SchemaPath).
		Msg("service configuration")

	if cfg.EnableAuth && len(cfg.APIKeys) == 0 {
		log.Warn().Msg("WARNING: auth enabled but no API keys configured - all API requests will be rejected")
	}

	// ─── Handlers ────────────────────────────────────────────────────────────────
	healthH := handler.NewHealthHandler(db, orchestrator != nil)
	tablesH := handler.NewTablesHandler(store)
	queryH := handler.NewQueryHandler(db, sqlVal, usage, dataMasker, auditLogger, cfg.EnableDataMasking)

	var askH *handler.AskHandler
	if orchestrator != nil {
		askH = handler.NewAskHandler(orchestrator, piiDetector, promptVal, dataMasker, auditLogger,
			model, cfg.EnableDataMasking, cfg.EnablePIIDetection)
	}

	// ─── Router ──────────────────────────────────────────────────────────────────
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(chiMiddleware.RealIP)

	// Public routes
	r.Get("/health", healthH.Health)
	r.Get("/", healthH.Health)

	// Auth + rate limiting for API routes
	apiMiddleware := []func(http.Handler) http.Handler{
		middleware.RateLimit(cfg.RateLimitPerMinute),
	}
	if cfg.EnableAuth && len(cfg.APIKeys) > 0 {
		apiMiddleware = append(apiMiddleware, middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
	}

	r.Group(func(r chi.Router) {
		for _, m := range apiMiddleware {
			r.Use(m)
		}

		r.Route(cfg.APIPrefix, func(r chi.Router) {
			r.Get("/tables", tablesH.ListTables)
			r.Get("/tables/{table_name}", tablesH.GetTable)
			r.Post("/query", queryH.Execute)

			if askH != nil {
				r.Post("/ask", askH.Ask)
			}
		})
	})

	return r, db, nil
}
