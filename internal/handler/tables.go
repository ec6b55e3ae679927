package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sqlsage/sqlsage/internal/catalog"
	"github.com/sqlsage/sqlsage/internal/models"
)

// TablesHandler serves the schema catalog over HTTP.
type TablesHandler struct {
	store *catalog.Store
}

func NewTablesHandler(store *catalog.Store) *TablesHandler {
	return &TablesHandler{store: store}
}

// ListTables handles GET /api/v1/tables
func (h *TablesHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	schema := h.store.Get()
	tables := make([]models.TableResponse, 0, len(schema.Tables))
	for _, tbl := range schema.Tables {
		tables = append(tables, toTableResponse(tbl))
	}
	models.WriteJSON(w, http.StatusOK, tables)
}

// GetTable handles GET /api/v1/tables/{table_name}
func (h *TablesHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table_name")
	tbl := h.store.Get().Table(name)
	if tbl == nil {
		models.WriteError(w, http.StatusNotFound, "table not found: "+name)
		return
	}
	models.WriteJSON(w, http.StatusOK, toTableResponse(*tbl))
}

func toTableResponse(tbl catalog.Table) models.TableResponse {
	fields := make([]models.FieldResponse, len(tbl.Fields))
	for i, f := range tbl.Fields {
		fields[i] = models.FieldResponse{
			Name:        f.Name,
			Type:        f.Type,
			Description: f.Description,
		}
	}
	return models.TableResponse{
		Name:        tbl.Name,
		Description: tbl.Description,
		Fields:      fields,
	}
}
