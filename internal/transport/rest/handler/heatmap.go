package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/service"
)

// defaultPriorityGapLimit applies when the limit query parameter is absent
const defaultPriorityGapLimit = 10

// HeatmapHandler handles gap heatmap endpoints
type HeatmapHandler struct {
	heatmapSvc *service.HeatmapService
}

// NewHeatmapHandler creates a new heatmap handler
func NewHeatmapHandler(heatmapSvc *service.HeatmapService) *HeatmapHandler {
	return &HeatmapHandler{heatmapSvc: heatmapSvc}
}

// Get handles GET /v1/heatmap/{sessionId}
func (h *HeatmapHandler) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.heatmapSvc.GenerateHeatmap(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Summary handles GET /v1/heatmap/{sessionId}/summary
func (h *HeatmapHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.heatmapSvc.GetSummary(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Cells handles GET /v1/heatmap/{sessionId}/cells?dimension=&severity=
func (h *HeatmapHandler) Cells(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cells, err := h.heatmapSvc.GetCells(r.Context(), mux.Vars(r)["sessionId"], q.Get("dimension"), q.Get("severity"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cells)
}

// ExportCSV handles GET /v1/heatmap/{sessionId}/export/csv
func (h *HeatmapHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	body, err := h.heatmapSvc.ExportToCSV(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeAttachment(w, "text/csv", "heatmap-"+sessionID+".csv", body)
}

// ExportMarkdown handles GET /v1/heatmap/{sessionId}/export/markdown
func (h *HeatmapHandler) ExportMarkdown(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	body, err := h.heatmapSvc.ExportToMarkdown(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeAttachment(w, "text/markdown", "heatmap-"+sessionID+".md", body)
}

// ExportHTML handles GET /v1/heatmap/{sessionId}/export/html
func (h *HeatmapHandler) ExportHTML(w http.ResponseWriter, r *http.Request) {
	body, err := h.heatmapSvc.ExportToHTML(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

// Drilldown handles GET /v1/heatmap/{sessionId}/drilldown/{dimensionKey}/{severityBucket}
func (h *HeatmapHandler) Drilldown(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	drilldown, err := h.heatmapSvc.Drilldown(r.Context(), vars["sessionId"], vars["dimensionKey"], vars["severityBucket"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, drilldown)
}

// PriorityGaps handles GET /v1/heatmap/{sessionId}/priority-gaps?limit=
func (h *HeatmapHandler) PriorityGaps(w http.ResponseWriter, r *http.Request) {
	limit := defaultPriorityGapLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	gaps, err := h.heatmapSvc.GetPriorityGaps(r.Context(), mux.Vars(r)["sessionId"], limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gaps)
}

// ActionPlan handles GET /v1/heatmap/{sessionId}/action-plan
func (h *HeatmapHandler) ActionPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.heatmapSvc.GenerateActionPlan(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// Compare handles GET /v1/heatmap/compare/{sessionId}/{baselineSessionId}
func (h *HeatmapHandler) Compare(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	comparison, err := h.heatmapSvc.CompareHeatmaps(r.Context(), vars["sessionId"], vars["baselineSessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comparison)
}

// InvalidateCache handles DELETE /v1/heatmap/{sessionId}/cache
func (h *HeatmapHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.heatmapSvc.InvalidateCache(r.Context(), mux.Vars(r)["sessionId"])
	w.WriteHeader(http.StatusNoContent)
}
