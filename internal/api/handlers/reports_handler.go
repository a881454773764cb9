package handlers

import (
	"net/http"

	"github.com/pmlens/insights/internal/api/response"
	"github.com/pmlens/insights/internal/models"
	"github.com/pmlens/insights/internal/service"
)

// ReportsHandler renders the templated markdown reports over fresh evidence.
type ReportsHandler struct {
	service Searcher
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(service Searcher) *ReportsHandler {
	return &ReportsHandler{service: service}
}

// ReportResponse is the response for the report endpoints: the rendered
// markdown plus the evidence it was grounded on.
type ReportResponse struct {
	Markdown string                `json:"markdown"`
	Evidence []models.EvidenceItem `json:"evidence"`
}

// AgenticAnalysis handles POST /v1/reports/analysis.
func (h *ReportsHandler) AgenticAnalysis(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, service.AgenticAnalysis)
}

// WeeklyBrief handles POST /v1/reports/weekly-brief.
func (h *ReportsHandler) WeeklyBrief(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, service.WeeklyBrief)
}

func (h *ReportsHandler) render(
	w http.ResponseWriter, r *http.Request, generate func(string, []models.EvidenceItem) string,
) {
	req, ok := decodeSearchRequest(w, r)
	if !ok {
		return
	}

	items, err := h.service.Search(r.Context(), req.Question, clampTopK(req.TopK), req.Filters.toModel())
	if err != nil {
		respondSearchError(w, err)

		return
	}

	response.RespondJSON(w, http.StatusOK, ReportResponse{
		Markdown: generate(req.Question, items),
		Evidence: items,
	})
}
