// Package handlers contains the HTTP handlers for the insights API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pmlens/insights/internal/api/response"
	"github.com/pmlens/insights/internal/insighterrors"
	"github.com/pmlens/insights/internal/models"
)

// Searcher is the retrieval façade consumed by the API layer.
type Searcher interface {
	Search(ctx context.Context, question string, topK int, filters models.SearchFilters) (
		[]models.EvidenceItem, error)
}

// SearchHandler handles HTTP requests for evidence retrieval.
type SearchHandler struct {
	service Searcher
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(service Searcher) *SearchHandler {
	return &SearchHandler{service: service}
}

// SearchRequest is the body for POST /v1/search.
// API contract uses camelCase (topK, userType).
type SearchRequest struct {
	Question string               `json:"question"`
	TopK     int                  `json:"topK"` //nolint:tagliatelle // API contract
	Filters  SearchRequestFilters `json:"filters"`
}

// SearchRequestFilters carries the optional equality filters.
type SearchRequestFilters struct {
	Platform string `json:"platform"`
	Country  string `json:"country"`
	UserType string `json:"userType"` //nolint:tagliatelle // API contract
}

// SearchResponse is the response for POST /v1/search.
type SearchResponse struct {
	Results []models.EvidenceItem `json:"results"`
}

const (
	defaultTopK = 6
	maxTopK     = 50
)

// Search handles POST /v1/search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSearchRequest(w, r)
	if !ok {
		return
	}

	items, err := h.service.Search(r.Context(), req.Question, clampTopK(req.TopK), req.Filters.toModel())
	if err != nil {
		respondSearchError(w, err)

		return
	}

	response.RespondJSON(w, http.StatusOK, SearchResponse{Results: items})
}

func (f SearchRequestFilters) toModel() models.SearchFilters {
	return models.SearchFilters{
		Platform: f.Platform,
		Country:  f.Country,
		UserType: f.UserType,
	}
}

// decodeSearchRequest parses and validates the shared request body shape.
func decodeSearchRequest(w http.ResponseWriter, r *http.Request) (SearchRequest, bool) {
	var req SearchRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")

		return req, false
	}

	return req, true
}

// clampTopK applies the default and the upper bound. Zero and negative values
// take the default; the façade still rejects invalid explicit values.
func clampTopK(topK int) int {
	if topK <= 0 {
		return defaultTopK
	}

	return min(topK, maxTopK)
}

// respondSearchError maps façade errors to HTTP responses. Transport-level
// detail never reaches the client; the underlying cause is already logged.
func respondSearchError(w http.ResponseWriter, err error) {
	if errors.Is(err, insighterrors.ErrValidation) {
		response.RespondBadRequest(w, err.Error())

		return
	}

	response.RespondInternalServerError(w, "Retrieval failed")
}
