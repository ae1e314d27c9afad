package handler

import (
	"net/http"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/model"
	"github.com/inucreativehrd21/FINAL-SERVER/internal/service"
	"github.com/inucreativehrd21/FINAL-SERVER/pkg/logger"
)

// InsightsHandler serves the read-only analytics and history endpoints.
type InsightsHandler struct {
	analytics *service.AnalyticsService
	history   *service.HistoryService
	logger    *logger.Logger
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(analytics *service.AnalyticsService, history *service.HistoryService, log *logger.Logger) *InsightsHandler {
	return &InsightsHandler{analytics: analytics, history: history, logger: log}
}

// Analytics handles GET /api/v1/chatbot/analytics?days=N
func (h *InsightsHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	days, err := queryInt(r, "days")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.analytics.Compute(r.Context(), userID, days)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	if !snap.HasData {
		writeJSON(w, http.StatusOK, noAnalytics{})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// noAnalytics is the body returned when the window holds no answered questions.
type noAnalytics struct {
	HasData bool `json:"has_data"`
}

// History handles GET /api/v1/chatbot/history?limit&offset&category
func (h *InsightsHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	query := model.HistoryQuery{Category: model.Category(r.URL.Query().Get("category"))}
	var err error
	if query.Limit, err = queryInt(r, "limit"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if query.Offset, err = queryInt(r, "offset"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.history.List(r.Context(), userID, query)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}
