package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/webclarity/clarity-backend/internal/services"
)

type AnalysisHandler struct {
	analysisService services.AnalysisService
}

func NewAnalysisHandler(analysisService services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

type analyzeRequest struct {
	URL                string `json:"url"`
	IncludeSuggestions *bool  `json:"include_suggestions"`
}

// POST /api/accessibility/analysis/analyze
func (ah *AnalysisHandler) Analyze(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	includeSuggestions := true
	if req.IncludeSuggestions != nil {
		includeSuggestions = *req.IncludeSuggestions
	}
	result, err := ah.analysisService.AnalyzeURL(c.Request.Context(), userID, req.URL, includeSuggestions)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}
