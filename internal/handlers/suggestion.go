package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/webclarity/clarity-backend/internal/services"
	"github.com/webclarity/clarity-backend/internal/types"
)

type SuggestionHandler struct {
	suggestionService services.SuggestionService
}

func NewSuggestionHandler(suggestionService services.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestionService: suggestionService}
}

type generateRequest struct {
	Domain string        `json:"domain"`
	URL    string        `json:"url"`
	Issues []types.Issue `json:"issues"`
	Score  *int          `json:"score"`
}

// POST /api/ai/suggestions/generate
func (sh *SuggestionHandler) Generate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	suggestions, err := sh.suggestionService.Synthesize(c.Request.Context(), userID, req.Domain, req.URL, req.Issues, req.Score)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"suggestions": suggestions, "count": len(suggestions)})
}

// GET /api/ai/suggestions/user
func (sh *SuggestionHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	suggestions, err := sh.suggestionService.List(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"suggestions": suggestions})
}

// POST /api/ai/suggestions/:id/apply
func (sh *SuggestionHandler) Apply(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	suggestionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	suggestion, appliedSettings, err := sh.suggestionService.Apply(c.Request.Context(), userID, suggestionID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"message":          "Suggestion applied successfully",
		"suggestion":       suggestion,
		"applied_settings": appliedSettings,
	})
}

// POST /api/ai/suggestions/:id/dismiss
func (sh *SuggestionHandler) Dismiss(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	suggestionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	suggestion, err := sh.suggestionService.Dismiss(c.Request.Context(), userID, suggestionID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "Suggestion dismissed", "suggestion": suggestion})
}

type feedbackRequest struct {
	Feedback string `json:"feedback"`
	Rating   *int   `json:"rating"`
}

// POST /api/ai/suggestions/:id/feedback
func (sh *SuggestionHandler) Feedback(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	suggestionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	_, err = sh.suggestionService.RecordFeedback(c.Request.Context(), userID, suggestionID, req.Feedback, req.Rating)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "Feedback recorded successfully"})
}
