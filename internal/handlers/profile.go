package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/webclarity/clarity-backend/internal/services"
)

type ProfileHandler struct {
	profileService services.ProfileService
}

func NewProfileHandler(profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GET /api/accessibility/settings/current
func (ph *ProfileHandler) GetCurrent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	profile, err := ph.profileService.GetOrCreateActive(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, profile)
}

// POST /api/accessibility/settings/bulk_update
func (ph *ProfileHandler) BulkUpdate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var fieldValues map[string]any
	if err := c.ShouldBindJSON(&fieldValues); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	profile, err := ph.profileService.MergeUpdate(c.Request.Context(), userID, fieldValues)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, profile)
}
