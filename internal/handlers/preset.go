package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/webclarity/clarity-backend/internal/services"
)

type PresetHandler struct {
	presetService services.PresetService
}

func NewPresetHandler(presetService services.PresetService) *PresetHandler {
	return &PresetHandler{presetService: presetService}
}

// GET /api/accessibility/presets
func (ph *PresetHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	presets, err := ph.presetService.ListAvailable(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"presets": presets})
}

// POST /api/accessibility/presets/:id/apply
func (ph *PresetHandler) Apply(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	presetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	profile, message, err := ph.presetService.Apply(c.Request.Context(), userID, presetID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": message, "settings": profile})
}
