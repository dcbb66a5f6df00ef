package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/webclarity/clarity-backend/internal/apperr"
	"github.com/webclarity/clarity-backend/internal/requestdata"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondServiceError maps the service error kinds onto HTTP statuses.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case apperr.IsValidation(err):
		RespondError(c, http.StatusBadRequest, "validation_failed", err)
	case apperr.IsNotFound(err):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case apperr.IsFetch(err):
		RespondError(c, http.StatusBadGateway, "fetch_failed", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}

// currentUserID pulls the authenticated identity the auth middleware stored
// on the request context.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.Nil, false
	}
	return rd.UserID, true
}
