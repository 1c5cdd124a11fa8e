package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperr "github.com/yungbote/atlas-backend/internal/pkg/errors"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
	"github.com/yungbote/atlas-backend/internal/platform/apierr"
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

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// RespondServiceError maps a service error onto the envelope. Unclassified
// errors become a generic 500 and the cause only goes to the log.
func RespondServiceError(c *gin.Context, log *logger.Logger, err error) {
	if e, ok := apierr.As(err); ok && e.Status != 0 {
		if e.Status >= http.StatusInternalServerError && log != nil {
			log.Error("Request failed", "path", c.FullPath(), "code", e.Code, "error", err)
		}
		RespondError(c, e.Status, e.Code, err)
		return
	}
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, apperr.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
	case errors.Is(err, apperr.ErrConflict):
		RespondError(c, http.StatusConflict, "conflict", err)
	case errors.Is(err, apperr.ErrUpstreamUnavailable):
		if log != nil {
			log.Warn("Upstream unavailable", "path", c.FullPath(), "error", err)
		}
		RespondError(c, http.StatusBadGateway, "upstream_unavailable", errors.New("upstream unavailable"))
	default:
		if log != nil {
			log.Error("Request failed", "path", c.FullPath(), "error", err)
		}
		RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal error"))
	}
}
