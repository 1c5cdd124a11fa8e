package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/atlas-backend/internal/http/response"
)

// uuidParam parses a path parameter and answers 400 when it is not a uuid.
func uuidParam(c *gin.Context, name, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, code, fmt.Errorf("%s: %w", name, err))
		return uuid.Nil, false
	}
	return id, true
}

// weekParam parses :week. Range checks are left to the services so an
// out-of-range week reports not found.
func weekParam(c *gin.Context) (int, bool) {
	week, err := strconv.Atoi(strings.TrimSpace(c.Param("week")))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_week", fmt.Errorf("week: %w", err))
		return 0, false
	}
	return week, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}

// bindOptionalJSON treats an empty body as an empty object. Chunked requests
// report an unknown length, so emptiness shows up as io.EOF from the decoder.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}
