package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/atlas-backend/internal/http/response"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
	"github.com/yungbote/atlas-backend/internal/services"
)

type ProgressHandler struct {
	log      *logger.Logger
	progress services.ProgressService
}

func NewProgressHandler(log *logger.Logger, progress services.ProgressService) *ProgressHandler {
	return &ProgressHandler{log: log.With("handler", "ProgressHandler"), progress: progress}
}

// GET /api/progress/:studentId
func (h *ProgressHandler) Aggregate(c *gin.Context) {
	studentID, ok := uuidParam(c, "studentId", "invalid_student_id")
	if !ok {
		return
	}
	agg, err := h.progress.Aggregate(c.Request.Context(), studentID)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, agg)
}

// GET /api/progress/:studentId/:week
func (h *ProgressHandler) Get(c *gin.Context) {
	studentID, ok := uuidParam(c, "studentId", "invalid_student_id")
	if !ok {
		return
	}
	week, ok := weekParam(c)
	if !ok {
		return
	}
	st, err := h.progress.Get(c.Request.Context(), studentID, week)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, st)
}

// POST /api/progress/:studentId/:week
// body: { "status"?, "notes"?, "buildLink"?, "reflectionNotes"?, "selfAssessment"? }
// Absent keys are left alone and null clears a note field.
func (h *ProgressHandler) Upsert(c *gin.Context) {
	studentID, ok := uuidParam(c, "studentId", "invalid_student_id")
	if !ok {
		return
	}
	week, ok := weekParam(c)
	if !ok {
		return
	}
	var req services.ProgressPatch
	if !bindOptionalJSON(c, &req) {
		return
	}
	p, err := h.progress.Upsert(c.Request.Context(), studentID, week, req)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, p)
}

// DELETE /api/progress/:studentId/:week
func (h *ProgressHandler) Reset(c *gin.Context) {
	studentID, ok := uuidParam(c, "studentId", "invalid_student_id")
	if !ok {
		return
	}
	week, ok := weekParam(c)
	if !ok {
		return
	}
	if err := h.progress.Reset(c.Request.Context(), studentID, week); err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}
