package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/atlas-backend/internal/http/response"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
	"github.com/yungbote/atlas-backend/internal/services"
)

type PatentHandler struct {
	log     *logger.Logger
	patents services.PatentService
}

func NewPatentHandler(log *logger.Logger, patents services.PatentService) *PatentHandler {
	return &PatentHandler{log: log.With("handler", "PatentHandler"), patents: patents}
}

// GET /api/students/:studentId/patents
func (h *PatentHandler) List(c *gin.Context) {
	studentID, ok := uuidParam(c, "studentId", "invalid_student_id")
	if !ok {
		return
	}
	out, err := h.patents.List(c.Request.Context(), studentID)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/students/:studentId/patents
func (h *PatentHandler) Create(c *gin.Context) {
	studentID, ok := uuidParam(c, "studentId", "invalid_student_id")
	if !ok {
		return
	}
	var req services.CreatePatentInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.patents.Create(c.Request.Context(), studentID, req)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondCreated(c, p)
}

// GET /api/patents/:id
func (h *PatentHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_patent_id")
	if !ok {
		return
	}
	p, err := h.patents.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, p)
}

// PUT /api/patents/:id
func (h *PatentHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_patent_id")
	if !ok {
		return
	}
	var req services.PatentPatch
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.patents.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, p)
}

// DELETE /api/patents/:id
func (h *PatentHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_patent_id")
	if !ok {
		return
	}
	if err := h.patents.Delete(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}
