package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/atlas-backend/internal/http/response"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
	"github.com/yungbote/atlas-backend/internal/services"
)

type InventionHandler struct {
	log        *logger.Logger
	inventions services.InventionService
}

func NewInventionHandler(log *logger.Logger, inventions services.InventionService) *InventionHandler {
	return &InventionHandler{log: log.With("handler", "InventionHandler"), inventions: inventions}
}

// GET /api/students/:studentId/inventions
func (h *InventionHandler) List(c *gin.Context) {
	studentID, ok := uuidParam(c, "studentId", "invalid_student_id")
	if !ok {
		return
	}
	out, err := h.inventions.List(c.Request.Context(), studentID)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/students/:studentId/inventions
func (h *InventionHandler) Create(c *gin.Context) {
	studentID, ok := uuidParam(c, "studentId", "invalid_student_id")
	if !ok {
		return
	}
	var req services.CreateInventionInput
	if !bindJSON(c, &req) {
		return
	}
	inv, err := h.inventions.Create(c.Request.Context(), studentID, req)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondCreated(c, inv)
}

// GET /api/inventions/:id
func (h *InventionHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_invention_id")
	if !ok {
		return
	}
	inv, err := h.inventions.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, inv)
}

// PUT /api/inventions/:id
func (h *InventionHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_invention_id")
	if !ok {
		return
	}
	var req services.InventionPatch
	if !bindJSON(c, &req) {
		return
	}
	inv, err := h.inventions.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, inv)
}

// DELETE /api/inventions/:id
// Deleting an unknown invention succeeds with deleted=false.
func (h *InventionHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_invention_id")
	if !ok {
		return
	}
	deleted, err := h.inventions.Delete(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "deleted": deleted})
}
