package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/atlas-backend/internal/http/response"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
	"github.com/yungbote/atlas-backend/internal/services"
)

type MentorHandler struct {
	log    *logger.Logger
	mentor services.MentorService
}

func NewMentorHandler(log *logger.Logger, mentor services.MentorService) *MentorHandler {
	return &MentorHandler{log: log.With("handler", "MentorHandler"), mentor: mentor}
}

// GET /api/mentor/:studentId
func (h *MentorHandler) GetSession(c *gin.Context) {
	studentID, ok := uuidParam(c, "studentId", "invalid_student_id")
	if !ok {
		return
	}
	view, err := h.mentor.GetOrCreateSession(c.Request.Context(), studentID)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, view)
}

// DELETE /api/mentor/:studentId
func (h *MentorHandler) ClearSessions(c *gin.Context) {
	studentID, ok := uuidParam(c, "studentId", "invalid_student_id")
	if !ok {
		return
	}
	n, err := h.mentor.ClearSessions(c.Request.Context(), studentID)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "deleted": n})
}

// POST /api/mentor/chat
// body: { "studentId": "...", "sessionId"?: "...", "message": "...", "studentName"?: "..." }
func (h *MentorHandler) Chat(c *gin.Context) {
	var req struct {
		StudentID   string `json:"studentId"`
		SessionID   string `json:"sessionId"`
		Message     string `json:"message"`
		StudentName string `json:"studentName"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.StudentID) == "" || strings.TrimSpace(req.Message) == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_fields", errors.New("studentId and message required"))
		return
	}
	studentID, err := uuid.Parse(strings.TrimSpace(req.StudentID))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_student_id", err)
		return
	}
	in := services.PostMessageInput{
		StudentID:   studentID,
		Message:     req.Message,
		StudentName: req.StudentName,
	}
	// An unparseable session id is treated like no session at all.
	if sid, err := uuid.Parse(strings.TrimSpace(req.SessionID)); err == nil {
		in.SessionID = &sid
	}

	res, err := h.mentor.PostMessage(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}
