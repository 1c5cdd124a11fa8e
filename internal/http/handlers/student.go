package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/atlas-backend/internal/http/response"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
	"github.com/yungbote/atlas-backend/internal/services"
)

type StudentHandler struct {
	log      *logger.Logger
	students services.StudentService
}

func NewStudentHandler(log *logger.Logger, students services.StudentService) *StudentHandler {
	return &StudentHandler{log: log.With("handler", "StudentHandler"), students: students}
}

// GET /api/student
// Answers null until the student has been set up.
func (h *StudentHandler) GetCurrent(c *gin.Context) {
	s, err := h.students.GetCurrent(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	if s == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	response.RespondOK(c, s)
}

// POST /api/student
// body: { "name": "...", "age": 12, "difficultyLevel": "advanced" }
func (h *StudentHandler) Setup(c *gin.Context) {
	var req services.SetupStudentInput
	if !bindJSON(c, &req) {
		return
	}
	s, created, err := h.students.Setup(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	if created {
		response.RespondCreated(c, s)
		return
	}
	response.RespondOK(c, s)
}

// GET /api/students/:studentId
func (h *StudentHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "studentId", "invalid_student_id")
	if !ok {
		return
	}
	s, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, s)
}
