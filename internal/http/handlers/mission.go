package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/atlas-backend/internal/http/response"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
	"github.com/yungbote/atlas-backend/internal/services"
)

type MissionHandler struct {
	log        *logger.Logger
	curriculum services.CurriculumService
}

func NewMissionHandler(log *logger.Logger, curriculum services.CurriculumService) *MissionHandler {
	return &MissionHandler{log: log.With("handler", "MissionHandler"), curriculum: curriculum}
}

// GET /api/missions
func (h *MissionHandler) List(c *gin.Context) {
	out, err := h.curriculum.ListMissions(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/missions/:week
func (h *MissionHandler) Get(c *gin.Context) {
	week, ok := weekParam(c)
	if !ok {
		return
	}
	m, err := h.curriculum.GetMission(c.Request.Context(), week)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, m)
}
