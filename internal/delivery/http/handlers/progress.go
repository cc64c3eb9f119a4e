package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/aliskhannn/finquest/internal/delivery/http/middleware"
	"github.com/aliskhannn/finquest/internal/delivery/http/response"
)

type ProgressHandler struct {
	progress ProgressService
}

func NewProgressHandler(progress ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// GET /api/progress
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	summary, err := h.progress.GetProgressSummary(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondOK(c, summary)
}

// POST /api/progress/reset
func (h *ProgressHandler) ResetIfDue(c *gin.Context) {
	outcome, err := h.progress.ResetIfDue(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondOK(c, gin.H{"reset": outcome})
}
