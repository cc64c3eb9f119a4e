package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aliskhannn/finquest/internal/delivery/http/response"
	"github.com/aliskhannn/finquest/internal/domain/entities"
)

type QuestionHandler struct {
	questions QuestionService
}

func NewQuestionHandler(questions QuestionService) *QuestionHandler {
	return &QuestionHandler{questions: questions}
}

// GET /api/questions?level=
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	level, err := strconv.Atoi(c.Query("level"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_level", err)
		return
	}

	questions, err := h.questions.ListQuestions(c.Request.Context(), level)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	views := make([]entities.QuestionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, q.View())
	}

	response.RespondOK(c, gin.H{"questions": views})
}
