package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aliskhannn/finquest/internal/delivery/http/middleware"
	"github.com/aliskhannn/finquest/internal/delivery/http/response"
	"github.com/aliskhannn/finquest/internal/domain/entities"
)

type QuizHandler struct {
	quiz QuizService
}

func NewQuizHandler(quiz QuizService) *QuizHandler {
	return &QuizHandler{quiz: quiz}
}

type startSessionRequest struct {
	Level int `json:"level" binding:"required"`
	Count int `json:"count"`
}

type sessionResponse struct {
	Session   *entities.QuizSession   `json:"session"`
	Questions []entities.QuestionView `json:"questions"`
}

// POST /api/quiz/sessions
func (h *QuizHandler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.Count == 0 {
		req.Count = entities.QuestionsPerSession
	}

	session, questions, err := h.quiz.StartSession(c.Request.Context(), middleware.UserID(c), req.Level, req.Count)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondCreated(c, sessionResponse{Session: session, Questions: questions})
}

// GET /api/quiz/sessions/:id
func (h *QuizHandler) GetSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}

	session, questions, err := h.quiz.ResumeSession(c.Request.Context(), middleware.UserID(c), sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondOK(c, sessionResponse{Session: session, Questions: questions})
}

// The client never supplies the correct answer; it is looked up in the catalog.
type submitAnswerRequest struct {
	QuestionID     int64  `json:"question_id" binding:"required"`
	SelectedAnswer string `json:"selected_answer" binding:"required"`
}

// POST /api/quiz/sessions/:id/answers
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}

	var req submitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	res, err := h.quiz.SubmitAnswer(c.Request.Context(), middleware.UserID(c), sessionID, req.QuestionID, req.SelectedAnswer)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondOK(c, gin.H{"result": res})
}

type completeSessionRequest struct {
	FinalScore int `json:"final_score"`
}

// POST /api/quiz/sessions/:id/complete
func (h *QuizHandler) CompleteSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}

	var req completeSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	res, err := h.quiz.CompleteSession(c.Request.Context(), middleware.UserID(c), sessionID, req.FinalScore)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondOK(c, gin.H{"result": res})
}
