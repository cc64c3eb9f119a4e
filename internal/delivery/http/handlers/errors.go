package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aliskhannn/finquest/internal/delivery/http/response"
	"github.com/aliskhannn/finquest/internal/domain"
)

var errInternal = errors.New("internal error")

var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInsufficientContent, http.StatusConflict, "no_questions_available"},
	{domain.ErrSessionNotFound, http.StatusNotFound, "session_not_found"},
	{domain.ErrSessionClosed, http.StatusConflict, "session_closed"},
	{domain.ErrQuestionNotInSession, http.StatusBadRequest, "question_not_in_session"},
	{domain.ErrAnswerAlreadySubmitted, http.StatusConflict, "answer_already_submitted"},
	{domain.ErrUserProgressNotFound, http.StatusNotFound, "progress_not_found"},
	{domain.ErrQuestionNotFound, http.StatusNotFound, "question_not_found"},
	{domain.ErrInvalidLevel, http.StatusBadRequest, "invalid_level"},
	{domain.ErrInvalidCount, http.StatusBadRequest, "invalid_count"},
	{domain.ErrLockTimeout, http.StatusServiceUnavailable, "busy"},
}

// respondServiceError maps domain errors to status codes. Anything unknown is a 500
// whose details stay in the request log.
func respondServiceError(c *gin.Context, err error) {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			response.RespondError(c, e.status, e.code, err)
			return
		}
	}

	_ = c.Error(err)
	response.RespondError(c, http.StatusInternalServerError, "internal_error", errInternal)
}
