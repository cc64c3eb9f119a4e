package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpH "github.com/aliskhannn/finquest/internal/delivery/http/handlers"
	httpMW "github.com/aliskhannn/finquest/internal/delivery/http/middleware"
)

type RouterConfig struct {
	Logger      *zap.Logger
	CORSOrigins []string

	QuizHandler     *httpH.QuizHandler
	ProgressHandler *httpH.ProgressHandler
	QuestionHandler *httpH.QuestionHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Logger != nil {
		r.Use(httpMW.RequestLog(cfg.Logger))
	}
	if len(cfg.CORSOrigins) > 0 {
		r.Use(httpMW.CORS(cfg.CORSOrigins))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	api.Use(httpMW.RequireUser())
	{
		// Quiz sessions
		if cfg.QuizHandler != nil {
			api.POST("/quiz/sessions", cfg.QuizHandler.StartSession)
			api.GET("/quiz/sessions/:id", cfg.QuizHandler.GetSession)
			api.POST("/quiz/sessions/:id/answers", cfg.QuizHandler.SubmitAnswer)
			api.POST("/quiz/sessions/:id/complete", cfg.QuizHandler.CompleteSession)
		}

		// Progress
		if cfg.ProgressHandler != nil {
			api.GET("/progress", cfg.ProgressHandler.GetProgress)
			api.POST("/progress/reset", cfg.ProgressHandler.ResetIfDue)
		}

		// Catalog
		if cfg.QuestionHandler != nil {
			api.GET("/questions", cfg.QuestionHandler.ListQuestions)
		}
	}

	return r
}
