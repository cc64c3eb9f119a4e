package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aliskhannn/finquest/internal/domain"
	"github.com/aliskhannn/finquest/internal/domain/entities"
)

// Engine runs quiz sessions and turns their results into level and map progression.
type Engine struct {
	bank     *QuestionBank
	ledger   *AnswerLedger
	selector *QuestionSelector
	progress *ProgressService
	sessions SessionRepository
	tr       Transactor
	locker   Locker
	logger   *zap.Logger
	now      func() time.Time
}

// NewEngine creates a new Engine.
func NewEngine(
	bank *QuestionBank,
	ledger *AnswerLedger,
	selector *QuestionSelector,
	progress *ProgressService,
	sessions SessionRepository,
	tr Transactor,
	locker Locker,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		bank:     bank,
		ledger:   ledger,
		selector: selector,
		progress: progress,
		sessions: sessions,
		tr:       tr,
		locker:   locker,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// StartSession selects count questions of the level and opens a new session for them.
// count must equal entities.QuestionsPerSession. The returned views never contain the correct answers.
func (e *Engine) StartSession(
	ctx context.Context, userID string, level, count int,
) (*entities.QuizSession, []entities.QuestionView, error) {
	if level < 1 || level > entities.MaxLevelsPerMap {
		return nil, nil, fmt.Errorf("%w: %d", domain.ErrInvalidLevel, level)
	}
	// Scoring and the pass threshold assume a full session.
	if count != entities.QuestionsPerSession {
		return nil, nil, fmt.Errorf("%w: %d, sessions have %d questions", domain.ErrInvalidCount, count, entities.QuestionsPerSession)
	}

	questions, err := e.selector.Select(ctx, userID, level, count)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]int64, 0, len(questions))
	views := make([]entities.QuestionView, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
		v := q.View()
		v.Options = e.selector.ShuffleOptions(v.Options)
		views = append(views, v)
	}

	session := entities.NewQuizSession(uuid.New(), userID, level, ids, e.now())
	if err := e.sessions.Create(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("create session: %w", err)
	}

	e.logger.Debug("quiz session started",
		zap.String("user_id", userID),
		zap.String("session_id", session.ID.String()),
		zap.Int("level", level),
		zap.Int("questions", len(ids)),
	)

	return session, views, nil
}

// GetSession returns a session owned by the user.
func (e *Engine) GetSession(ctx context.Context, userID string, sessionID uuid.UUID) (*entities.QuizSession, error) {
	session, err := e.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// ResumeSession returns an open or closed session of the user together with its questions,
// in serving order and without correct answers.
func (e *Engine) ResumeSession(
	ctx context.Context, userID string, sessionID uuid.UUID,
) (*entities.QuizSession, []entities.QuestionView, error) {
	session, err := e.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, nil, err
	}

	views := make([]entities.QuestionView, 0, len(session.QuestionIDs))
	for _, id := range session.QuestionIDs {
		q, err := e.bank.Get(ctx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("get question %d: %w", id, err)
		}
		v := q.View()
		v.Options = e.selector.ShuffleOptions(v.Options)
		views = append(views, v)
	}

	return session, views, nil
}

// AnswerResult is returned after an answer is checked. The correct answer and the explanation
// are safe to reveal at this point.
type AnswerResult struct {
	QuestionID     int64  `json:"question_id"`
	IsCorrect      bool   `json:"is_correct"`
	CorrectAnswer  string `json:"correct_answer"`
	Explanation    string `json:"explanation"`
	Score          int    `json:"score"`
	AnsweredCount  int    `json:"answered_count"`
	TotalQuestions int    `json:"total_questions"`
}

// SubmitAnswer checks the selected answer against the catalog, records it in the session
// and in the answer ledger, and updates the session score.
func (e *Engine) SubmitAnswer(
	ctx context.Context, userID string, sessionID uuid.UUID, questionID int64, selected string,
) (*AnswerResult, error) {
	unlock, err := e.locker.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var res *AnswerResult
	err = e.tr.WithinTx(ctx, func(ctx context.Context) error {
		session, err := e.GetSession(ctx, userID, sessionID)
		if err != nil {
			return err
		}
		if session.IsCompleted() {
			return domain.ErrSessionClosed
		}
		if !session.Serves(questionID) {
			return domain.ErrQuestionNotInSession
		}
		if session.HasAnswer(questionID) {
			return domain.ErrAnswerAlreadySubmitted
		}

		q, err := e.bank.Get(ctx, questionID)
		if err != nil {
			return fmt.Errorf("get question %d: %w", questionID, err)
		}

		now := e.now()
		isCorrect := entities.MatchAnswer(selected, q.CorrectAnswer)

		if err := e.ledger.RecordAnswer(ctx, userID, q.ID, session.Level, isCorrect, now); err != nil {
			return err
		}

		session.RecordAnswer(entities.SubmittedAnswer{
			QuestionID:     q.ID,
			SelectedAnswer: selected,
			CorrectAnswer:  q.CorrectAnswer,
			IsCorrect:      isCorrect,
			AnsweredAt:     now,
		})
		if err := e.sessions.Update(ctx, session); err != nil {
			if errors.Is(err, domain.ErrOptimisticLock) {
				return domain.ErrSessionClosed
			}
			return fmt.Errorf("update session: %w", err)
		}

		res = &AnswerResult{
			QuestionID:     q.ID,
			IsCorrect:      isCorrect,
			CorrectAnswer:  q.CorrectAnswer,
			Explanation:    q.Explanation,
			Score:          session.Score,
			AnsweredCount:  len(session.Answers),
			TotalQuestions: len(session.QuestionIDs),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// CompletionResult is returned when a session is closed.
type CompletionResult struct {
	SessionID uuid.UUID `json:"session_id"`
	Level     int       `json:"level"`
	Score     int       `json:"score"`
	entities.CompletionOutcome
}

// CompleteSession closes the session and applies its score to the user's progress.
//
// The session score tallied from submitted answers is authoritative; reportedScore is only
// compared against it. A session can be completed once: any later call fails with
// domain.ErrSessionClosed and grants nothing.
func (e *Engine) CompleteSession(
	ctx context.Context, userID string, sessionID uuid.UUID, reportedScore int,
) (*CompletionResult, error) {
	unlock, err := e.locker.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var res *CompletionResult
	err = e.tr.WithinTx(ctx, func(ctx context.Context) error {
		session, err := e.GetSession(ctx, userID, sessionID)
		if err != nil {
			return err
		}
		if session.IsCompleted() {
			return domain.ErrSessionClosed
		}

		if reportedScore != session.Score {
			e.logger.Warn("reported score differs from session score",
				zap.String("user_id", userID),
				zap.String("session_id", sessionID.String()),
				zap.Int("reported", reportedScore),
				zap.Int("session", session.Score),
			)
		}

		now := e.now()
		session.Complete(now)
		if err := e.sessions.Update(ctx, session); err != nil {
			if errors.Is(err, domain.ErrOptimisticLock) {
				return domain.ErrSessionClosed
			}
			return fmt.Errorf("update session: %w", err)
		}

		tracker, err := e.progress.GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}

		outcome := tracker.ApplyCompletion(session.Level, session.Score, now)
		if outcome.Changed {
			if err := e.progress.save(ctx, tracker); err != nil {
				return fmt.Errorf("update progress: %w", err)
			}
		}

		res = &CompletionResult{
			SessionID:         session.ID,
			Level:             session.Level,
			Score:             session.Score,
			CompletionOutcome: outcome,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("quiz session completed",
		zap.String("user_id", userID),
		zap.String("session_id", sessionID.String()),
		zap.Int("level", res.Level),
		zap.Int("score", res.Score),
		zap.Bool("passed", res.Passed),
		zap.Bool("repeat", res.IsRepeatLevel),
		zap.Int("earned_xp", res.EarnedXP),
		zap.Bool("map_completed", res.IsMapCompleted),
	)

	return res, nil
}
