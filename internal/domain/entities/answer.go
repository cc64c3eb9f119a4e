package entities

import "time"

// AnsweredRecord marks that a user has seen and answered a catalog question.
// There is at most one record per (UserID, QuestionID); repeated answers overwrite it.
type AnsweredRecord struct {
	UserID     string
	QuestionID int64
	Level      int
	IsCorrect  bool
	AnsweredAt time.Time
}

// NewAnsweredRecord creates a ledger record stamped with the given time.
func NewAnsweredRecord(userID string, questionID int64, level int, isCorrect bool, now time.Time) *AnsweredRecord {
	return &AnsweredRecord{
		UserID:     userID,
		QuestionID: questionID,
		Level:      level,
		IsCorrect:  isCorrect,
		AnsweredAt: now,
	}
}

// AnswerStats aggregates a user's ledger.
type AnswerStats struct {
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
}

// Accuracy returns the share of correctly answered questions in percent.
func (s AnswerStats) Accuracy() float64 {
	if s.Answered == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Answered) * 100
}
