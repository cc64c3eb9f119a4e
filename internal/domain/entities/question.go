package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/aliskhannn/finquest/internal/domain"
)

// OptionsPerQuestion is the fixed number of answer options of a catalog question.
const OptionsPerQuestion = 3

// QuizQuestion is a catalog entry. It is immutable once seeded except for the Active flag.
type QuizQuestion struct {
	ID            int64     `json:"id"`
	Level         int       `json:"level"`
	Question      string    `json:"question"`
	Options       []string  `json:"options"`
	CorrectAnswer string    `json:"correct_answer"`
	Explanation   string    `json:"explanation"`
	Category      string    `json:"category"`
	Difficulty    string    `json:"difficulty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

// Validate checks the catalog invariants of a question before it is seeded.
func (q *QuizQuestion) Validate() error {
	if q.Level < 1 {
		return fmt.Errorf("%w: level %d", domain.ErrInvalidQuestion, q.Level)
	}
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("%w: empty text", domain.ErrInvalidQuestion)
	}
	if len(q.Options) != OptionsPerQuestion {
		return fmt.Errorf("%w: %q has %d options, want %d",
			domain.ErrInvalidQuestion, q.Question, len(q.Options), OptionsPerQuestion)
	}

	found := false
	for _, opt := range q.Options {
		if MatchAnswer(opt, q.CorrectAnswer) {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: correct answer of %q is not among its options", domain.ErrInvalidQuestion, q.Question)
	}

	return nil
}

// View returns the client-facing payload of the question. It never carries the correct answer.
func (q *QuizQuestion) View() QuestionView {
	options := make([]string, len(q.Options))
	copy(options, q.Options)

	return QuestionView{
		ID:          q.ID,
		Level:       q.Level,
		Question:    q.Question,
		Options:     options,
		Explanation: q.Explanation,
		Category:    q.Category,
		Difficulty:  q.Difficulty,
	}
}

// QuestionView is what a player sees when a quiz starts.
type QuestionView struct {
	ID          int64    `json:"id"`
	Level       int      `json:"level"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Explanation string   `json:"explanation"`
	Category    string   `json:"category"`
	Difficulty  string   `json:"difficulty"`
}

// MatchAnswer reports whether the selected answer equals the correct one,
// ignoring case and surrounding whitespace.
func MatchAnswer(selected, correct string) bool {
	return strings.EqualFold(
		strings.TrimSpace(selected),
		strings.TrimSpace(correct),
	)
}
