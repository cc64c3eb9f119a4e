package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/aliskhannn/finquest/internal/domain"
	"github.com/aliskhannn/finquest/internal/domain/entities"
)

// QuestionSelector picks the questions of a new session.
// It prefers questions the user has not answered yet and tops up from answered ones
// so a user who exhausted a level can still play it.
type QuestionSelector struct {
	bank   *QuestionBank
	ledger *AnswerLedger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewQuestionSelector creates a new QuestionSelector.
func NewQuestionSelector(bank *QuestionBank, ledger *AnswerLedger) *QuestionSelector {
	return &QuestionSelector{
		bank:   bank,
		ledger: ledger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Select returns count distinct questions of the level, unanswered ones first.
// It fails with domain.ErrInsufficientContent when the level's active catalog is smaller than count.
func (s *QuestionSelector) Select(
	ctx context.Context, userID string, level, count int,
) ([]*entities.QuizQuestion, error) {
	if count <= 0 {
		return nil, domain.ErrInvalidCount
	}

	catalog, err := s.bank.ListQuestions(ctx, level)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	catalog = uniqueByID(catalog)
	if len(catalog) < count {
		return nil, fmt.Errorf("%w: level %d has %d questions, need %d",
			domain.ErrInsufficientContent, level, len(catalog), count)
	}

	answered, err := s.ledger.ListAnsweredQuestionIDs(ctx, userID, level)
	if err != nil {
		return nil, err
	}

	var fresh, seen []*entities.QuizQuestion
	for _, q := range catalog {
		if _, ok := answered[q.ID]; ok {
			seen = append(seen, q)
		} else {
			fresh = append(fresh, q)
		}
	}

	out := make([]*entities.QuizQuestion, 0, count)
	out, remaining := appendAndRemaining(out, takeFirst(s.shuffled(fresh), count), count)
	if remaining > 0 {
		out = append(out, takeFirst(s.shuffled(seen), remaining)...)
	}

	return out, nil
}

// ShuffleOptions returns the options of a question in random order.
func (s *QuestionSelector) ShuffleOptions(options []string) []string {
	out := append([]string(nil), options...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })

	return out
}

// shuffled returns a shuffled copy of the input slice.
func (s *QuestionSelector) shuffled(in []*entities.QuizQuestion) []*entities.QuizQuestion {
	out := append([]*entities.QuizQuestion(nil), in...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })

	return out
}

// uniqueByID removes duplicate questions while preserving the original order.
func uniqueByID(in []*entities.QuizQuestion) []*entities.QuizQuestion {
	seen := make(map[int64]struct{}, len(in))
	out := make([]*entities.QuizQuestion, 0, len(in))
	for _, q := range in {
		if _, ok := seen[q.ID]; ok {
			continue
		}
		seen[q.ID] = struct{}{}
		out = append(out, q)
	}
	return out
}

// takeFirst returns the first n elements of qs, or the whole slice if it is shorter.
func takeFirst(qs []*entities.QuizQuestion, n int) []*entities.QuizQuestion {
	if n <= 0 {
		return nil
	}
	if len(qs) <= n {
		return qs
	}
	return qs[:n]
}

// appendAndRemaining appends add to out and returns the updated out and remaining capacity up to total.
func appendAndRemaining(out, add []*entities.QuizQuestion, total int) ([]*entities.QuizQuestion, int) {
	out = append(out, add...)
	rem := total - len(out)
	if rem < 0 {
		rem = 0
	}
	return out, rem
}
