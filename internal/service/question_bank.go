package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/finquest/internal/domain"
	"github.com/aliskhannn/finquest/internal/domain/entities"
)

// QuestionBank provides read access to the quiz catalog and seeds it once.
type QuestionBank struct {
	repository QuestionRepository
	tr         Transactor
	logger     *zap.Logger
}

// NewQuestionBank creates a new QuestionBank.
func NewQuestionBank(repository QuestionRepository, tr Transactor, logger *zap.Logger) *QuestionBank {
	return &QuestionBank{
		repository: repository,
		tr:         tr,
		logger:     logger,
	}
}

// ListQuestions returns the active questions of a level.
func (b *QuestionBank) ListQuestions(ctx context.Context, level int) ([]*entities.QuizQuestion, error) {
	if level < 1 {
		return nil, domain.ErrInvalidLevel
	}
	return b.repository.ListActiveByLevel(ctx, level)
}

// Get returns a question by id regardless of its active flag.
func (b *QuestionBank) Get(ctx context.Context, id int64) (*entities.QuizQuestion, error) {
	return b.repository.GetByID(ctx, id)
}

// Deactivate hides a question from future selections. Sessions that already serve it still
// accept answers for it.
func (b *QuestionBank) Deactivate(ctx context.Context, id int64) error {
	if err := b.repository.SetActive(ctx, id, false); err != nil {
		return fmt.Errorf("deactivate question %d: %w", id, err)
	}
	b.logger.Info("question deactivated", zap.Int64("question_id", id))
	return nil
}

// Seed writes the catalog if it is empty and returns the number of questions written.
// A non-empty catalog makes Seed a no-op; an invalid question rejects the whole batch.
func (b *QuestionBank) Seed(ctx context.Context, questions []*entities.QuizQuestion) (int, error) {
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return 0, fmt.Errorf("question #%d: %w", i+1, err)
		}
	}

	seeded := 0
	err := b.tr.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := b.repository.Count(ctx)
		if err != nil {
			return fmt.Errorf("count questions: %w", err)
		}
		if existing > 0 {
			b.logger.Info("catalog already seeded, skipping", zap.Int("questions", existing))
			return nil
		}

		now := time.Now().UTC()
		for _, q := range questions {
			q.Active = true
			q.CreatedAt = now
		}
		if err := b.repository.CreateBatch(ctx, questions); err != nil {
			return fmt.Errorf("create questions: %w", err)
		}
		seeded = len(questions)

		return nil
	})
	if err != nil {
		return 0, err
	}

	if seeded > 0 {
		b.logger.Info("catalog seeded", zap.Int("questions", seeded))
	}

	return seeded, nil
}

// SeedFromFile loads a {"questions": [...]} JSON catalog and seeds it.
func (b *QuestionBank) SeedFromFile(ctx context.Context, path string) (int, error) {
	questions, err := LoadCatalog(path)
	if err != nil {
		return 0, err
	}
	return b.Seed(ctx, questions)
}

// LoadCatalog reads a JSON catalog file.
func LoadCatalog(path string) ([]*entities.QuizQuestion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var wrapper struct {
		Questions []*entities.QuizQuestion `json:"questions"`
	}
	if err = json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog JSON: %w", err)
	}
	if len(wrapper.Questions) == 0 {
		return nil, fmt.Errorf("catalog %s has no questions", path)
	}

	return wrapper.Questions, nil
}
