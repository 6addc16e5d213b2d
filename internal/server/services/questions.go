package services

import (
	"context"
	"database/sql"
	"time"

	"minventory/internal/logging"
	"minventory/internal/server/models"
	"minventory/internal/server/repositories/repomanager"
	"minventory/internal/server/session"

	"github.com/google/uuid"
)

// QuestionService stores free-text Q&A records; question and answer are
// both sealed.
type QuestionService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	logger logging.Logger
}

func NewQuestionService(db *sql.DB, repos repomanager.RepositoryManager, logger logging.Logger) *QuestionService {
	return &QuestionService{
		db:     db,
		repos:  repos,
		logger: logger.With("module", "question_service"),
	}
}

type QuestionInput struct {
	Question *string
	Answer   *string
}

type QuestionView struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *QuestionService) Create(ctx context.Context, sess *session.Session, input QuestionInput) (string, error) {
	text := ""
	if input.Question != nil {
		text = *input.Question
	}
	sealedQuestion, err := sealString(text, sess.Key())
	if err != nil {
		return "", err
	}

	question := &models.Question{
		ID:       uuid.NewString(),
		UserID:   sess.UserID(),
		Question: sealedQuestion,
	}
	if input.Answer != nil && *input.Answer != "" {
		if question.Answer, err = sealString(*input.Answer, sess.Key()); err != nil {
			return "", err
		}
	}

	if err := s.repos.Questions(s.db).Create(ctx, question); err != nil {
		return "", err
	}
	return question.ID, nil
}

func (s *QuestionService) Update(ctx context.Context, sess *session.Session, id string, input QuestionInput) error {
	repo := s.repos.Questions(s.db)

	question, err := repo.GetByID(ctx, id, sess.UserID())
	if err != nil {
		return err
	}

	if input.Question != nil {
		if question.Question, err = sealString(*input.Question, sess.Key()); err != nil {
			return err
		}
	}
	if input.Answer != nil {
		if *input.Answer == "" {
			question.Answer = nil
		} else if question.Answer, err = sealString(*input.Answer, sess.Key()); err != nil {
			return err
		}
	}

	return repo.Update(ctx, question)
}

// List returns the caller's questions with both sides decrypted. Records
// that fail to open degrade to the sentinel instead of hiding the listing.
func (s *QuestionService) List(ctx context.Context, sess *session.Session) ([]QuestionView, error) {
	records, err := s.repos.Questions(s.db).ListByUser(ctx, sess.UserID())
	if err != nil {
		return nil, err
	}

	views := make([]QuestionView, 0, len(records))
	for _, record := range records {
		view := QuestionView{
			ID:        record.ID,
			Question:  openStringOrSentinel(record.Question, sess.Key()),
			CreatedAt: record.CreatedAt,
			UpdatedAt: record.UpdatedAt,
		}
		if len(record.Answer) > 0 {
			view.Answer = openStringOrSentinel(record.Answer, sess.Key())
		}
		views = append(views, view)
	}
	return views, nil
}

// Get returns one question; decryption failure propagates.
func (s *QuestionService) Get(ctx context.Context, sess *session.Session, id string) (*QuestionView, error) {
	record, err := s.repos.Questions(s.db).GetByID(ctx, id, sess.UserID())
	if err != nil {
		return nil, err
	}

	text, err := openString(record.Question, sess.Key())
	if err != nil {
		return nil, err
	}

	view := &QuestionView{
		ID:        record.ID,
		Question:  text,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	if len(record.Answer) > 0 {
		answer, err := openString(record.Answer, sess.Key())
		if err != nil {
			return nil, err
		}
		view.Answer = answer
	}
	return view, nil
}

func (s *QuestionService) Delete(ctx context.Context, sess *session.Session, id string) error {
	return s.repos.Questions(s.db).Delete(ctx, id, sess.UserID())
}
