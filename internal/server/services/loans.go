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

// LoanService tracks items lent out. Loans carry no user column; ownership
// is always checked through the owning item.
type LoanService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	logger logging.Logger
}

func NewLoanService(db *sql.DB, repos repomanager.RepositoryManager, logger logging.Logger) *LoanService {
	return &LoanService{
		db:     db,
		repos:  repos,
		logger: logger.With("module", "loan_service"),
	}
}

// LoanInput carries the mutable loan fields. Nil pointers mean "leave
// unchanged" on update and "use the default" on create.
type LoanInput struct {
	Borrower *string
	Note     *string
	Quantity *float64
	LentAt   *time.Time
}

// LoanView is a loan as served to the caller. Borrower and note are stored
// in plaintext: loans describe people, not possessions.
type LoanView struct {
	ID         string     `json:"id"`
	ItemID     string     `json:"itemId"`
	Borrower   string     `json:"borrower"`
	Note       string     `json:"note,omitempty"`
	Quantity   float64    `json:"quantity"`
	LentAt     time.Time  `json:"lentAt"`
	ReturnedAt *time.Time `json:"returnedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func loanView(loan *models.Loan) LoanView {
	return LoanView{
		ID:         loan.ID,
		ItemID:     loan.ItemID,
		Borrower:   loan.Borrower,
		Note:       loan.Note,
		Quantity:   loan.Quantity,
		LentAt:     loan.LentAt,
		ReturnedAt: loan.ReturnedAt,
		CreatedAt:  loan.CreatedAt,
		UpdatedAt:  loan.UpdatedAt,
	}
}

// Create opens a loan against one of the caller's items. Quantity defaults
// to 1 and LentAt to now.
func (s *LoanService) Create(ctx context.Context, sess *session.Session, itemID string, input LoanInput) (string, error) {
	if _, err := s.repos.Items(s.db).GetByID(ctx, itemID, sess.UserID()); err != nil {
		return "", err
	}

	loan := &models.Loan{
		ID:       uuid.NewString(),
		ItemID:   itemID,
		Quantity: 1,
		LentAt:   time.Now(),
	}
	if input.Borrower != nil {
		loan.Borrower = *input.Borrower
	}
	if input.Note != nil {
		loan.Note = *input.Note
	}
	if input.Quantity != nil && *input.Quantity > 0 {
		loan.Quantity = *input.Quantity
	}
	if input.LentAt != nil {
		loan.LentAt = *input.LentAt
	}

	if err := s.repos.Loans(s.db).Create(ctx, loan); err != nil {
		return "", err
	}
	return loan.ID, nil
}

// Update applies the supplied fields to an open or returned loan.
func (s *LoanService) Update(ctx context.Context, sess *session.Session, id string, input LoanInput) error {
	loan, err := s.fetchOwned(ctx, sess, id)
	if err != nil {
		return err
	}

	if input.Borrower != nil {
		loan.Borrower = *input.Borrower
	}
	if input.Note != nil {
		loan.Note = *input.Note
	}
	if input.Quantity != nil && *input.Quantity > 0 {
		loan.Quantity = *input.Quantity
	}
	if input.LentAt != nil {
		loan.LentAt = *input.LentAt
	}

	return s.repos.Loans(s.db).Update(ctx, loan)
}

// Return closes a loan. Returning an already-returned loan keeps the first
// return time.
func (s *LoanService) Return(ctx context.Context, sess *session.Session, id string) error {
	loan, err := s.fetchOwned(ctx, sess, id)
	if err != nil {
		return err
	}
	if loan.ReturnedAt != nil {
		return nil
	}

	now := time.Now()
	loan.ReturnedAt = &now
	return s.repos.Loans(s.db).Update(ctx, loan)
}

// List returns every loan across the caller's items.
func (s *LoanService) List(ctx context.Context, sess *session.Session) ([]LoanView, error) {
	userLoans, err := s.repos.Loans(s.db).ListByUser(ctx, sess.UserID())
	if err != nil {
		return nil, err
	}

	views := make([]LoanView, 0, len(userLoans))
	for _, loan := range userLoans {
		views = append(views, loanView(&loan))
	}
	return views, nil
}

func (s *LoanService) Delete(ctx context.Context, sess *session.Session, id string) error {
	if _, err := s.fetchOwned(ctx, sess, id); err != nil {
		return err
	}
	return s.repos.Loans(s.db).Delete(ctx, id)
}

// fetchOwned loads a loan and verifies the caller owns its item. A loan on
// somebody else's item reads as not-found.
func (s *LoanService) fetchOwned(ctx context.Context, sess *session.Session, id string) (*models.Loan, error) {
	loan, err := s.repos.Loans(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.Items(s.db).GetByID(ctx, loan.ItemID, sess.UserID()); err != nil {
		return nil, err
	}
	return loan, nil
}
