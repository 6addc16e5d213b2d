// Package repotest provides an in-memory RepositoryManager for service and
// transport tests. The db handle handed to the accessors is ignored: every
// accessor returns the same shared state, so code running inside dbx.WithTx
// sees it too.
package repotest

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"minventory/internal/common"
	"minventory/internal/dbx"
	"minventory/internal/server/models"
	"minventory/internal/server/repositories/categories"
	"minventory/internal/server/repositories/items"
	"minventory/internal/server/repositories/loans"
	"minventory/internal/server/repositories/questions"
	"minventory/internal/server/repositories/transactions"
	"minventory/internal/server/repositories/users"
)

// Repos is the in-memory store. Tests may inspect and seed the exported
// maps directly; concurrent access from handlers goes through the mutex.
type Repos struct {
	mu sync.Mutex

	UsersByID      map[string]*models.User
	CategoriesByID map[string]*models.Category
	ItemsByID      map[string]*models.Item
	Links          map[string][]string // item id -> category ids
	Journal        []models.QuantityTransaction
	LoansByID      map[string]*models.Loan
	QuestionsByID  map[string]*models.Question
}

func NewRepos() *Repos {
	return &Repos{
		UsersByID:      make(map[string]*models.User),
		CategoriesByID: make(map[string]*models.Category),
		ItemsByID:      make(map[string]*models.Item),
		Links:          make(map[string][]string),
		LoansByID:      make(map[string]*models.Loan),
		QuestionsByID:  make(map[string]*models.Question),
	}
}

func (f *Repos) Users(dbx.DBTX) users.Repository               { return (*usersRepo)(f) }
func (f *Repos) Categories(dbx.DBTX) categories.Repository     { return (*categoriesRepo)(f) }
func (f *Repos) Items(dbx.DBTX) items.Repository               { return (*itemsRepo)(f) }
func (f *Repos) Questions(dbx.DBTX) questions.Repository       { return (*questionsRepo)(f) }
func (f *Repos) Loans(dbx.DBTX) loans.Repository               { return (*loansRepo)(f) }
func (f *Repos) Transactions(dbx.DBTX) transactions.Repository { return (*transactionsRepo)(f) }

func (f *Repos) Conn() *sql.DB                       { return nil }
func (f *Repos) RunMigrations(context.Context) error { return nil }
func (f *Repos) Close() error                        { return nil }

type usersRepo Repos

func (f *usersRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.UsersByID {
		if u.UserName == user.UserName {
			return nil, common.ErrAlreadyExists
		}
	}
	user.CreatedAt = time.Now()
	f.UsersByID[user.ID] = user
	return user, nil
}

func (f *usersRepo) GetByUserName(_ context.Context, userName string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.UsersByID {
		if u.UserName == userName {
			copied := *u
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *usersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.UsersByID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *usersRepo) UpdateTwoFactor(_ context.Context, userID, secret string, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.UsersByID[userID]
	if !ok {
		return common.ErrNotFound
	}
	u.TwoFactorSecret = secret
	u.TwoFactorEnabled = enabled
	return nil
}

type categoriesRepo Repos

func (f *categoriesRepo) Create(_ context.Context, category *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	f.CategoriesByID[category.ID] = category
	return nil
}

func (f *categoriesRepo) Update(_ context.Context, category *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.CategoriesByID[category.ID]
	if !ok || stored.UserID != category.UserID {
		return common.ErrNotFound
	}
	category.UpdatedAt = time.Now()
	f.CategoriesByID[category.ID] = category
	return nil
}

func (f *categoriesRepo) Delete(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.CategoriesByID[id]
	if !ok || stored.UserID != userID {
		return common.ErrNotFound
	}
	delete(f.CategoriesByID, id)
	return nil
}

func (f *categoriesRepo) GetByID(_ context.Context, id, userID string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.CategoriesByID[id]
	if !ok || stored.UserID != userID {
		return nil, common.ErrNotFound
	}
	copied := *stored
	return &copied, nil
}

func (f *categoriesRepo) ListByUser(_ context.Context, userID string) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Category
	for _, c := range f.CategoriesByID {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type itemsRepo Repos

func (f *itemsRepo) Create(_ context.Context, item *models.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	f.ItemsByID[item.ID] = item
	return nil
}

func (f *itemsRepo) Update(_ context.Context, item *models.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.ItemsByID[item.ID]
	if !ok || stored.UserID != item.UserID {
		return common.ErrNotFound
	}
	item.UpdatedAt = time.Now()
	f.ItemsByID[item.ID] = item
	return nil
}

func (f *itemsRepo) Delete(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.ItemsByID[id]
	if !ok || stored.UserID != userID {
		return common.ErrNotFound
	}
	delete(f.ItemsByID, id)
	delete(f.Links, id)
	return nil
}

func (f *itemsRepo) GetByID(_ context.Context, id, userID string) (*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.ItemsByID[id]
	if !ok || stored.UserID != userID {
		return nil, common.ErrNotFound
	}
	copied := *stored
	return &copied, nil
}

func (f *itemsRepo) ListByUser(_ context.Context, userID string, categoryIDs []string) ([]models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	wanted := make(map[string]bool, len(categoryIDs))
	for _, id := range categoryIDs {
		wanted[id] = true
	}

	var out []models.Item
	for _, item := range f.ItemsByID {
		if item.UserID != userID {
			continue
		}
		if len(categoryIDs) > 0 {
			linked := false
			for _, categoryID := range f.Links[item.ID] {
				if wanted[categoryID] {
					linked = true
					break
				}
			}
			if !linked {
				continue
			}
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *itemsRepo) SetCategories(_ context.Context, itemID string, categoryIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Links[itemID] = append([]string(nil), categoryIDs...)
	return nil
}

func (f *itemsRepo) GetCategories(_ context.Context, itemID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Links[itemID]...), nil
}

func (f *itemsRepo) CategoryLinksByUser(_ context.Context, userID string) (map[string][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string][]string)
	for itemID, categoryIDs := range f.Links {
		if item, ok := f.ItemsByID[itemID]; ok && item.UserID == userID {
			out[itemID] = append([]string(nil), categoryIDs...)
		}
	}
	return out, nil
}

func (f *itemsRepo) DirectCounts(_ context.Context, userID string) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int)
	for itemID, categoryIDs := range f.Links {
		if item, ok := f.ItemsByID[itemID]; ok && item.UserID == userID {
			for _, categoryID := range categoryIDs {
				out[categoryID]++
			}
		}
	}
	return out, nil
}

func (f *itemsRepo) AddQuantity(_ context.Context, id, userID string, delta float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.ItemsByID[id]
	if !ok || stored.UserID != userID {
		return common.ErrNotFound
	}
	stored.Quantity += delta
	return nil
}

type transactionsRepo Repos

func (f *transactionsRepo) Create(_ context.Context, tx *models.QuantityTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx.CreatedAt = time.Now()
	f.Journal = append(f.Journal, *tx)
	return nil
}

func (f *transactionsRepo) ListByItem(_ context.Context, itemID string) ([]models.QuantityTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.QuantityTransaction
	for _, tx := range f.Journal {
		if tx.ItemID == itemID {
			out = append(out, tx)
		}
	}
	return out, nil
}

type loansRepo Repos

func (f *loansRepo) Create(_ context.Context, loan *models.Loan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	loan.CreatedAt = time.Now()
	loan.UpdatedAt = loan.CreatedAt
	f.LoansByID[loan.ID] = loan
	return nil
}

func (f *loansRepo) Update(_ context.Context, loan *models.Loan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.LoansByID[loan.ID]; !ok {
		return common.ErrNotFound
	}
	loan.UpdatedAt = time.Now()
	f.LoansByID[loan.ID] = loan
	return nil
}

func (f *loansRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.LoansByID[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.LoansByID, id)
	return nil
}

func (f *loansRepo) GetByID(_ context.Context, id string) (*models.Loan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.LoansByID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *stored
	return &copied, nil
}

func (f *loansRepo) ListByItem(_ context.Context, itemID string) ([]models.Loan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Loan
	for _, loan := range f.LoansByID {
		if loan.ItemID == itemID {
			out = append(out, *loan)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *loansRepo) ListByUser(_ context.Context, userID string) ([]models.Loan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Loan
	for _, loan := range f.LoansByID {
		if item, ok := f.ItemsByID[loan.ItemID]; ok && item.UserID == userID {
			out = append(out, *loan)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type questionsRepo Repos

func (f *questionsRepo) Create(_ context.Context, question *models.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	question.CreatedAt = time.Now()
	question.UpdatedAt = question.CreatedAt
	f.QuestionsByID[question.ID] = question
	return nil
}

func (f *questionsRepo) Update(_ context.Context, question *models.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.QuestionsByID[question.ID]
	if !ok || stored.UserID != question.UserID {
		return common.ErrNotFound
	}
	question.UpdatedAt = time.Now()
	f.QuestionsByID[question.ID] = question
	return nil
}

func (f *questionsRepo) Delete(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.QuestionsByID[id]
	if !ok || stored.UserID != userID {
		return common.ErrNotFound
	}
	delete(f.QuestionsByID, id)
	return nil
}

func (f *questionsRepo) GetByID(_ context.Context, id, userID string) (*models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.QuestionsByID[id]
	if !ok || stored.UserID != userID {
		return nil, common.ErrNotFound
	}
	copied := *stored
	return &copied, nil
}

func (f *questionsRepo) ListByUser(_ context.Context, userID string) ([]models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Question
	for _, q := range f.QuestionsByID {
		if q.UserID == userID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
