package services

import (
	"context"
	"database/sql"
	"time"

	"minventory/internal/common"
	"minventory/internal/logging"
	"minventory/internal/server/config"
	"minventory/internal/server/hierarchy"
	"minventory/internal/server/models"
	"minventory/internal/server/privacy"
	"minventory/internal/server/repositories/repomanager"
	"minventory/internal/server/session"

	"github.com/google/uuid"
)

// CategoryService serves the category forest: encrypted names and
// descriptions, inherited privacy and recursive counts.
type CategoryService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	logger logging.Logger

	// privateDefaultInherit: a new category under a parent defaults to
	// private when no explicit flag is supplied.
	privateDefaultInherit bool
}

func NewCategoryService(db *sql.DB, repos repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *CategoryService {
	return &CategoryService{
		db:                    db,
		repos:                 repos,
		logger:                logger.With("module", "category_service"),
		privateDefaultInherit: cfg.PrivateDefaultInherit,
	}
}

// CategoryInput carries plaintext fields for create/update. Nil pointers
// mean "leave unchanged" on update and "use the default" on create.
type CategoryInput struct {
	Name             *string
	Description      *string
	ParentID         *string
	Private          *bool
	IntentionalCount *int
	Color            *string
}

// CategoryView is a decrypted category as served to the caller.
type CategoryView struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	ParentID         string    `json:"parentId,omitempty"`
	Private          bool      `json:"private"`
	EffectivePrivate bool      `json:"isPrivate"`
	IntentionalCount int       `json:"intentionalCount,omitempty"`
	Color            string    `json:"color,omitempty"`
	Count            int       `json:"count"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Create seals the text fields and stores a new category. With no explicit
// flag, the private default follows the configured rule: inherit-style
// (private iff it has a parent) or always public.
func (s *CategoryService) Create(ctx context.Context, sess *session.Session, input CategoryInput) (string, error) {
	name := ""
	if input.Name != nil {
		name = *input.Name
	}
	sealedName, err := sealString(name, sess.Key())
	if err != nil {
		return "", err
	}

	category := &models.Category{
		ID:     uuid.NewString(),
		UserID: sess.UserID(),
	}
	category.Name = sealedName

	if input.Description != nil && *input.Description != "" {
		if category.Description, err = sealString(*input.Description, sess.Key()); err != nil {
			return "", err
		}
	}
	if input.ParentID != nil {
		category.ParentID = *input.ParentID
	}
	if input.Private != nil {
		category.Private = *input.Private
	} else {
		category.Private = s.privateDefaultInherit && category.ParentID != ""
	}
	if input.IntentionalCount != nil {
		category.IntentionalCount = *input.IntentionalCount
	}
	if input.Color != nil {
		category.Color = *input.Color
	}

	if err := s.repos.Categories(s.db).Create(ctx, category); err != nil {
		return "", err
	}
	return category.ID, nil
}

// Update applies the supplied fields to an existing category.
func (s *CategoryService) Update(ctx context.Context, sess *session.Session, id string, input CategoryInput) error {
	repo := s.repos.Categories(s.db)

	category, err := repo.GetByID(ctx, id, sess.UserID())
	if err != nil {
		return err
	}

	if input.Name != nil {
		if category.Name, err = sealString(*input.Name, sess.Key()); err != nil {
			return err
		}
	}
	if input.Description != nil {
		if *input.Description == "" {
			category.Description = nil
		} else if category.Description, err = sealString(*input.Description, sess.Key()); err != nil {
			return err
		}
	}
	if input.ParentID != nil {
		category.ParentID = *input.ParentID
	}
	if input.Private != nil {
		category.Private = *input.Private
	}
	if input.IntentionalCount != nil {
		category.IntentionalCount = *input.IntentionalCount
	}
	if input.Color != nil {
		category.Color = *input.Color
	}

	return repo.Update(ctx, category)
}

// List returns the caller's categories with decrypted text, recursive
// counts and resolved privacy, filtered through the gate. Hierarchy state
// (snapshot, memo) lives and dies inside this call.
func (s *CategoryService) List(ctx context.Context, sess *session.Session) ([]CategoryView, error) {
	cats, err := s.repos.Categories(s.db).ListByUser(ctx, sess.UserID())
	if err != nil {
		return nil, err
	}
	direct, err := s.repos.Items(s.db).DirectCounts(ctx, sess.UserID())
	if err != nil {
		return nil, err
	}

	snap := hierarchy.NewSnapshot(cats)
	effective := snap.ResolvePrivacy()
	counts := snap.AggregateCounts(direct)

	// gated records drop out before anything is decrypted
	cats = privacy.Filter(cats, func(c models.Category) bool { return effective[c.ID] }, sess.PrivacyUnlocked())

	views := make([]CategoryView, 0, len(cats))
	for _, cat := range cats {
		view := CategoryView{
			ID:               cat.ID,
			Name:             openStringOrSentinel(cat.Name, sess.Key()),
			ParentID:         cat.ParentID,
			Private:          cat.Private,
			EffectivePrivate: effective[cat.ID],
			IntentionalCount: cat.IntentionalCount,
			Color:            cat.Color,
			Count:            counts[cat.ID],
			CreatedAt:        cat.CreatedAt,
			UpdatedAt:        cat.UpdatedAt,
		}
		if len(cat.Description) > 0 {
			view.Description = openStringOrSentinel(cat.Description, sess.Key())
		}
		views = append(views, view)
	}
	return views, nil
}

// Get returns one decrypted category. A category behind a locked gate
// reports ErrAccessDenied; decryption failure of the name propagates.
func (s *CategoryService) Get(ctx context.Context, sess *session.Session, id string) (*CategoryView, error) {
	cats, err := s.repos.Categories(s.db).ListByUser(ctx, sess.UserID())
	if err != nil {
		return nil, err
	}

	var category *models.Category
	for i := range cats {
		if cats[i].ID == id {
			category = &cats[i]
			break
		}
	}
	if category == nil {
		return nil, common.ErrNotFound
	}

	snap := hierarchy.NewSnapshot(cats)
	effective := snap.IsEffectivelyPrivate(id)
	if !privacy.Visible(effective, sess.PrivacyUnlocked()) {
		return nil, common.ErrAccessDenied
	}

	name, err := openString(category.Name, sess.Key())
	if err != nil {
		return nil, err
	}

	view := &CategoryView{
		ID:               category.ID,
		Name:             name,
		ParentID:         category.ParentID,
		Private:          category.Private,
		EffectivePrivate: effective,
		IntentionalCount: category.IntentionalCount,
		Color:            category.Color,
		CreatedAt:        category.CreatedAt,
		UpdatedAt:        category.UpdatedAt,
	}
	if len(category.Description) > 0 {
		view.Description = openStringOrSentinel(category.Description, sess.Key())
	}
	return view, nil
}

// Descendants expands a category into itself plus its whole subtree.
func (s *CategoryService) Descendants(ctx context.Context, sess *session.Session, id string) ([]string, error) {
	cats, err := s.repos.Categories(s.db).ListByUser(ctx, sess.UserID())
	if err != nil {
		return nil, err
	}
	return hierarchy.NewSnapshot(cats).DescendantIDs(id), nil
}

func (s *CategoryService) Delete(ctx context.Context, sess *session.Session, id string) error {
	return s.repos.Categories(s.db).Delete(ctx, id, sess.UserID())
}
