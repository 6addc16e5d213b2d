package services

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"minventory/internal/common"
	"minventory/internal/cryptox"
	"minventory/internal/dbx"
	"minventory/internal/logging"
	"minventory/internal/server/blobstore"
	"minventory/internal/server/hierarchy"
	"minventory/internal/server/models"
	"minventory/internal/server/privacy"
	"minventory/internal/server/repositories/repomanager"
	"minventory/internal/server/session"

	"github.com/google/uuid"
)

// ItemService serves inventory items: sealed names and images, category
// links, the quantity journal and loans. An item inherits privacy from its
// linked categories; it has no private flag of its own.
type ItemService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	blobs  blobstore.BlobStore
	logger logging.Logger
}

// NewItemService wires the item service. blobs may be nil, in which case
// full-size image originals stay in the database row.
func NewItemService(db *sql.DB, repos repomanager.RepositoryManager, blobs blobstore.BlobStore, logger logging.Logger) *ItemService {
	return &ItemService{
		db:     db,
		repos:  repos,
		blobs:  blobs,
		logger: logger.With("module", "item_service"),
	}
}

// ItemInput carries plaintext fields for create/update. Nil pointers mean
// "leave unchanged" on update and "use the default" on create. A nil
// CategoryIDs leaves links alone; an empty non-nil slice clears them.
type ItemInput struct {
	Name        *string
	Quantity    *float64
	UsageFreq   *string
	Attachment  *string
	Intention   *string
	Joy         *string
	IsIsolated  *bool
	CategoryIDs []string
}

// ImageUpload is a decoded image pair as received from the client. Both
// payloads are plaintext here and sealed before they touch storage.
type ImageUpload struct {
	Image       []byte
	ImageMime   string
	ImageWidth  int
	ImageHeight int

	Thumbnail   []byte
	ThumbMime   string
	ThumbWidth  int
	ThumbHeight int
}

// ItemView is a decrypted item as served in listings.
type ItemView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Quantity    float64   `json:"quantity"`
	UsageFreq   string    `json:"usageFrequency"`
	Attachment  string    `json:"attachment"`
	Intention   string    `json:"intention"`
	Joy         string    `json:"joy"`
	IsIsolated  bool      `json:"isIsolated"`
	CategoryIDs []string  `json:"categoryIds"`
	Private     bool      `json:"isPrivate"`
	HasImage    bool      `json:"hasImage"`
	ImageMime   string    `json:"imageMime,omitempty"`
	ImageWidth  int       `json:"imageWidth,omitempty"`
	ImageHeight int       `json:"imageHeight,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ItemDetail is the single-item view: the listing fields plus the quantity
// journal and loan history.
type ItemDetail struct {
	ItemView
	Transactions []TransactionView `json:"transactions"`
	Loans        []LoanView        `json:"loans"`
}

// TransactionView is one quantity-journal entry.
type TransactionView struct {
	ID        string    `json:"id"`
	Delta     float64   `json:"delta"`
	Reason    string    `json:"reason"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

var validReasons = map[string]bool{
	models.ReasonInitial:  true,
	models.ReasonConsumed: true,
	models.ReasonLost:     true,
	models.ReasonBorrowed: true,
	models.ReasonGifted:   true,
	models.ReasonOther:    true,
}

func normalizeReason(reason string) string {
	if validReasons[reason] {
		return reason
	}
	return models.ReasonOther
}

// Create seals the name and stores a new item, its category links and the
// opening quantity-journal entry in one transaction. Quantity defaults to 1
// and never starts below 0; an opening quantity of 0 is not journaled.
func (s *ItemService) Create(ctx context.Context, sess *session.Session, input ItemInput) (string, error) {
	name := ""
	if input.Name != nil {
		name = *input.Name
	}
	sealedName, err := sealString(name, sess.Key())
	if err != nil {
		return "", err
	}

	item := &models.Item{
		ID:         uuid.NewString(),
		UserID:     sess.UserID(),
		Name:       sealedName,
		Quantity:   1,
		UsageFreq:  models.UsageUndefined,
		Attachment: models.AttachmentUndefined,
		Intention:  models.IntentionUndecided,
		Joy:        models.JoyMedium,
	}
	if input.Quantity != nil {
		item.Quantity = *input.Quantity
		if item.Quantity < 0 {
			item.Quantity = 0
		}
	}
	if input.UsageFreq != nil {
		item.UsageFreq = *input.UsageFreq
	}
	if input.Attachment != nil {
		item.Attachment = *input.Attachment
	}
	if input.Intention != nil {
		item.Intention = *input.Intention
	}
	if input.Joy != nil {
		item.Joy = *input.Joy
	}
	if input.IsIsolated != nil {
		item.IsIsolated = *input.IsIsolated
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Items(tx).Create(ctx, item); err != nil {
			return err
		}
		if len(input.CategoryIDs) > 0 {
			if err := s.repos.Items(tx).SetCategories(ctx, item.ID, input.CategoryIDs); err != nil {
				return err
			}
		}
		if item.Quantity == 0 {
			return nil
		}
		return s.repos.Transactions(tx).Create(ctx, &models.QuantityTransaction{
			ID:     uuid.NewString(),
			ItemID: item.ID,
			Delta:  item.Quantity,
			Reason: models.ReasonInitial,
		})
	})
	if err != nil {
		return "", err
	}
	return item.ID, nil
}

// Update applies the supplied fields to an existing item. Quantity is not
// updatable here: it only moves through the journal (AddTransaction).
func (s *ItemService) Update(ctx context.Context, sess *session.Session, id string, input ItemInput) error {
	item, err := s.repos.Items(s.db).GetByID(ctx, id, sess.UserID())
	if err != nil {
		return err
	}

	if input.Name != nil {
		if item.Name, err = sealString(*input.Name, sess.Key()); err != nil {
			return err
		}
	}
	if input.UsageFreq != nil {
		item.UsageFreq = *input.UsageFreq
	}
	if input.Attachment != nil {
		item.Attachment = *input.Attachment
	}
	if input.Intention != nil {
		item.Intention = *input.Intention
	}
	if input.Joy != nil {
		item.Joy = *input.Joy
	}
	if input.IsIsolated != nil {
		item.IsIsolated = *input.IsIsolated
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Items(tx).Update(ctx, item); err != nil {
			return err
		}
		if input.CategoryIDs != nil {
			return s.repos.Items(tx).SetCategories(ctx, item.ID, input.CategoryIDs)
		}
		return nil
	})
}

// List returns the caller's items with decrypted names, filtered through
// the privacy gate and sorted by name. A non-empty categoryID narrows the
// listing to that category's whole subtree.
func (s *ItemService) List(ctx context.Context, sess *session.Session, categoryID string) ([]ItemView, error) {
	cats, err := s.repos.Categories(s.db).ListByUser(ctx, sess.UserID())
	if err != nil {
		return nil, err
	}
	snap := hierarchy.NewSnapshot(cats)
	effective := snap.ResolvePrivacy()

	var filter []string
	if categoryID != "" {
		filter = snap.DescendantIDs(categoryID)
	}

	items, err := s.repos.Items(s.db).ListByUser(ctx, sess.UserID(), filter)
	if err != nil {
		return nil, err
	}
	links, err := s.repos.Items(s.db).CategoryLinksByUser(ctx, sess.UserID())
	if err != nil {
		return nil, err
	}

	// gated records drop out before any name is decrypted
	items = privacy.Filter(items, func(it models.Item) bool {
		for _, categoryID := range links[it.ID] {
			if effective[categoryID] {
				return true
			}
		}
		return false
	}, sess.PrivacyUnlocked())

	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, itemView(&item, links[item.ID], effective, sess.Key()))
	}

	sort.SliceStable(views, func(i, j int) bool {
		return strings.ToLower(views[i].Name) < strings.ToLower(views[j].Name)
	})
	return views, nil
}

// Get returns one decrypted item with its journal and loans. An item behind
// a locked gate reports ErrAccessDenied; decryption failure of the name
// propagates instead of degrading to the sentinel.
func (s *ItemService) Get(ctx context.Context, sess *session.Session, id string) (*ItemDetail, error) {
	item, private, err := s.fetchVisible(ctx, sess, id)
	if err != nil {
		return nil, err
	}

	categoryIDs, err := s.repos.Items(s.db).GetCategories(ctx, id)
	if err != nil {
		return nil, err
	}
	name, err := openString(item.Name, sess.Key())
	if err != nil {
		return nil, err
	}

	txs, err := s.repos.Transactions(s.db).ListByItem(ctx, id)
	if err != nil {
		return nil, err
	}
	itemLoans, err := s.repos.Loans(s.db).ListByItem(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ItemDetail{
		ItemView:     itemView(item, categoryIDs, nil, sess.Key()),
		Transactions: make([]TransactionView, 0, len(txs)),
		Loans:        make([]LoanView, 0, len(itemLoans)),
	}
	detail.Name = name
	detail.Private = private
	for _, tx := range txs {
		detail.Transactions = append(detail.Transactions, TransactionView{
			ID:        tx.ID,
			Delta:     tx.Delta,
			Reason:    tx.Reason,
			Note:      tx.Note,
			CreatedAt: tx.CreatedAt,
		})
	}
	for _, loan := range itemLoans {
		detail.Loans = append(detail.Loans, loanView(&loan))
	}
	return detail, nil
}

// SetImage seals an uploaded image pair and attaches it to the item. With
// an object store configured the sealed original goes there and only the
// storage key is written to the row; the thumbnail always stays in the row.
func (s *ItemService) SetImage(ctx context.Context, sess *session.Session, id string, upload ImageUpload) error {
	item, err := s.repos.Items(s.db).GetByID(ctx, id, sess.UserID())
	if err != nil {
		return err
	}

	sealedImage, err := cryptox.Seal(upload.Image, sess.Key())
	if err != nil {
		return err
	}
	sealedThumb, err := cryptox.Seal(upload.Thumbnail, sess.Key())
	if err != nil {
		return err
	}

	oldKey := item.ImageKey
	if s.blobs != nil {
		key := blobstore.NewStorageKey(sess.UserID())
		if err := s.blobs.Put(ctx, key, sealedImage); err != nil {
			return err
		}
		item.ImageKey = key
		item.ImageBlob = nil
	} else {
		item.ImageKey = ""
		item.ImageBlob = sealedImage
	}

	item.ThumbnailBlob = sealedThumb
	item.ImageMime = upload.ImageMime
	item.ThumbMime = upload.ThumbMime
	item.ImageWidth = upload.ImageWidth
	item.ImageHeight = upload.ImageHeight
	item.ThumbWidth = upload.ThumbWidth
	item.ThumbHeight = upload.ThumbHeight

	if err := s.repos.Items(s.db).Update(ctx, item); err != nil {
		return err
	}

	if s.blobs != nil && oldKey != "" && oldKey != item.ImageKey {
		if err := s.blobs.Delete(ctx, oldKey); err != nil {
			s.logger.Warn(ctx, "stale image blob not deleted", "key", oldKey, "error", err)
		}
	}
	return nil
}

// GetImage returns the decrypted full-size image and its mime type.
func (s *ItemService) GetImage(ctx context.Context, sess *session.Session, id string) ([]byte, string, error) {
	item, _, err := s.fetchVisible(ctx, sess, id)
	if err != nil {
		return nil, "", err
	}

	sealed := item.ImageBlob
	if item.ImageKey != "" {
		if s.blobs == nil {
			return nil, "", common.ErrNotFound
		}
		if sealed, err = s.blobs.Get(ctx, item.ImageKey); err != nil {
			return nil, "", err
		}
	}
	if len(sealed) == 0 {
		return nil, "", common.ErrNotFound
	}

	image, err := openField(sealed, sess.Key())
	if err != nil {
		return nil, "", err
	}
	return image, item.ImageMime, nil
}

// GetThumbnail returns the decrypted thumbnail and its mime type.
func (s *ItemService) GetThumbnail(ctx context.Context, sess *session.Session, id string) ([]byte, string, error) {
	item, _, err := s.fetchVisible(ctx, sess, id)
	if err != nil {
		return nil, "", err
	}
	if len(item.ThumbnailBlob) == 0 {
		return nil, "", common.ErrNotFound
	}

	thumb, err := openField(item.ThumbnailBlob, sess.Key())
	if err != nil {
		return nil, "", err
	}
	return thumb, item.ThumbMime, nil
}

// Delete removes the item; links, journal entries and loans go with it via
// the schema's cascades. The offloaded image blob, if any, is cleaned up
// best-effort afterwards.
func (s *ItemService) Delete(ctx context.Context, sess *session.Session, id string) error {
	item, err := s.repos.Items(s.db).GetByID(ctx, id, sess.UserID())
	if err != nil {
		return err
	}

	if err := s.repos.Items(s.db).Delete(ctx, id, sess.UserID()); err != nil {
		return err
	}

	if s.blobs != nil && item.ImageKey != "" {
		if err := s.blobs.Delete(ctx, item.ImageKey); err != nil {
			s.logger.Warn(ctx, "orphaned image blob not deleted", "key", item.ImageKey, "error", err)
		}
	}
	return nil
}

// AddTransaction journals a quantity delta and moves the cached quantity
// with it, in one transaction. The delta is clamped so the quantity never
// goes below zero; the clamped delta is what gets journaled. Returns the
// new quantity.
func (s *ItemService) AddTransaction(ctx context.Context, sess *session.Session, itemID string, delta float64, reason, note string) (float64, error) {
	item, err := s.repos.Items(s.db).GetByID(ctx, itemID, sess.UserID())
	if err != nil {
		return 0, err
	}

	if item.Quantity+delta < 0 {
		delta = -item.Quantity
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Transactions(tx).Create(ctx, &models.QuantityTransaction{
			ID:     uuid.NewString(),
			ItemID: itemID,
			Delta:  delta,
			Reason: normalizeReason(reason),
			Note:   note,
		}); err != nil {
			return err
		}
		return s.repos.Items(tx).AddQuantity(ctx, itemID, sess.UserID(), delta)
	})
	if err != nil {
		return 0, err
	}
	return item.Quantity + delta, nil
}

// fetchVisible loads the item, resolves its inherited privacy and enforces
// the gate: an item linked to any effectively-private category is invisible
// while the gate is locked.
func (s *ItemService) fetchVisible(ctx context.Context, sess *session.Session, id string) (*models.Item, bool, error) {
	item, err := s.repos.Items(s.db).GetByID(ctx, id, sess.UserID())
	if err != nil {
		return nil, false, err
	}

	categoryIDs, err := s.repos.Items(s.db).GetCategories(ctx, id)
	if err != nil {
		return nil, false, err
	}

	private := false
	if len(categoryIDs) > 0 {
		cats, err := s.repos.Categories(s.db).ListByUser(ctx, sess.UserID())
		if err != nil {
			return nil, false, err
		}
		snap := hierarchy.NewSnapshot(cats)
		for _, categoryID := range categoryIDs {
			if snap.IsEffectivelyPrivate(categoryID) {
				private = true
				break
			}
		}
	}

	if !privacy.Visible(private, sess.PrivacyUnlocked()) {
		return nil, false, common.ErrAccessDenied
	}
	return item, private, nil
}

// itemView builds a listing view. effective may be nil when the caller has
// already gated the item; linked categories then contribute no privacy flag.
func itemView(item *models.Item, categoryIDs []string, effective map[string]bool, key []byte) ItemView {
	private := false
	for _, categoryID := range categoryIDs {
		if effective[categoryID] {
			private = true
			break
		}
	}
	if categoryIDs == nil {
		categoryIDs = []string{}
	}
	return ItemView{
		ID:          item.ID,
		Name:        openStringOrSentinel(item.Name, key),
		Quantity:    item.Quantity,
		UsageFreq:   item.UsageFreq,
		Attachment:  item.Attachment,
		Intention:   item.Intention,
		Joy:         item.Joy,
		IsIsolated:  item.IsIsolated,
		CategoryIDs: categoryIDs,
		Private:     private,
		HasImage:    len(item.ImageBlob) > 0 || item.ImageKey != "",
		ImageMime:   item.ImageMime,
		ImageWidth:  item.ImageWidth,
		ImageHeight: item.ImageHeight,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}
