package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minventory/internal/common"
	"minventory/internal/server/models"
	"minventory/internal/server/repositories/repotest"
)

func newItemService(t *testing.T, repos *repotest.Repos) (*ItemService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewItemService(db, repos, nil, discardLogger()), mock
}

func expectTx(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

func seedCategory(t *testing.T, repos *repotest.Repos, id, parentID string, private bool) {
	t.Helper()
	require.NoError(t, repos.Categories(nil).Create(context.Background(), &models.Category{
		ID: id, UserID: "u1", Name: []byte("x"), ParentID: parentID, Private: private,
	}))
}

func floatptr(f float64) *float64 { return &f }

func TestItemCreateDefaults(t *testing.T) {
	ctx := context.Background()
	repos := newFakeRepos()
	svc, mock := newItemService(t, repos)
	sess := newTestSession("u1")

	expectTx(mock)
	id, err := svc.Create(ctx, sess, ItemInput{Name: strptr("Hammer")})
	require.NoError(t, err)

	item := repos.ItemsByID[id]
	require.NotNil(t, item)
	assert.Equal(t, 1.0, item.Quantity)
	assert.Equal(t, models.UsageUndefined, item.UsageFreq)
	assert.Equal(t, models.IntentionUndecided, item.Intention)
	assert.NotEqual(t, []byte("Hammer"), item.Name)

	// the opening journal entry mirrors the starting quantity
	txs, err := repos.Transactions(nil).ListByItem(ctx, id)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.ReasonInitial, txs[0].Reason)
	assert.Equal(t, 1.0, txs[0].Delta)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestItemCreateClampsNegativeQuantity(t *testing.T) {
	ctx := context.Background()
	repos := newFakeRepos()
	svc, mock := newItemService(t, repos)
	sess := newTestSession("u1")

	expectTx(mock)
	id, err := svc.Create(ctx, sess, ItemInput{Name: strptr("Ghost"), Quantity: floatptr(-5)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, repos.ItemsByID[id].Quantity)

	// a zero opening quantity leaves no journal entry
	txs, err := repos.Transactions(nil).ListByItem(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestItemCreateWithCategories(t *testing.T) {
	ctx := context.Background()
	repos := newFakeRepos()
	svc, mock := newItemService(t, repos)
	sess := newTestSession("u1")

	seedCategory(t, repos, "c1", "", false)

	expectTx(mock)
	id, err := svc.Create(ctx, sess, ItemInput{Name: strptr("Hammer"), CategoryIDs: []string{"c1"}})
	require.NoError(t, err)

	linked, err := repos.Items(nil).GetCategories(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, linked)
}

func TestItemUpdate(t *testing.T) {
	ctx := context.Background()
	repos := newFakeRepos()
	svc, mock := newItemService(t, repos)
	sess := newTestSession("u1")

	seedCategory(t, repos, "c1", "", false)
	seedCategory(t, repos, "c2", "", false)

	expectTx(mock)
	id, err := svc.Create(ctx, sess, ItemInput{Name: strptr("Hammer"), CategoryIDs: []string{"c1"}})
	require.NoError(t, err)

	// nil CategoryIDs leaves the links alone
	expectTx(mock)
	require.NoError(t, svc.Update(ctx, sess, id, ItemInput{Name: strptr("Sledgehammer")}))
	linked, _ := repos.Items(nil).GetCategories(ctx, id)
	assert.Equal(t, []string{"c1"}, linked)

	expectTx(mock)
	require.NoError(t, svc.Update(ctx, sess, id, ItemInput{CategoryIDs: []string{"c2"}}))
	linked, _ = repos.Items(nil).GetCategories(ctx, id)
	assert.Equal(t, []string{"c2"}, linked)

	detail, err := svc.Get(ctx, sess, id)
	require.NoError(t, err)
	assert.Equal(t, "Sledgehammer", detail.Name)
}

func TestItemListGateAndSort(t *testing.T) {
	ctx := context.Background()
	repos := newFakeRepos()
	svc, mock := newItemService(t, repos)
	sess := newTestSession("u1")

	seedCategory(t, repos, "public", "", false)
	seedCategory(t, repos, "secret", "", true)

	create := func(name, categoryID string) string {
		expectTx(mock)
		input := ItemInput{Name: strptr(name)}
		if categoryID != "" {
			input.CategoryIDs = []string{categoryID}
		}
		id, err := svc.Create(ctx, sess, input)
		require.NoError(t, err)
		return id
	}
	create("banjo", "public")
	create("Anvil", "public")
	hiddenID := create("contraband", "secret")
	create("zither", "")

	views, err := svc.List(ctx, sess, "")
	require.NoError(t, err)
	require.Len(t, views, 3, "items in private categories are gone while locked")

	names := []string{views[0].Name, views[1].Name, views[2].Name}
	assert.Equal(t, []string{"Anvil", "banjo", "zither"}, names, "case-insensitive name order")

	sess.UnlockPrivacy()
	views, err = svc.List(ctx, sess, "")
	require.NoError(t, err)
	require.Len(t, views, 4)
	for _, v := range views {
		if v.ID == hiddenID {
			assert.True(t, v.Private)
		}
	}
}

func TestItemListGateDropsBeforeDecryption(t *testing.T) {
	ctx := context.Background()
	repos := newFakeRepos()
	svc, _ := newItemService(t, repos)
	sess := newTestSession("u1")

	seedCategory(t, repos, "secret", "", true)

	// a gated record never reaches decryption, so even garbage ciphertext
	// cannot surface as a sentinel while locked
	require.NoError(t, repos.Items(nil).Create(ctx, &models.Item{
		ID: "i1", UserID: "u1", Name: []byte("not ciphertext"),
	}))
	require.NoError(t, repos.Items(nil).SetCategories(ctx, "i1", []string{"secret"}))

	views, err := svc.List(ctx, sess, "")
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestItemListCategoryFilterExpandsSubtree(t *testing.T) {
	ctx := context.Background()
	repos := newFakeRepos()
	svc, mock := newItemService(t, repos)
	sess := newTestSession("u1")

	seedCategory(t, repos, "root", "", false)
	seedCategory(t, repos, "child", "root", false)

	expectTx(mock)
	inRootID, err := svc.Create(ctx, sess, ItemInput{Name: strptr("in root"), CategoryIDs: []string{"root"}})
	require.NoError(t, err)
	expectTx(mock)
	inChildID, err := svc.Create(ctx, sess, ItemInput{Name: strptr("in child"), CategoryIDs: []string{"child"}})
	require.NoError(t, err)
	expectTx(mock)
	_, err = svc.Create(ctx, sess, ItemInput{Name: strptr("unfiled")})
	require.NoError(t, err)

	views, err := svc.List(ctx, sess, "root")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.ElementsMatch(t, []string{inRootID, inChildID}, []string{views[0].ID, views[1].ID})

	views, err = svc.List(ctx, sess, "child")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, inChildID, views[0].ID)
}

func TestItemGetGate(t *testing.T) {
	ctx := context.Background()
	repos := newFakeRepos()
	svc, mock := newItemService(t, repos)
	sess := newTestSession("u1")

	seedCategory(t, repos, "parent", "", true)
	seedCategory(t, repos, "child", "parent", false)

	expectTx(mock)
	id, err := svc.Create(ctx, sess, ItemInput{Name: strptr("Heirloom"), CategoryIDs: []string{"child"}})
	require.NoError(t, err)

	// privacy inherited from the grandparent category gates the item
	_, err = svc.Get(ctx, sess, id)
	assert.ErrorIs(t, err, common.ErrAccessDenied)

	sess.UnlockPrivacy()
	detail, err := svc.Get(ctx, sess, id)
	require.NoError(t, err)
	assert.Equal(t, "Heirloom", detail.Name)
	assert.True(t, detail.Private)
	assert.Len(t, detail.Transactions, 1)
	assert.Empty(t, detail.Loans)
}

func TestItemAddTransaction(t *testing.T) {
	ctx := context.Background()
	repos := newFakeRepos()
	svc, mock := newItemService(t, repos)
	sess := newTestSession("u1")

	expectTx(mock)
	id, err := svc.Create(ctx, sess, ItemInput{Name: strptr("Candles"), Quantity: floatptr(2)})
	require.NoError(t, err)

	expectTx(mock)
	quantity, err := svc.AddTransaction(ctx, sess, id, 3, models.ReasonOther, "restock")
	require.NoError(t, err)
	assert.Equal(t, 5.0, quantity)
	assert.Equal(t, 5.0, repos.ItemsByID[id].Quantity)

	// a draining delta is clamped so the quantity never goes negative
	expectTx(mock)
	quantity, err = svc.AddTransaction(ctx, sess, id, -8, models.ReasonConsumed, "")
	require.NoError(t, err)
	assert.Equal(t, 0.0, quantity)

	txs, err := repos.Transactions(nil).ListByItem(ctx, id)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, -5.0, txs[2].Delta, "the clamped delta is what gets journaled")

	// an unknown reason degrades to "other"
	expectTx(mock)
	_, err = svc.AddTransaction(ctx, sess, id, 1, "evaporated", "")
	require.NoError(t, err)
	txs, _ = repos.Transactions(nil).ListByItem(ctx, id)
	assert.Equal(t, models.ReasonOther, txs[3].Reason)
}

func TestItemImageRoundTrip(t *testing.T) {
	ctx := context.Background()
	repos := newFakeRepos()
	svc, mock := newItemService(t, repos)
	sess := newTestSession("u1")

	expectTx(mock)
	id, err := svc.Create(ctx, sess, ItemInput{Name: strptr("Poster")})
	require.NoError(t, err)

	image := []byte("full-size-bytes")
	thumb := []byte("thumb-bytes")
	require.NoError(t, svc.SetImage(ctx, sess, id, ImageUpload{
		Image: image, ImageMime: "image/jpeg", ImageWidth: 1200, ImageHeight: 800,
		Thumbnail: thumb, ThumbMime: "image/webp", ThumbWidth: 120, ThumbHeight: 80,
	}))

	// stored blobs are sealed, not the raw uploads
	assert.NotEqual(t, image, repos.ItemsByID[id].ImageBlob)
	assert.NotEqual(t, thumb, repos.ItemsByID[id].ThumbnailBlob)

	got, mime, err := svc.GetImage(ctx, sess, id)
	require.NoError(t, err)
	assert.Equal(t, image, got)
	assert.Equal(t, "image/jpeg", mime)

	got, mime, err = svc.GetThumbnail(ctx, sess, id)
	require.NoError(t, err)
	assert.Equal(t, thumb, got)
	assert.Equal(t, "image/webp", mime)

	views, err := svc.List(ctx, sess, "")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].HasImage)
	assert.Equal(t, 1200, views[0].ImageWidth)
}

func TestItemImageMissing(t *testing.T) {
	ctx := context.Background()
	repos := newFakeRepos()
	svc, mock := newItemService(t, repos)
	sess := newTestSession("u1")

	expectTx(mock)
	id, err := svc.Create(ctx, sess, ItemInput{Name: strptr("Bare")})
	require.NoError(t, err)

	_, _, err = svc.GetImage(ctx, sess, id)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, _, err = svc.GetThumbnail(ctx, sess, id)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestItemDelete(t *testing.T) {
	ctx := context.Background()
	repos := newFakeRepos()
	svc, mock := newItemService(t, repos)
	sess := newTestSession("u1")

	expectTx(mock)
	id, err := svc.Create(ctx, sess, ItemInput{Name: strptr("Junk")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, sess, id))
	assert.ErrorIs(t, svc.Delete(ctx, sess, id), common.ErrNotFound)
}

func TestItemOwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	repos := newFakeRepos()
	svc, mock := newItemService(t, repos)
	alice := newTestSession("u1")
	mallory := newTestSession("u2")

	expectTx(mock)
	id, err := svc.Create(ctx, alice, ItemInput{Name: strptr("Hers")})
	require.NoError(t, err)

	_, err = svc.Get(ctx, mallory, id)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, mallory, id), common.ErrNotFound)

	views, err := svc.List(ctx, mallory, "")
	require.NoError(t, err)
	assert.Empty(t, views)
}
