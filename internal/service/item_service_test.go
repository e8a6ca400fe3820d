package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/mkrogh/catalog-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeRepo is a map-backed stand-in for the gorm repository. It enforces the
// item_id unique index the same way the database does, by returning
// gorm.ErrDuplicatedKey.
type fakeRepo struct {
	items         []model.Item
	countOverride *int64
	dupOnCreate   int
	nextRef       uint64
}

func (r *fakeRepo) add(itemID int, category, userID, itemDesc string, attachments ...model.Attachment) {
	r.nextRef++
	r.items = append(r.items, model.Item{
		ID:          r.nextRef,
		ItemID:      itemID,
		Category:    category,
		UserID:      userID,
		ItemDesc:    itemDesc,
		Attachments: attachments,
	})
}

func (r *fakeRepo) FindAll(_ context.Context) ([]model.Item, error) {
	return append([]model.Item(nil), r.items...), nil
}

func (r *fakeRepo) FindByCategory(_ context.Context, category string) ([]model.Item, error) {
	var matched []model.Item
	for _, item := range r.items {
		if item.Category == category {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

func (r *fakeRepo) FindByItemID(_ context.Context, itemID int) (*model.Item, error) {
	for i := range r.items {
		if r.items[i].ItemID == itemID {
			item := r.items[i]
			return &item, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) Count(_ context.Context) (int64, error) {
	if r.countOverride != nil {
		return *r.countOverride, nil
	}
	return int64(len(r.items)), nil
}

func (r *fakeRepo) ExistsByItemID(_ context.Context, itemID int) (bool, error) {
	for _, item := range r.items {
		if item.ItemID == itemID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) Create(_ context.Context, item *model.Item) error {
	if r.dupOnCreate > 0 {
		r.dupOnCreate--
		return gorm.ErrDuplicatedKey
	}
	for _, existing := range r.items {
		if existing.ItemID == item.ItemID {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextRef++
	item.ID = r.nextRef
	r.items = append(r.items, *item)
	return nil
}

func (r *fakeRepo) UpdateFields(_ context.Context, itemID int, category, itemDesc string, attachments []model.Attachment) error {
	for i := range r.items {
		if r.items[i].ItemID == itemID {
			r.items[i].Category = category
			r.items[i].ItemDesc = itemDesc
			r.items[i].Attachments = attachments
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeRepo) Delete(_ context.Context, itemID int) error {
	for i := range r.items {
		if r.items[i].ItemID == itemID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// fakeSink records blob writes in memory.
type fakeSink struct {
	dirs      []string
	files     map[string][]byte
	types     map[string]string
	failWrite error
}

func newFakeSink() *fakeSink {
	return &fakeSink{files: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeSink) EnsureDirectory(_ context.Context, dir string) error {
	s.dirs = append(s.dirs, dir)
	return nil
}

func (s *fakeSink) WriteFile(_ context.Context, path string, data []byte, contentType string) error {
	if s.failWrite != nil {
		return s.failWrite
	}
	s.files[path] = append([]byte(nil), data...)
	s.types[path] = contentType
	return nil
}

func newTestService(repo *fakeRepo, sink *fakeSink) ItemService {
	return NewItemService(repo, sink, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func upload(contentType string, data []byte) model.Upload {
	return model.Upload{ContentType: contentType, Content: bytes.NewReader(data)}
}

func TestListAllEmptyStore(t *testing.T) {
	svc := newTestService(&fakeRepo{}, newFakeSink())

	_, err := svc.ListAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestListAllReturnsEveryItem(t *testing.T) {
	repo := &fakeRepo{}
	repo.add(1, "FU", "alice", "oak desk")
	repo.add(2, "EL", "bob", "portable radio")
	svc := newTestService(repo, newFakeSink())

	items, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestListByCategoryNormalizesCode(t *testing.T) {
	repo := &fakeRepo{}
	repo.add(1, "FU", "alice", "oak desk")
	repo.add(2, "EL", "bob", "portable radio")
	svc := newTestService(repo, newFakeSink())

	items, err := svc.ListByCategory(context.Background(), "Furniture")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].ItemID)

	items, err = svc.ListByCategory(context.Background(), "el")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].ItemID)
}

func TestListByCategoryNoMatches(t *testing.T) {
	repo := &fakeRepo{}
	repo.add(1, "FU", "alice", "oak desk")
	svc := newTestService(repo, newFakeSink())

	_, err := svc.ListByCategory(context.Background(), "Garden")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestGetAbsentItem(t *testing.T) {
	svc := newTestService(&fakeRepo{}, newFakeSink())

	_, err := svc.Get(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCreateNormalizesCategory(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, newFakeSink())

	id, err := svc.Create(context.Background(), Submission{
		Category: "Furniture",
		UserID:   "alice",
		ItemDesc: "oak desk",
	})
	require.NoError(t, err)

	item, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "FU", item.Category)

	id, err = svc.Create(context.Background(), Submission{
		Category: "el",
		UserID:   "bob",
		ItemDesc: "portable radio",
	})
	require.NoError(t, err)

	item, err = svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "EL", item.Category)
}

func TestCreateAssignsNextID(t *testing.T) {
	repo := &fakeRepo{}
	repo.add(1, "FU", "alice", "a")
	repo.add(2, "FU", "alice", "b")
	repo.add(3, "FU", "alice", "c")
	svc := newTestService(repo, newFakeSink())

	id, err := svc.Create(context.Background(), Submission{
		Category: "Books",
		UserID:   "bob",
		ItemDesc: "atlas",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, id)
}

func TestCreateConflictOnSubmittedID(t *testing.T) {
	repo := &fakeRepo{}
	repo.add(7, "FU", "alice", "oak desk")
	svc := newTestService(repo, newFakeSink())

	_, err := svc.Create(context.Background(), Submission{
		ItemID:   7,
		Category: "Books",
		UserID:   "bob",
		ItemDesc: "atlas",
	})
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestCreateMissingFields(t *testing.T) {
	svc := newTestService(&fakeRepo{}, newFakeSink())

	for _, sub := range []Submission{
		{UserID: "alice", ItemDesc: "desk"},
		{Category: "Furniture", ItemDesc: "desk"},
		{Category: "Furniture", UserID: "alice"},
	} {
		_, err := svc.Create(context.Background(), sub)
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
	}
}

func TestCreateEncodesUploads(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, newFakeSink())

	payload := []byte{0x89, 0x50, 0x4e, 0x47}
	id, err := svc.Create(context.Background(), Submission{
		Category: "Electronics",
		UserID:   "bob",
		ItemDesc: "portable radio",
		Uploads:  []model.Upload{upload("image/png", payload)},
	})
	require.NoError(t, err)

	item, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, item.Attachments, 1)
	assert.Equal(t, "image/png", item.Attachments[0].MimeType)
	assert.Equal(t, payload, item.Attachments[0].Data)
	assert.Equal(t, 1, item.Attachments[0].Seq)
	assert.Empty(t, item.Uploads)
}

func TestCreateRejectsEmptyUpload(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, newFakeSink())

	_, err := svc.Create(context.Background(), Submission{
		Category: "Electronics",
		UserID:   "bob",
		ItemDesc: "portable radio",
		Uploads:  []model.Upload{upload("image/png", nil)},
	})
	require.Error(t, err)
	assert.Equal(t, KindAttachment, KindOf(err))
	assert.Empty(t, repo.items)
}

func TestCreateRetriesOnDuplicateKey(t *testing.T) {
	repo := &fakeRepo{dupOnCreate: 1}
	svc := newTestService(repo, newFakeSink())

	id, err := svc.Create(context.Background(), Submission{
		Category: "Books",
		UserID:   "bob",
		ItemDesc: "atlas",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, id)
	assert.Len(t, repo.items, 1)
}

func TestUpdateReplacesMutableFieldsOnly(t *testing.T) {
	repo := &fakeRepo{}
	repo.add(3, "HA", "alice", "sort tophat")
	svc := newTestService(repo, newFakeSink())

	err := svc.Update(context.Background(), 3, Submission{
		Category: "Electronics",
		ItemDesc: "portable radio",
	})
	require.NoError(t, err)

	item, err := svc.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, item.ItemID)
	assert.Equal(t, "alice", item.UserID)
	assert.Equal(t, "EL", item.Category)
	assert.Equal(t, "portable radio", item.ItemDesc)
}

func TestUpdateAbsentItemLeavesStoreUntouched(t *testing.T) {
	repo := &fakeRepo{}
	repo.add(1, "FU", "alice", "oak desk")
	svc := newTestService(repo, newFakeSink())

	err := svc.Update(context.Background(), 9, Submission{
		Category: "Electronics",
		ItemDesc: "portable radio",
	})
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "FU", repo.items[0].Category)
	assert.Equal(t, "oak desk", repo.items[0].ItemDesc)
}

func TestUpdateMissingFields(t *testing.T) {
	repo := &fakeRepo{}
	repo.add(1, "FU", "alice", "oak desk")
	svc := newTestService(repo, newFakeSink())

	err := svc.Update(context.Background(), 1, Submission{ItemDesc: "desk"})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	err = svc.Update(context.Background(), 1, Submission{Category: "Furniture"})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestUpdateWithoutUploadsClearsAttachments(t *testing.T) {
	repo := &fakeRepo{}
	repo.add(1, "EL", "bob", "portable radio", model.Attachment{
		Seq: 1, MimeType: "image/png", Data: []byte{1, 2, 3},
	})
	svc := newTestService(repo, newFakeSink())

	err := svc.Update(context.Background(), 1, Submission{
		Category: "Electronics",
		ItemDesc: "portable radio, no box",
	})
	require.NoError(t, err)

	item, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, item.Attachments)
}

func TestUpdateWithUploadsReplacesAttachments(t *testing.T) {
	repo := &fakeRepo{}
	repo.add(1, "EL", "bob", "portable radio", model.Attachment{
		Seq: 1, MimeType: "image/png", Data: []byte{1, 2, 3},
	})
	svc := newTestService(repo, newFakeSink())

	replacement := []byte{9, 8, 7}
	err := svc.Update(context.Background(), 1, Submission{
		Category: "Electronics",
		ItemDesc: "portable radio",
		Uploads:  []model.Upload{upload("image/jpeg", replacement)},
	})
	require.NoError(t, err)

	item, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, item.Attachments, 1)
	assert.Equal(t, "image/jpeg", item.Attachments[0].MimeType)
	assert.Equal(t, replacement, item.Attachments[0].Data)
}

func TestDeleteRemovesOnlyTarget(t *testing.T) {
	repo := &fakeRepo{}
	repo.add(1, "FU", "alice", "oak desk")
	repo.add(2, "EL", "bob", "portable radio")
	svc := newTestService(repo, newFakeSink())

	require.NoError(t, svc.Delete(context.Background(), 1))

	_, err := svc.Get(context.Background(), 1)
	assert.Equal(t, KindNotFound, KindOf(err))

	item, err := svc.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "EL", item.Category)
}

func TestDeleteAbsentItemMutatesNothing(t *testing.T) {
	repo := &fakeRepo{}
	repo.add(1, "FU", "alice", "oak desk")
	svc := newTestService(repo, newFakeSink())

	err := svc.Delete(context.Background(), 5)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Len(t, repo.items, 1)
}

func TestExportAttachmentsWritesThroughSink(t *testing.T) {
	repo := &fakeRepo{}
	repo.add(7, "EL", "bob", "portable radio",
		model.Attachment{Seq: 1, MimeType: "image/png", Data: []byte{1}},
		model.Attachment{Seq: 2, MimeType: "image/jpeg", Data: []byte{2}},
	)
	sink := newFakeSink()
	svc := newTestService(repo, sink)

	exported, err := svc.ExportAttachments(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, exported)
	assert.Contains(t, sink.dirs, "item-7")
	assert.Equal(t, []byte{1}, sink.files["item-7/image_1.png"])
	assert.Equal(t, []byte{2}, sink.files["item-7/image_2.jpeg"])

	// the stored record stays untouched
	item, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, item.Attachments, 2)
}

func TestExportAttachmentsBlobFailure(t *testing.T) {
	repo := &fakeRepo{}
	repo.add(7, "EL", "bob", "portable radio",
		model.Attachment{Seq: 1, MimeType: "image/png", Data: []byte{1}},
	)
	sink := newFakeSink()
	sink.failWrite = errors.New("bucket unavailable")
	svc := newTestService(repo, sink)

	_, err := svc.ExportAttachments(context.Background(), 7)
	require.Error(t, err)
	assert.Equal(t, KindAttachment, KindOf(err))
}

func TestCatalogLifecycle(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, newFakeSink())
	ctx := context.Background()

	id, err := svc.Create(ctx, Submission{
		Category: "Hatte",
		UserID:   "alice",
		ItemDesc: "Sort tophat",
	})
	require.NoError(t, err)

	item, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "HA", item.Category)
	assert.Empty(t, item.Attachments)

	err = svc.Update(ctx, id, Submission{
		Category: "Electronics",
		ItemDesc: "Sort tophat",
		Uploads:  []model.Upload{upload("image/png", []byte{0x89, 0x50})},
	})
	require.NoError(t, err)

	item, err = svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "EL", item.Category)
	assert.Len(t, item.Attachments, 1)

	require.NoError(t, svc.Delete(ctx, id))

	_, err = svc.Get(ctx, id)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}
