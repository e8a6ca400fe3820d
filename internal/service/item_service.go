package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkrogh/catalog-service/internal/model"
	"github.com/mkrogh/catalog-service/internal/repository"
	"github.com/mkrogh/catalog-service/internal/storage"
	"gorm.io/gorm"
)

// allocateRetries bounds how often Create re-runs id allocation after losing
// an insert race on the item_id unique index.
const allocateRetries = 3

// ItemService is the catalog's business surface. Every operation returns a
// classified *Error on failure and logs it exactly once at error level.
type ItemService interface {
	ListAll(ctx context.Context) ([]model.Item, error)
	ListByCategory(ctx context.Context, category string) ([]model.Item, error)
	Get(ctx context.Context, itemID int) (*model.Item, error)
	// ExportAttachments materializes an item's attachments through the blob
	// sink and returns the number of files written. A plain Get never does
	// this; exporting is an explicit operation.
	ExportAttachments(ctx context.Context, itemID int) (int, error)
	Create(ctx context.Context, sub Submission) (int, error)
	Update(ctx context.Context, itemID int, sub Submission) error
	Delete(ctx context.Context, itemID int) error
}

// Submission carries the client-supplied fields of a create or update
// request. ItemID is only consulted by Create's conflict pre-check; the
// stored id is always allocator-assigned.
type Submission struct {
	ItemID   int
	Category string
	UserID   string
	ItemDesc string
	Uploads  []model.Upload
}

type itemService struct {
	repo repository.ItemRepository
	sink storage.BlobSink
	log  *slog.Logger
}

func NewItemService(repo repository.ItemRepository, sink storage.BlobSink, log *slog.Logger) ItemService {
	return &itemService{repo: repo, sink: sink, log: log}
}

// fail logs the failure once at error level and returns it classified.
// Errors without a classification are reported as internal.
func (s *itemService) fail(err error) *Error {
	var se *Error
	if !errors.As(err, &se) {
		se = &Error{Kind: KindInternal, Message: err.Error()}
	}
	s.log.Error(se.Message, "kind", string(se.Kind))
	return se
}

func (s *itemService) ListAll(ctx context.Context) ([]model.Item, error) {
	s.log.Info("fetching all items")
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, s.fail(err)
	}
	if len(items) == 0 {
		return nil, s.fail(newError(KindNotFound, "no items were found"))
	}
	s.log.Info("fetched items", "count", len(items))
	return items, nil
}

func (s *itemService) ListByCategory(ctx context.Context, category string) ([]model.Item, error) {
	code := model.NormalizeCategory(category)
	s.log.Info("looking up items in category", "category", code)
	items, err := s.repo.FindByCategory(ctx, code)
	if err != nil {
		return nil, s.fail(err)
	}
	if len(items) == 0 {
		return nil, s.fail(newError(KindNotFound, "no items were found in category %s", code))
	}
	s.log.Info("found items in category", "category", code, "count", len(items))
	return items, nil
}

func (s *itemService) Get(ctx context.Context, itemID int) (*model.Item, error) {
	s.log.Info("looking up item", "itemId", itemID)
	item, err := s.repo.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, s.fail(err)
	}
	if item == nil {
		return nil, s.fail(newError(KindNotFound, "no item with id %d was found", itemID))
	}
	return item, nil
}

func (s *itemService) ExportAttachments(ctx context.Context, itemID int) (int, error) {
	item, err := s.Get(ctx, itemID)
	if err != nil {
		return 0, err
	}
	if len(item.Attachments) == 0 {
		return 0, nil
	}
	s.log.Info("exporting attachments", "itemId", itemID, "count", len(item.Attachments))
	if err := exportAttachments(ctx, s.sink, item); err != nil {
		return 0, s.fail(err)
	}
	return len(item.Attachments), nil
}

func (s *itemService) Create(ctx context.Context, sub Submission) (int, error) {
	if sub.Category == "" {
		return 0, s.fail(newError(KindValidation, "category is required"))
	}
	if sub.UserID == "" {
		return 0, s.fail(newError(KindValidation, "userId is required"))
	}
	if sub.ItemDesc == "" {
		return 0, s.fail(newError(KindValidation, "itemDesc is required"))
	}

	if sub.ItemID > 0 {
		taken, err := s.repo.ExistsByItemID(ctx, sub.ItemID)
		if err != nil {
			return 0, s.fail(err)
		}
		if taken {
			return 0, s.fail(newError(KindConflict, "an item with id %d already exists", sub.ItemID))
		}
	}

	var attachments []model.Attachment
	if len(sub.Uploads) > 0 {
		s.log.Info("encoding uploads", "count", len(sub.Uploads))
		var err error
		attachments, err = encodeUploads(sub.Uploads)
		if err != nil {
			return 0, s.fail(err)
		}
		sub.Uploads = nil
	}

	item := &model.Item{
		Category:    model.NormalizeCategory(sub.Category),
		UserID:      sub.UserID,
		ItemDesc:    sub.ItemDesc,
		Attachments: attachments,
	}

	for attempt := 0; ; attempt++ {
		id, err := allocateItemID(ctx, s.repo)
		if err != nil {
			return 0, s.fail(err)
		}
		item.ItemID = id

		err = s.repo.Create(ctx, item)
		if err == nil {
			s.log.Info("item created", "itemId", id, "category", item.Category)
			return id, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < allocateRetries {
			s.log.Info("item id taken by concurrent insert, reallocating", "itemId", id)
			continue
		}
		return 0, s.fail(fmt.Errorf("inserting item: %w", err))
	}
}

func (s *itemService) Update(ctx context.Context, itemID int, sub Submission) error {
	existing, err := s.repo.FindByItemID(ctx, itemID)
	if err != nil {
		return s.fail(err)
	}
	if existing == nil {
		return s.fail(newError(KindNotFound, "no item with id %d was found", itemID))
	}

	if sub.Category == "" {
		return s.fail(newError(KindValidation, "category is required"))
	}
	if sub.ItemDesc == "" {
		return s.fail(newError(KindValidation, "itemDesc is required"))
	}

	attachments := []model.Attachment{}
	if len(sub.Uploads) > 0 {
		s.log.Info("encoding uploads", "itemId", itemID, "count", len(sub.Uploads))
		attachments, err = encodeUploads(sub.Uploads)
		if err != nil {
			return s.fail(err)
		}
		sub.Uploads = nil
	}

	code := model.NormalizeCategory(sub.Category)
	if err := s.repo.UpdateFields(ctx, itemID, code, sub.ItemDesc, attachments); err != nil {
		return s.fail(err)
	}
	s.log.Info("item updated", "itemId", itemID, "category", code)
	return nil
}

func (s *itemService) Delete(ctx context.Context, itemID int) error {
	taken, err := s.repo.ExistsByItemID(ctx, itemID)
	if err != nil {
		return s.fail(err)
	}
	if !taken {
		return s.fail(newError(KindNotFound, "no item with id %d was found", itemID))
	}
	if err := s.repo.Delete(ctx, itemID); err != nil {
		return s.fail(err)
	}
	s.log.Info("item deleted", "itemId", itemID)
	return nil
}
