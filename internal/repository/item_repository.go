package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkrogh/catalog-service/internal/model"
	"gorm.io/gorm"
)

// ItemRepository is the narrow persistence surface the catalog service
// depends on.
type ItemRepository interface {
	FindAll(ctx context.Context) ([]model.Item, error)
	FindByCategory(ctx context.Context, category string) ([]model.Item, error)
	// FindByItemID returns (nil, nil) when no record matches.
	FindByItemID(ctx context.Context, itemID int) (*model.Item, error)
	Count(ctx context.Context) (int64, error)
	ExistsByItemID(ctx context.Context, itemID int) (bool, error)
	Create(ctx context.Context, item *model.Item) error
	// UpdateFields fully replaces category, description and attachments of
	// the record with the given business id. ItemID and UserID never change.
	UpdateFields(ctx context.Context, itemID int, category, itemDesc string, attachments []model.Attachment) error
	Delete(ctx context.Context, itemID int) error
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func attachmentOrder(db *gorm.DB) *gorm.DB {
	return db.Order("seq")
}

func (r *itemRepository) FindAll(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	if err := r.db.WithContext(ctx).
		Preload("Attachments", attachmentOrder).
		Order("item_id").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

func (r *itemRepository) FindByCategory(ctx context.Context, category string) ([]model.Item, error) {
	var items []model.Item
	if err := r.db.WithContext(ctx).
		Preload("Attachments", attachmentOrder).
		Where("category = ?", category).
		Order("item_id").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("listing items in category %s: %w", category, err)
	}
	return items, nil
}

func (r *itemRepository) FindByItemID(ctx context.Context, itemID int) (*model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).
		Preload("Attachments", attachmentOrder).
		Where("item_id = ?", itemID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item %d: %w", itemID, err)
	}
	return &item, nil
}

func (r *itemRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Item{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return count, nil
}

func (r *itemRepository) ExistsByItemID(ctx context.Context, itemID int) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("item_id = ?", itemID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking item %d: %w", itemID, err)
	}
	return count > 0, nil
}

func (r *itemRepository) Create(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *itemRepository) UpdateFields(ctx context.Context, itemID int, category, itemDesc string, attachments []model.Attachment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.Item
		if err := tx.Where("item_id = ?", itemID).First(&item).Error; err != nil {
			return err
		}
		if err := tx.Where("item_ref = ?", item.ID).
			Delete(&model.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&item).
			Updates(map[string]any{"category": category, "item_desc": itemDesc}).Error; err != nil {
			return err
		}
		for i := range attachments {
			attachments[i].ItemRef = item.ID
		}
		if len(attachments) > 0 {
			if err := tx.Create(&attachments).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("updating item %d: %w", itemID, err)
	}
	return nil
}

func (r *itemRepository) Delete(ctx context.Context, itemID int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.Item
		if err := tx.Where("item_id = ?", itemID).First(&item).Error; err != nil {
			return err
		}
		if err := tx.Where("item_ref = ?", item.ID).
			Delete(&model.Attachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&item).Error
	})
	if err != nil {
		return fmt.Errorf("deleting item %d: %w", itemID, err)
	}
	return nil
}
