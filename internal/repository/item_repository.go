package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleamart/internal/model"
)

// ItemRepository defines item persistence operations.
type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	FindByID(ctx context.Context, id uint) (*model.Item, error)
	FindByIDAndSeller(ctx context.Context, id uint, seller uuid.UUID) (*model.Item, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	MarkPurchased(ctx context.Context, id uint, buyer uuid.UUID, at time.Time) (int64, error)
	List(ctx context.Context) ([]model.Item, error)
	ListWithNames(ctx context.Context) ([]model.ItemWithNames, error)
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo ItemRepository) error) error
}

type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new item repository.
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *itemRepository) FindByID(ctx context.Context, id uint) (*model.Item, error) {
	var item model.Item
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByIDAndSeller fetches an item only when the supplied seller matches the
// stored one. A missing row and a foreign seller both come back as
// gorm.ErrRecordNotFound.
func (r *itemRepository) FindByIDAndSeller(ctx context.Context, id uint, seller uuid.UUID) (*model.Item, error) {
	var item model.Item
	if err := r.db.WithContext(ctx).
		Where("id = ? AND seller = ?", id, seller).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateFields applies a partial column update to one item.
func (r *itemRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Item{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *itemRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Item{}, id).Error
}

// MarkPurchased performs the purchase as one conditional UPDATE guarded on
// availability. The returned row count is 0 when another buyer already won.
func (r *itemRepository) MarkPurchased(ctx context.Context, id uint, buyer uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("id = ? AND is_purchased = ? AND is_active = ?", id, false, true).
		Updates(map[string]interface{}{
			"customer":     buyer,
			"is_purchased": true,
			"is_active":    false,
			"status":       model.StatusInactive,
			"updated_at":   at,
		})
	return res.RowsAffected, res.Error
}

func (r *itemRepository) List(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	if err := r.db.WithContext(ctx).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListWithNames resolves seller and customer uids to display names with LEFT
// JOINs, so rows with dangling references still come back (names nil).
func (r *itemRepository) ListWithNames(ctx context.Context) ([]model.ItemWithNames, error) {
	var rows []model.ItemWithNames
	err := r.db.WithContext(ctx).
		Table("item").
		Select("item.*, su.name AS seller_name, cu.name AS customer_name").
		Joins("LEFT JOIN user su ON su.uid = item.seller").
		Joins("LEFT JOIN user cu ON cu.uid = item.customer").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// WithTransaction executes a function within a database transaction.
func (r *itemRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo ItemRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &itemRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
