package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleamart/internal/cache"
	apperrors "fleamart/internal/errors"
	"fleamart/internal/model"
	"fleamart/internal/repository"
	"fleamart/internal/storage"
)

const (
	itemsCacheKey = "items:with_names"
	itemsCacheTTL = 30 * time.Second
)

// CreateItemInput carries everything needed to create a listing. Exactly one
// of ImageURL and ImageData is expected; when ImageData is present the bytes
// are uploaded to object storage before any row is written.
type CreateItemInput struct {
	Seller           uuid.UUID
	Name             string
	Detail           string
	Status           int
	ImageURL         string
	ImageData        []byte
	ImageContentType string
	CreatedAt        *time.Time
}

// UpdateItemInput is a partial patch; nil fields keep their stored values.
type UpdateItemInput struct {
	Name      *string
	Detail    *string
	Image     *string
	Status    *int
	UpdatedAt time.Time
}

// ItemService exposes listing operations.
type ItemService interface {
	CreateItem(ctx context.Context, in CreateItemInput) (*model.Item, error)
	UpdateItem(ctx context.Context, id uint, seller uuid.UUID, patch UpdateItemInput) (*model.Item, error)
	DeleteItem(ctx context.Context, id uint, seller uuid.UUID) error
	Purchase(ctx context.Context, id uint, buyer uuid.UUID) (*model.Item, error)
	ListItems(ctx context.Context) ([]model.Item, error)
	ListItemsWithNames(ctx context.Context) ([]model.ItemWithNames, error)
}

type itemService struct {
	itemRepo repository.ItemRepository
	userRepo repository.UserRepository
	uploader storage.Uploader
	cache    *cache.Client
}

// NewItemService builds an ItemService with repositories, uploader and cache.
func NewItemService(
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
	uploader storage.Uploader,
	cache *cache.Client,
) ItemService {
	return &itemService{
		itemRepo: itemRepo,
		userRepo: userRepo,
		uploader: uploader,
		cache:    cache,
	}
}

// CreateItem uploads the image (when raw bytes were supplied) and inserts the
// listing. Upload failure means no row is created.
func (s *itemService) CreateItem(ctx context.Context, in CreateItemInput) (*model.Item, error) {
	imageURL := in.ImageURL
	if in.ImageData != nil {
		if len(in.ImageData) == 0 {
			return nil, apperrors.ErrEmptyUpload
		}
		key := uuid.New().String()
		url, err := s.uploader.Upload(ctx, key, in.ImageContentType, in.ImageData)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrUploadFailed, err)
		}
		imageURL = url
	}

	item := &model.Item{
		Seller:      in.Seller,
		Name:        in.Name,
		Detail:      in.Detail,
		Image:       imageURL,
		Status:      in.Status,
		IsPurchased: false,
		IsActive:    true,
	}
	if in.CreatedAt != nil {
		item.CreatedAt = *in.CreatedAt
		item.UpdatedAt = *in.CreatedAt
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.invalidateListing(ctx)
	return item, nil
}

// UpdateItem applies a partial patch after the ownership check, both inside
// one transaction. A missing item and a foreign item fail the same way.
func (s *itemService) UpdateItem(ctx context.Context, id uint, seller uuid.UUID, patch UpdateItemInput) (*model.Item, error) {
	var updated *model.Item
	err := s.itemRepo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.ItemRepository) error {
		if _, err := txRepo.FindByIDAndSeller(ctx, id, seller); err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.ErrNotOwner
			}
			return err
		}

		fields := map[string]interface{}{
			"updated_at": patch.UpdatedAt,
		}
		if patch.Name != nil {
			fields["name"] = *patch.Name
		}
		if patch.Detail != nil {
			fields["detail"] = *patch.Detail
		}
		if patch.Image != nil {
			fields["image"] = *patch.Image
		}
		if patch.Status != nil {
			fields["status"] = *patch.Status
		}

		if err := txRepo.UpdateFields(ctx, id, fields); err != nil {
			return err
		}

		item, err := txRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateListing(ctx)
	return updated, nil
}

// DeleteItem removes a listing permanently after the ownership check.
func (s *itemService) DeleteItem(ctx context.Context, id uint, seller uuid.UUID) error {
	err := s.itemRepo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.ItemRepository) error {
		if _, err := txRepo.FindByIDAndSeller(ctx, id, seller); err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.ErrNotOwner
			}
			return err
		}
		return txRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.invalidateListing(ctx)
	return nil
}

// Purchase transfers a listing to the buyer. The winning write is a single
// conditional UPDATE, so exactly one concurrent buyer can ever succeed.
func (s *itemService) Purchase(ctx context.Context, id uint, buyer uuid.UUID) (*model.Item, error) {
	if _, err := s.userRepo.FindByUID(ctx, buyer); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find buyer: %w", err)
	}

	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrItemNotFound
		}
		return nil, fmt.Errorf("find item: %w", err)
	}

	if item.Seller == buyer {
		return nil, apperrors.ErrSelfPurchase
	}
	if item.IsPurchased || !item.IsActive {
		return nil, apperrors.ErrItemUnavailable
	}

	rows, err := s.itemRepo.MarkPurchased(ctx, id, buyer, time.Now())
	if err != nil {
		return nil, fmt.Errorf("mark purchased: %w", err)
	}
	if rows == 0 {
		// Another buyer won between the availability check and the write.
		return nil, apperrors.ErrItemUnavailable
	}

	purchased, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload item: %w", err)
	}

	s.invalidateListing(ctx)
	return purchased, nil
}

// ListItems returns every listing with raw seller/customer uids.
func (s *itemService) ListItems(ctx context.Context) ([]model.Item, error) {
	return s.itemRepo.List(ctx)
}

// ListItemsWithNames returns every listing with display names resolved,
// served from Redis for a short window when possible.
func (s *itemService) ListItemsWithNames(ctx context.Context) ([]model.ItemWithNames, error) {
	if data, _ := s.cache.Get(ctx, itemsCacheKey); data != nil {
		var cached []model.ItemWithNames
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	items, err := s.itemRepo.ListWithNames(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(items); err == nil {
		_ = s.cache.Set(ctx, itemsCacheKey, payload, itemsCacheTTL)
	}
	return items, nil
}

func (s *itemService) invalidateListing(ctx context.Context) {
	_ = s.cache.Delete(ctx, itemsCacheKey)
}
