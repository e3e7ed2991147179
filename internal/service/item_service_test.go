package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "fleamart/internal/errors"
	"fleamart/internal/model"
	"fleamart/internal/repository"
)

// MockItemRepository is a mock implementation of ItemRepository.
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Create(ctx context.Context, item *model.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) FindByID(ctx context.Context, id uint) (*model.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

func (m *MockItemRepository) FindByIDAndSeller(ctx context.Context, id uint, seller uuid.UUID) (*model.Item, error) {
	args := m.Called(ctx, id, seller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

func (m *MockItemRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItemRepository) MarkPurchased(ctx context.Context, id uint, buyer uuid.UUID, at time.Time) (int64, error) {
	args := m.Called(ctx, id, buyer, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockItemRepository) List(ctx context.Context) ([]model.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockItemRepository) ListWithNames(ctx context.Context) ([]model.ItemWithNames, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ItemWithNames), args.Error(1)
}

// WithTransaction runs the callback against the mock itself, standing in for
// the transactional repository.
func (m *MockItemRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo repository.ItemRepository) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m)
}

// MockUploader is a mock implementation of storage.Uploader.
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, key, contentType, data)
	return args.String(0), args.Error(1)
}

func newItemService(itemRepo *MockItemRepository, userRepo *MockUserRepository, uploader *MockUploader) ItemService {
	// nil cache client degrades to a no-op, same as an unreachable redis.
	return NewItemService(itemRepo, userRepo, uploader, nil)
}

func TestItemService_CreateItem(t *testing.T) {
	seller := uuid.New()

	t.Run("with image bytes uploads first", func(t *testing.T) {
		mockItems := new(MockItemRepository)
		mockUploader := new(MockUploader)

		mockUploader.On("Upload", mock.Anything, mock.Anything, "image/png", []byte{1, 2, 3}).
			Return("https://cdn.example.com/abc", nil)
		mockItems.On("Create", mock.Anything, mock.MatchedBy(func(item *model.Item) bool {
			return item.Image == "https://cdn.example.com/abc" &&
				item.Seller == seller &&
				item.IsActive && !item.IsPurchased
		})).Return(nil)

		service := newItemService(mockItems, new(MockUserRepository), mockUploader)
		item, err := service.CreateItem(context.Background(), CreateItemInput{
			Seller:           seller,
			Name:             "Wooden Chair",
			Detail:           "Solid oak",
			Status:           model.StatusAvailable,
			ImageData:        []byte{1, 2, 3},
			ImageContentType: "image/png",
		})

		assert.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/abc", item.Image)
		mockItems.AssertExpectations(t)
		mockUploader.AssertExpectations(t)
	})

	t.Run("empty upload creates nothing", func(t *testing.T) {
		mockItems := new(MockItemRepository)
		service := newItemService(mockItems, new(MockUserRepository), new(MockUploader))

		_, err := service.CreateItem(context.Background(), CreateItemInput{
			Seller:    seller,
			Name:      "Wooden Chair",
			Detail:    "Solid oak",
			Status:    model.StatusAvailable,
			ImageData: []byte{},
		})

		assert.ErrorIs(t, err, apperrors.ErrEmptyUpload)
		mockItems.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("upload failure creates nothing", func(t *testing.T) {
		mockItems := new(MockItemRepository)
		mockUploader := new(MockUploader)
		mockUploader.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", assert.AnError)

		service := newItemService(mockItems, new(MockUserRepository), mockUploader)
		_, err := service.CreateItem(context.Background(), CreateItemInput{
			Seller:           seller,
			Name:             "Wooden Chair",
			Detail:           "Solid oak",
			Status:           model.StatusAvailable,
			ImageData:        []byte{1},
			ImageContentType: "image/png",
		})

		assert.ErrorIs(t, err, apperrors.ErrUploadFailed)
		mockItems.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("caller supplied date becomes created_at", func(t *testing.T) {
		mockItems := new(MockItemRepository)
		createdAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		mockItems.On("Create", mock.Anything, mock.MatchedBy(func(item *model.Item) bool {
			return item.CreatedAt.Equal(createdAt) && item.UpdatedAt.Equal(createdAt)
		})).Return(nil)

		service := newItemService(mockItems, new(MockUserRepository), new(MockUploader))
		_, err := service.CreateItem(context.Background(), CreateItemInput{
			Seller:    seller,
			Name:      "Desk Lamp",
			Detail:    "Warm white",
			Status:    model.StatusAvailable,
			ImageURL:  "https://example.com/lamp.jpg",
			CreatedAt: &createdAt,
		})

		assert.NoError(t, err)
		mockItems.AssertExpectations(t)
	})
}

func TestItemService_UpdateItem(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	now := time.Now()

	t.Run("not owner", func(t *testing.T) {
		mockItems := new(MockItemRepository)
		mockItems.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
		mockItems.On("FindByIDAndSeller", mock.Anything, uint(7), stranger).
			Return(nil, gorm.ErrRecordNotFound)

		service := newItemService(mockItems, new(MockUserRepository), new(MockUploader))
		_, err := service.UpdateItem(context.Background(), 7, stranger, UpdateItemInput{UpdatedAt: now})

		assert.Equal(t, apperrors.ErrNotOwner, err)
		mockItems.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing item fails identically", func(t *testing.T) {
		mockItems := new(MockItemRepository)
		mockItems.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
		mockItems.On("FindByIDAndSeller", mock.Anything, uint(9999), owner).
			Return(nil, gorm.ErrRecordNotFound)

		service := newItemService(mockItems, new(MockUserRepository), new(MockUploader))
		_, err := service.UpdateItem(context.Background(), 9999, owner, UpdateItemInput{UpdatedAt: now})

		assert.Equal(t, apperrors.ErrNotOwner, err)
	})

	t.Run("partial patch only touches supplied fields", func(t *testing.T) {
		newName := "Renamed Chair"
		existing := &model.Item{ID: 7, Seller: owner, Name: "Wooden Chair", Detail: "Solid oak"}
		updated := &model.Item{ID: 7, Seller: owner, Name: newName, Detail: "Solid oak", UpdatedAt: now}

		mockItems := new(MockItemRepository)
		mockItems.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
		mockItems.On("FindByIDAndSeller", mock.Anything, uint(7), owner).Return(existing, nil)
		mockItems.On("UpdateFields", mock.Anything, uint(7), mock.MatchedBy(func(fields map[string]interface{}) bool {
			_, hasDetail := fields["detail"]
			_, hasSeller := fields["seller"]
			return fields["name"] == newName && !hasDetail && !hasSeller
		})).Return(nil)
		mockItems.On("FindByID", mock.Anything, uint(7)).Return(updated, nil)

		service := newItemService(mockItems, new(MockUserRepository), new(MockUploader))
		item, err := service.UpdateItem(context.Background(), 7, owner, UpdateItemInput{
			Name:      &newName,
			UpdatedAt: now,
		})

		assert.NoError(t, err)
		assert.Equal(t, newName, item.Name)
		assert.Equal(t, "Solid oak", item.Detail)
		mockItems.AssertExpectations(t)
	})
}

func TestItemService_DeleteItem(t *testing.T) {
	owner := uuid.New()

	t.Run("owner deletes", func(t *testing.T) {
		mockItems := new(MockItemRepository)
		mockItems.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
		mockItems.On("FindByIDAndSeller", mock.Anything, uint(3), owner).
			Return(&model.Item{ID: 3, Seller: owner}, nil)
		mockItems.On("Delete", mock.Anything, uint(3)).Return(nil)

		service := newItemService(mockItems, new(MockUserRepository), new(MockUploader))
		assert.NoError(t, service.DeleteItem(context.Background(), 3, owner))
		mockItems.AssertExpectations(t)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		stranger := uuid.New()
		mockItems := new(MockItemRepository)
		mockItems.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
		mockItems.On("FindByIDAndSeller", mock.Anything, uint(3), stranger).
			Return(nil, gorm.ErrRecordNotFound)

		service := newItemService(mockItems, new(MockUserRepository), new(MockUploader))
		err := service.DeleteItem(context.Background(), 3, stranger)

		assert.Equal(t, apperrors.ErrNotOwner, err)
		mockItems.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestItemService_Purchase(t *testing.T) {
	seller := uuid.New()
	buyer := uuid.New()

	setupBuyer := func(m *MockUserRepository) {
		m.On("FindByUID", mock.Anything, buyer).Return(&model.User{UID: buyer, Name: "bob"}, nil)
	}

	t.Run("buyer not found", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByUID", mock.Anything, buyer).Return(nil, gorm.ErrRecordNotFound)

		service := newItemService(new(MockItemRepository), mockUsers, new(MockUploader))
		_, err := service.Purchase(context.Background(), 1, buyer)

		assert.Equal(t, apperrors.ErrUserNotFound, err)
	})

	t.Run("item not found", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		setupBuyer(mockUsers)
		mockItems := new(MockItemRepository)
		mockItems.On("FindByID", mock.Anything, uint(1)).Return(nil, gorm.ErrRecordNotFound)

		service := newItemService(mockItems, mockUsers, new(MockUploader))
		_, err := service.Purchase(context.Background(), 1, buyer)

		assert.Equal(t, apperrors.ErrItemNotFound, err)
	})

	t.Run("self purchase blocked", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByUID", mock.Anything, seller).Return(&model.User{UID: seller}, nil)
		mockItems := new(MockItemRepository)
		mockItems.On("FindByID", mock.Anything, uint(1)).
			Return(&model.Item{ID: 1, Seller: seller, IsActive: true}, nil)

		service := newItemService(mockItems, mockUsers, new(MockUploader))
		_, err := service.Purchase(context.Background(), 1, seller)

		assert.Equal(t, apperrors.ErrSelfPurchase, err)
	})

	t.Run("already purchased", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		setupBuyer(mockUsers)
		mockItems := new(MockItemRepository)
		mockItems.On("FindByID", mock.Anything, uint(1)).
			Return(&model.Item{ID: 1, Seller: seller, IsPurchased: true}, nil)

		service := newItemService(mockItems, mockUsers, new(MockUploader))
		_, err := service.Purchase(context.Background(), 1, buyer)

		assert.Equal(t, apperrors.ErrItemUnavailable, err)
		mockItems.AssertNotCalled(t, "MarkPurchased", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lost race maps to unavailable", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		setupBuyer(mockUsers)
		mockItems := new(MockItemRepository)
		mockItems.On("FindByID", mock.Anything, uint(1)).
			Return(&model.Item{ID: 1, Seller: seller, IsActive: true}, nil)
		mockItems.On("MarkPurchased", mock.Anything, uint(1), buyer, mock.Anything).
			Return(int64(0), nil)

		service := newItemService(mockItems, mockUsers, new(MockUploader))
		_, err := service.Purchase(context.Background(), 1, buyer)

		assert.Equal(t, apperrors.ErrItemUnavailable, err)
	})

	t.Run("successful purchase", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		setupBuyer(mockUsers)

		purchased := &model.Item{
			ID:          1,
			Seller:      seller,
			Customer:    &buyer,
			Status:      model.StatusInactive,
			IsPurchased: true,
			IsActive:    false,
		}

		mockItems := new(MockItemRepository)
		mockItems.On("FindByID", mock.Anything, uint(1)).
			Return(&model.Item{ID: 1, Seller: seller, IsActive: true, Status: model.StatusAvailable}, nil).Once()
		mockItems.On("MarkPurchased", mock.Anything, uint(1), buyer, mock.Anything).
			Return(int64(1), nil)
		mockItems.On("FindByID", mock.Anything, uint(1)).Return(purchased, nil).Once()

		service := newItemService(mockItems, mockUsers, new(MockUploader))
		item, err := service.Purchase(context.Background(), 1, buyer)

		assert.NoError(t, err)
		assert.NotNil(t, item.Customer)
		assert.Equal(t, buyer, *item.Customer)
		assert.True(t, item.IsPurchased)
		assert.False(t, item.IsActive)
		assert.Equal(t, model.StatusInactive, item.Status)
		mockItems.AssertExpectations(t)
	})
}

func TestItemService_ListItemsWithNames(t *testing.T) {
	sellerName := "alice"
	rows := []model.ItemWithNames{
		{Item: model.Item{ID: 1, Name: "Wooden Chair"}, SellerName: &sellerName},
		{Item: model.Item{ID: 2, Name: "Orphaned"}, SellerName: nil},
	}

	mockItems := new(MockItemRepository)
	mockItems.On("ListWithNames", mock.Anything).Return(rows, nil)

	service := newItemService(mockItems, new(MockUserRepository), new(MockUploader))
	got, err := service.ListItemsWithNames(context.Background())

	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "alice", *got[0].SellerName)
	assert.Nil(t, got[1].SellerName)
}
