package service

import (
	"context"
	"errors"
	"fmt"
	"food-ordering-api/internal/dto"
	"food-ordering-api/internal/model"
	"food-ordering-api/internal/repository"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxCartQuantity     = 99
	msgCartLineNotFound = "cart item not found"
)

type CartService interface {
	GetCart(ctx context.Context, userID string) (*dto.CartResponse, error)
	AddItem(ctx context.Context, userID string, req *dto.CartItemRequest) (*dto.CartResponse, error)
	UpdateItem(ctx context.Context, userID, lineID string, req *dto.CartQuantityRequest) (*dto.CartResponse, error)
	RemoveItem(ctx context.Context, userID, lineID string) (*dto.CartResponse, error)
	Clear(ctx context.Context, userID string) (*dto.CartResponse, error)
}

type cartServiceImpl struct {
	cartRepo repository.CartRepository
	itemRepo repository.ItemRepository
}

func NewCartService(cartRepo repository.CartRepository, itemRepo repository.ItemRepository) CartService {
	return &cartServiceImpl{
		cartRepo: cartRepo,
		itemRepo: itemRepo,
	}
}

func (s *cartServiceImpl) GetCart(ctx context.Context, userID string) (*dto.CartResponse, error) {
	lines, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	return dto.NewCartResponse(lines), nil
}

// AddItem puts an item in the cart, or raises the quantity of its existing line.
// A zero quantity adds one.
func (s *cartServiceImpl) AddItem(ctx context.Context, userID string, req *dto.CartItemRequest) (*dto.CartResponse, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 || quantity > maxCartQuantity {
		return nil, validationError("quantity must be between 1 and %d", maxCartQuantity)
	}

	itemID := strings.TrimSpace(req.ItemID)
	_, err := s.itemRepo.FindByID(ctx, itemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError(msgItemNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find item: %w", err)
	}

	existing, err := s.cartRepo.FindByItem(ctx, userID, itemID)
	switch {
	case err == nil:
		if err := s.raiseQuantity(ctx, existing, quantity); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.createLine(ctx, userID, itemID, quantity); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("find cart line: %w", err)
	}

	return s.GetCart(ctx, userID)
}

func (s *cartServiceImpl) createLine(ctx context.Context, userID, itemID string, quantity int) error {
	err := s.cartRepo.Create(ctx, &model.CartLine{
		ID:       uuid.NewString(),
		UserID:   userID,
		ItemID:   itemID,
		Quantity: quantity,
	})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		if err != nil {
			return fmt.Errorf("store cart line in db: %w", err)
		}
		return nil
	}

	// a concurrent add created the line first
	existing, err := s.cartRepo.FindByItem(ctx, userID, itemID)
	if err != nil {
		return fmt.Errorf("find cart line: %w", err)
	}
	return s.raiseQuantity(ctx, existing, quantity)
}

func (s *cartServiceImpl) raiseQuantity(ctx context.Context, line *model.CartLine, delta int) error {
	if line.Quantity+delta > maxCartQuantity {
		return validationError("quantity must be between 1 and %d", maxCartQuantity)
	}
	if err := s.cartRepo.AddQuantity(ctx, line.ID, delta); err != nil {
		return fmt.Errorf("update cart line: %w", err)
	}
	return nil
}

// UpdateItem sets a line's quantity. Zero removes the line.
func (s *cartServiceImpl) UpdateItem(ctx context.Context, userID, lineID string, req *dto.CartQuantityRequest) (*dto.CartResponse, error) {
	if req.Quantity < 0 || req.Quantity > maxCartQuantity {
		return nil, validationError("quantity must be between 0 and %d", maxCartQuantity)
	}

	line, err := s.cartRepo.FindByID(ctx, userID, lineID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError(msgCartLineNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find cart line: %w", err)
	}

	if req.Quantity == 0 {
		return s.RemoveItem(ctx, userID, line.ID)
	}

	if err := s.cartRepo.SetQuantity(ctx, line.ID, req.Quantity); err != nil {
		return nil, fmt.Errorf("update cart line: %w", err)
	}
	return s.GetCart(ctx, userID)
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, userID, lineID string) (*dto.CartResponse, error) {
	deleted, err := s.cartRepo.Delete(ctx, userID, lineID)
	if err != nil {
		return nil, fmt.Errorf("delete cart line: %w", err)
	}
	if !deleted {
		return nil, notFoundError(msgCartLineNotFound)
	}
	return s.GetCart(ctx, userID)
}

func (s *cartServiceImpl) Clear(ctx context.Context, userID string) (*dto.CartResponse, error) {
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	return s.GetCart(ctx, userID)
}
