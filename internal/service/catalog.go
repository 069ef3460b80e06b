package service

import (
	"context"
	"errors"
	"fmt"
	"food-ordering-api/internal/cache"
	"food-ordering-api/internal/dto"
	"food-ordering-api/internal/model"
	"food-ordering-api/internal/repository"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	msgItemNotFound  = "item not found"
	msgOfferNotFound = "special offer not found"
)

type CatalogService interface {
	ListItems(ctx context.Context) ([]*model.Item, error)
	CreateItem(ctx context.Context, req *dto.ItemRequest) (*model.Item, error)
	DeleteItem(ctx context.Context, itemID string) error
	ListActiveOffers(ctx context.Context) ([]*model.SpecialOffer, error)
	ListAllOffers(ctx context.Context) ([]*model.SpecialOffer, error)
	CreateOffer(ctx context.Context, req *dto.SpecialOfferRequest) (*model.SpecialOffer, error)
	UpdateOffer(ctx context.Context, offerID string, req *dto.SpecialOfferRequest) (*model.SpecialOffer, error)
	ToggleOffer(ctx context.Context, offerID string) (*model.SpecialOffer, error)
	DeleteOffer(ctx context.Context, offerID string) error
}

type catalogServiceImpl struct {
	itemRepo  repository.ItemRepository
	offerRepo repository.SpecialOfferRepository
	cache     cache.CatalogCache
	now       func() time.Time
}

func NewCatalogService(
	itemRepo repository.ItemRepository,
	offerRepo repository.SpecialOfferRepository,
	catalogCache cache.CatalogCache,
) CatalogService {
	return &catalogServiceImpl{
		itemRepo:  itemRepo,
		offerRepo: offerRepo,
		cache:     catalogCache,
		now:       time.Now,
	}
}

func (s *catalogServiceImpl) ListItems(ctx context.Context) ([]*model.Item, error) {
	items, hit, err := s.cache.GetItems(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("item cache read failed")
	}
	if hit {
		return items, nil
	}

	items, err = s.itemRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	if err := s.cache.SetItems(ctx, items); err != nil {
		log.Warn().Err(err).Msg("item cache write failed")
	}
	return items, nil
}

func (s *catalogServiceImpl) CreateItem(ctx context.Context, req *dto.ItemRequest) (*model.Item, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, validationError("name is required")
	}
	if req.Price < 0 {
		return nil, validationError("price must not be negative")
	}

	item := &model.Item{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Rating:      req.Rating,
		Hearts:      req.Hearts,
		Total:       req.Total,
		ImageURL:    req.ImageURL,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("store item in db: %w", err)
	}

	s.invalidateItems(ctx)
	return item, nil
}

func (s *catalogServiceImpl) DeleteItem(ctx context.Context, itemID string) error {
	deleted, err := s.itemRepo.Delete(ctx, itemID)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if !deleted {
		return notFoundError(msgItemNotFound)
	}

	s.invalidateItems(ctx)
	return nil
}

func (s *catalogServiceImpl) invalidateItems(ctx context.Context) {
	if err := s.cache.InvalidateItems(ctx); err != nil {
		log.Error().Err(err).Msg("item cache invalidation failed")
	}
}

func (s *catalogServiceImpl) ListActiveOffers(ctx context.Context) ([]*model.SpecialOffer, error) {
	offers, err := s.offerRepo.ListActive(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("list active offers: %w", err)
	}
	return offers, nil
}

func (s *catalogServiceImpl) ListAllOffers(ctx context.Context) ([]*model.SpecialOffer, error) {
	offers, err := s.offerRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	return offers, nil
}

func (s *catalogServiceImpl) CreateOffer(ctx context.Context, req *dto.SpecialOfferRequest) (*model.SpecialOffer, error) {
	validUntil, percentage, err := s.checkOffer(ctx, req)
	if err != nil {
		return nil, err
	}

	offer := &model.SpecialOffer{
		ID:                 uuid.NewString(),
		Title:              strings.TrimSpace(req.Title),
		Description:        req.Description,
		ItemID:             req.ItemID,
		OriginalPrice:      req.OriginalPrice,
		DiscountedPrice:    req.DiscountedPrice,
		DiscountPercentage: percentage,
		ValidUntil:         validUntil,
		Priority:           req.Priority,
		Tags:               normalizeTags(req.Tags),
		ImageURL:           req.ImageURL,
		IsActive:           true,
	}
	if err := s.offerRepo.Create(ctx, offer); err != nil {
		return nil, fmt.Errorf("store offer in db: %w", err)
	}
	return offer, nil
}

func (s *catalogServiceImpl) UpdateOffer(ctx context.Context, offerID string, req *dto.SpecialOfferRequest) (*model.SpecialOffer, error) {
	offer, err := s.findOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}

	validUntil, percentage, err := s.checkOffer(ctx, req)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"title":               strings.TrimSpace(req.Title),
		"description":         req.Description,
		"item_id":             req.ItemID,
		"original_price":      req.OriginalPrice,
		"discounted_price":    req.DiscountedPrice,
		"discount_percentage": percentage,
		"valid_until":         validUntil,
		"priority":            req.Priority,
		"tags":                normalizeTags(req.Tags),
		"updated_at":          s.now(),
	}
	// keep the current image unless a new one was uploaded
	if req.ImageURL != "" {
		fields["image_url"] = req.ImageURL
	}

	if err := s.offerRepo.Update(ctx, offer.ID, fields); err != nil {
		return nil, fmt.Errorf("update offer: %w", err)
	}
	return s.findOffer(ctx, offer.ID)
}

func (s *catalogServiceImpl) ToggleOffer(ctx context.Context, offerID string) (*model.SpecialOffer, error) {
	offer, err := s.findOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}

	err = s.offerRepo.Update(ctx, offer.ID, map[string]interface{}{
		"is_active":  !offer.IsActive,
		"updated_at": s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("toggle offer: %w", err)
	}
	return s.findOffer(ctx, offer.ID)
}

func (s *catalogServiceImpl) DeleteOffer(ctx context.Context, offerID string) error {
	deleted, err := s.offerRepo.Delete(ctx, offerID)
	if err != nil {
		return fmt.Errorf("delete offer: %w", err)
	}
	if !deleted {
		return notFoundError(msgOfferNotFound)
	}
	return nil
}

func (s *catalogServiceImpl) findOffer(ctx context.Context, offerID string) (*model.SpecialOffer, error) {
	offer, err := s.offerRepo.FindByID(ctx, offerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError(msgOfferNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find offer: %w", err)
	}
	return offer, nil
}

// checkOffer validates an offer payload and returns its expiry and discount percentage.
func (s *catalogServiceImpl) checkOffer(ctx context.Context, req *dto.SpecialOfferRequest) (time.Time, int, error) {
	if strings.TrimSpace(req.Title) == "" {
		return time.Time{}, 0, validationError("title is required")
	}

	_, err := s.itemRepo.FindByID(ctx, req.ItemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, 0, notFoundError(msgItemNotFound)
	}
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("find item: %w", err)
	}

	if req.OriginalPrice <= 0 || req.DiscountedPrice <= 0 {
		return time.Time{}, 0, validationError("prices must be positive")
	}
	if req.DiscountedPrice >= req.OriginalPrice {
		return time.Time{}, 0, validationError("discounted price must be lower than the original price")
	}

	validUntil, err := parseOfferDate(req.ValidUntil)
	if err != nil {
		return time.Time{}, 0, validationError("invalid validUntil date %q", req.ValidUntil)
	}

	percentage := req.DiscountPercentage
	if percentage == 0 {
		percentage = discountPercentage(req.OriginalPrice, req.DiscountedPrice)
	}
	return validUntil, percentage, nil
}

func discountPercentage(original, discounted float64) int {
	o := decimal.NewFromFloat(original)
	d := decimal.NewFromFloat(discounted)
	return int(o.Sub(d).Div(o).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// parseOfferDate accepts an RFC 3339 timestamp or a plain date, which is valid through its last day.
func parseOfferDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(24*time.Hour - time.Second), nil
}

func normalizeTags(raw string) string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if tag := strings.TrimSpace(p); tag != "" {
			tags = append(tags, tag)
		}
	}
	return strings.Join(tags, ",")
}
