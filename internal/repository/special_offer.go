package repository

import (
	"context"
	"food-ordering-api/internal/model"
	"time"

	"gorm.io/gorm"
)

type SpecialOfferRepository interface {
	ListActive(ctx context.Context, now time.Time) ([]*model.SpecialOffer, error)
	ListAll(ctx context.Context) ([]*model.SpecialOffer, error)
	FindByID(ctx context.Context, offerID string) (*model.SpecialOffer, error)
	Create(ctx context.Context, offer *model.SpecialOffer) error
	Update(ctx context.Context, offerID string, fields map[string]interface{}) error
	Delete(ctx context.Context, offerID string) (bool, error)
}

type specialOfferRepoImpl struct {
	db *gorm.DB
}

func NewSpecialOfferRepository(db *gorm.DB) SpecialOfferRepository {
	return &specialOfferRepoImpl{
		db: db,
	}
}

func (r *specialOfferRepoImpl) ListActive(ctx context.Context, now time.Time) ([]*model.SpecialOffer, error) {
	var offers []*model.SpecialOffer
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("valid_until > ?", now).
		Order("priority DESC").
		Order("created_at DESC").
		Find(&offers).Error

	if err != nil {
		return nil, err
	}

	return offers, nil
}

func (r *specialOfferRepoImpl) ListAll(ctx context.Context) ([]*model.SpecialOffer, error) {
	var offers []*model.SpecialOffer
	err := r.db.WithContext(ctx).
		Order("priority DESC").
		Order("created_at DESC").
		Find(&offers).Error

	if err != nil {
		return nil, err
	}

	return offers, nil
}

func (r *specialOfferRepoImpl) FindByID(ctx context.Context, offerID string) (*model.SpecialOffer, error) {
	var offer model.SpecialOffer
	err := r.db.WithContext(ctx).
		Where("id = ?", offerID).
		First(&offer).Error

	if err != nil {
		return nil, err
	}

	return &offer, nil
}

func (r *specialOfferRepoImpl) Create(ctx context.Context, offer *model.SpecialOffer) error {
	return r.db.WithContext(ctx).Create(offer).Error
}

// Update takes a column map so is_active=false is written.
func (r *specialOfferRepoImpl) Update(ctx context.Context, offerID string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.SpecialOffer{}).
		Where("id = ?", offerID).
		Updates(fields).Error
}

func (r *specialOfferRepoImpl) Delete(ctx context.Context, offerID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", offerID).
		Delete(&model.SpecialOffer{})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
