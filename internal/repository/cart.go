package repository

import (
	"context"
	"food-ordering-api/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*model.CartLine, error)
	FindByID(ctx context.Context, userID, lineID string) (*model.CartLine, error)
	FindByItem(ctx context.Context, userID, itemID string) (*model.CartLine, error)
	Create(ctx context.Context, line *model.CartLine) error
	AddQuantity(ctx context.Context, lineID string, delta int) error
	SetQuantity(ctx context.Context, lineID string, quantity int) error
	Delete(ctx context.Context, userID, lineID string) (bool, error)
	Clear(ctx context.Context, userID string) error
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepoImpl{
		db: db,
	}
}

func (r *cartRepoImpl) ListByUser(ctx context.Context, userID string) ([]*model.CartLine, error) {
	var lines []*model.CartLine
	err := r.db.WithContext(ctx).
		Preload("Item").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&lines).Error

	if err != nil {
		return nil, err
	}

	return lines, nil
}

func (r *cartRepoImpl) FindByID(ctx context.Context, userID, lineID string) (*model.CartLine, error) {
	var line model.CartLine
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		First(&line).Error

	if err != nil {
		return nil, err
	}

	return &line, nil
}

func (r *cartRepoImpl) FindByItem(ctx context.Context, userID, itemID string) (*model.CartLine, error) {
	var line model.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		First(&line).Error

	if err != nil {
		return nil, err
	}

	return &line, nil
}

func (r *cartRepoImpl) Create(ctx context.Context, line *model.CartLine) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(line).Error
}

// AddQuantity increments in SQL so concurrent adds of the same item are not lost.
func (r *cartRepoImpl) AddQuantity(ctx context.Context, lineID string, delta int) error {
	return r.db.WithContext(ctx).Model(&model.CartLine{}).
		Where("id = ?", lineID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", delta)).Error
}

func (r *cartRepoImpl) SetQuantity(ctx context.Context, lineID string, quantity int) error {
	return r.db.WithContext(ctx).Model(&model.CartLine{}).
		Where("id = ?", lineID).
		Update("quantity", quantity).Error
}

func (r *cartRepoImpl) Delete(ctx context.Context, userID, lineID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		Delete(&model.CartLine{})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *cartRepoImpl) Clear(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartLine{}).Error
}
