package repository

import (
	"context"
	"food-ordering-api/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemRepository interface {
	Seed(ctx context.Context) error
	List(ctx context.Context) ([]*model.Item, error)
	FindByID(ctx context.Context, itemID string) (*model.Item, error)
	Create(ctx context.Context, item *model.Item) error
	Delete(ctx context.Context, itemID string) (bool, error)
}

type itemRepoImpl struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepoImpl{
		db: db,
	}
}

// Seed inserts a starter menu. Existing rows are left alone.
func (r *itemRepoImpl) Seed(ctx context.Context) error {
	items := []model.Item{
		{ID: "seed-paneer-tikka", Name: "Paneer Tikka", Description: "Char-grilled cottage cheese with peppers", Category: "starters", Price: 249, Rating: 4.5},
		{ID: "seed-veg-biryani", Name: "Veg Biryani", Description: "Basmati rice slow cooked with vegetables", Category: "mains", Price: 299, Rating: 4.3},
		{ID: "seed-butter-chicken", Name: "Butter Chicken", Description: "Chicken in a creamy tomato gravy", Category: "mains", Price: 349, Rating: 4.7},
		{ID: "seed-gulab-jamun", Name: "Gulab Jamun", Description: "Milk dumplings in rose syrup", Category: "desserts", Price: 99, Rating: 4.4},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&items).Error
}

func (r *itemRepoImpl) List(ctx context.Context) ([]*model.Item, error) {
	var items []*model.Item
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *itemRepoImpl) FindByID(ctx context.Context, itemID string) (*model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		First(&item).Error

	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *itemRepoImpl) Create(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *itemRepoImpl) Delete(ctx context.Context, itemID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&model.Item{})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
