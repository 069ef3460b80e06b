package repository

import (
	"context"
	"food-ordering-api/internal/model"

	"gorm.io/gorm"
)

type ContactRepository interface {
	Create(ctx context.Context, query *model.ContactQuery) error
	List(ctx context.Context) ([]*model.ContactQuery, error)
	FindByID(ctx context.Context, queryID string) (*model.ContactQuery, error)
	Update(ctx context.Context, queryID string, fields map[string]interface{}) error
	Delete(ctx context.Context, queryID string) (bool, error)
}

type contactRepoImpl struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepoImpl{
		db: db,
	}
}

func (r *contactRepoImpl) Create(ctx context.Context, query *model.ContactQuery) error {
	return r.db.WithContext(ctx).Create(query).Error
}

func (r *contactRepoImpl) List(ctx context.Context) ([]*model.ContactQuery, error) {
	var queries []*model.ContactQuery
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&queries).Error

	if err != nil {
		return nil, err
	}

	return queries, nil
}

func (r *contactRepoImpl) FindByID(ctx context.Context, queryID string) (*model.ContactQuery, error) {
	var query model.ContactQuery
	err := r.db.WithContext(ctx).
		Where("id = ?", queryID).
		First(&query).Error

	if err != nil {
		return nil, err
	}

	return &query, nil
}

func (r *contactRepoImpl) Update(ctx context.Context, queryID string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.ContactQuery{}).
		Where("id = ?", queryID).
		Updates(fields).Error
}

func (r *contactRepoImpl) Delete(ctx context.Context, queryID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", queryID).
		Delete(&model.ContactQuery{})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
