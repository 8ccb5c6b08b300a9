package implementation

import (
	"context"
	"errors"

	"secure-docchat-be/internal/entity"
	"secure-docchat-be/internal/mapper"
	"secure-docchat-be/internal/model"
	"secure-docchat-be/internal/repository/contract"
	"secure-docchat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CollectionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CollectionMapper
}

func NewCollectionRepository(db *gorm.DB) contract.CollectionRepository {
	return &CollectionRepositoryImpl{
		db:     db,
		mapper: mapper.NewCollectionMapper(),
	}
}

func (r *CollectionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CollectionRepositoryImpl) Create(ctx context.Context, collection *entity.Collection) error {
	m := r.mapper.ToModel(collection)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*collection = *r.mapper.ToEntity(m)
	return nil
}

func (r *CollectionRepositoryImpl) Update(ctx context.Context, collection *entity.Collection) error {
	m := r.mapper.ToModel(collection)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*collection = *r.mapper.ToEntity(m)
	return nil
}

func (r *CollectionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Collection, error) {
	var m model.Collection
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CollectionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Collection, error) {
	var models []*model.Collection
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Collection, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *CollectionRepositoryImpl) FindActive(ctx context.Context) (*entity.Collection, error) {
	return r.FindOne(ctx, specification.ByStatus{Status: model.CollectionStatusActive})
}

func (r *CollectionRepositoryImpl) Activate(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Collection{}).
		Where("status = ?", model.CollectionStatusActive).
		Update("status", model.CollectionStatusRetired).Error; err != nil {
		return err
	}

	result := db.Model(&model.Collection{}).
		Where("id = ?", id).
		Update("status", model.CollectionStatusActive)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
