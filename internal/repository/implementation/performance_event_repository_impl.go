package implementation

import (
	"context"

	"jit-learning-be/internal/entity"
	"jit-learning-be/internal/mapper"
	"jit-learning-be/internal/model"
	"jit-learning-be/internal/repository/contract"
	"jit-learning-be/internal/repository/specification"

	"gorm.io/gorm"
)

type PerformanceEventRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LearningMapper
}

func NewPerformanceEventRepository(db *gorm.DB) contract.PerformanceEventRepository {
	return &PerformanceEventRepositoryImpl{
		db:     db,
		mapper: mapper.NewLearningMapper(),
	}
}

func (r *PerformanceEventRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PerformanceEventRepositoryImpl) Create(ctx context.Context, event *entity.PerformanceEvent) error {
	m := r.mapper.PerformanceEventToModel(event)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*event = *r.mapper.PerformanceEventToEntity(m)
	return nil
}

func (r *PerformanceEventRepositoryImpl) CreateBulk(ctx context.Context, events []*entity.PerformanceEvent) error {
	if len(events) == 0 {
		return nil
	}
	models := make([]*model.PerformanceEvent, len(events))
	for i, e := range events {
		models[i] = r.mapper.PerformanceEventToModel(e)
	}
	return r.db.WithContext(ctx).CreateInBatches(models, 100).Error
}

func (r *PerformanceEventRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PerformanceEvent, error) {
	var models []*model.PerformanceEvent
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.PerformanceEvent, len(models))
	for i, m := range models {
		entities[i] = r.mapper.PerformanceEventToEntity(m)
	}
	return entities, nil
}

func (r *PerformanceEventRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.PerformanceEvent{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
