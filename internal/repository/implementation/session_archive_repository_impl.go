package implementation

import (
	"context"
	"errors"

	"jit-learning-be/internal/entity"
	"jit-learning-be/internal/mapper"
	"jit-learning-be/internal/model"
	"jit-learning-be/internal/repository/contract"
	"jit-learning-be/internal/repository/specification"

	"gorm.io/gorm"
)

type SessionArchiveRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LearningMapper
}

func NewSessionArchiveRepository(db *gorm.DB) contract.SessionArchiveRepository {
	return &SessionArchiveRepositoryImpl{
		db:     db,
		mapper: mapper.NewLearningMapper(),
	}
}

func (r *SessionArchiveRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SessionArchiveRepositoryImpl) Create(ctx context.Context, archive *entity.SessionArchive) error {
	m := r.mapper.SessionArchiveToModel(archive)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*archive = *r.mapper.SessionArchiveToEntity(m)
	return nil
}

func (r *SessionArchiveRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SessionArchive, error) {
	var m model.SessionArchive
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionArchiveToEntity(&m), nil
}

func (r *SessionArchiveRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SessionArchive, error) {
	var models []*model.SessionArchive
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.SessionArchive, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SessionArchiveToEntity(m)
	}
	return entities, nil
}

func (r *SessionArchiveRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.SessionArchive{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
