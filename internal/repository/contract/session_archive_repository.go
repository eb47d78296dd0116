package contract

import (
	"context"

	"jit-learning-be/internal/entity"
	"jit-learning-be/internal/repository/specification"
)

type SessionArchiveRepository interface {
	Create(ctx context.Context, archive *entity.SessionArchive) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SessionArchive, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SessionArchive, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
