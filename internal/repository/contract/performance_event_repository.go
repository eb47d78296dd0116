package contract

import (
	"context"

	"jit-learning-be/internal/entity"
	"jit-learning-be/internal/repository/specification"
)

type PerformanceEventRepository interface {
	Create(ctx context.Context, event *entity.PerformanceEvent) error
	CreateBulk(ctx context.Context, events []*entity.PerformanceEvent) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PerformanceEvent, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
