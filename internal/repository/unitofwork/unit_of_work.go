package unitofwork

import (
	"context"

	"jit-learning-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SessionArchiveRepository() contract.SessionArchiveRepository
	PerformanceEventRepository() contract.PerformanceEventRepository
}
