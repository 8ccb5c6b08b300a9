package unitofwork

import (
	"context"

	"secure-docchat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	CollectionRepository() contract.CollectionRepository
	ChunkRepository() contract.ChunkRepository
}
