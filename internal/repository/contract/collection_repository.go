package contract

import (
	"context"

	"secure-docchat-be/internal/entity"
	"secure-docchat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CollectionRepository interface {
	Create(ctx context.Context, collection *entity.Collection) error
	Update(ctx context.Context, collection *entity.Collection) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Collection, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Collection, error)

	// FindActive returns the single active collection, or nil when no
	// index has been activated yet.
	FindActive(ctx context.Context) (*entity.Collection, error)

	// Activate retires any currently active collection and marks the
	// given one active. Run inside a transaction so readers never see
	// zero or two active collections.
	Activate(ctx context.Context, id uuid.UUID) error
}
