package medcase

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, mc *MedicalCase) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalCase, error)
	Update(ctx context.Context, mc *MedicalCase) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*MedicalCase, error)
}
