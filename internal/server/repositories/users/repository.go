// Package users stores identities. The Postgres implementation is the
// production store; MemoryRepository backs tests and local runs.
package users

import (
	"context"

	"github.com/dmitrijs2005/tasklist/internal/server/models"
)

// Repository persists identities. Email uniqueness is enforced atomically by
// the store itself; callers never pre-check.
type Repository interface {
	Insert(ctx context.Context, identity *models.Identity) (*models.Identity, error)
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
	FindByID(ctx context.Context, id string) (*models.Identity, error)
	Update(ctx context.Context, id string, upd models.IdentityUpdate) (*models.Identity, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.Identity, error)
}
