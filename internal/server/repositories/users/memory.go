package users

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/dmitrijs2005/tasklist/internal/server/models"
)

// MemoryRepository is a map-backed Repository. The uniqueness check and the
// insert happen under one lock, so concurrent inserts of an email race safely.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.Identity
	byEmail map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.Identity),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepository) Insert(ctx context.Context, identity *models.Identity) (*models.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.ErrStoreUnavailable
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[identity.Email]; ok {
		return nil, common.ErrDuplicateIdentity
	}
	if _, ok := r.byID[identity.ID]; ok {
		return nil, common.ErrDuplicateIdentity
	}

	stored := clone(identity)
	r.byID[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID
	return clone(stored), nil
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.ErrStoreUnavailable
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrIdentityNotFound
	}
	return clone(r.byID[id]), nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*models.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.ErrStoreUnavailable
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return nil, common.ErrIdentityNotFound
	}
	return clone(i), nil
}

func (r *MemoryRepository) Update(ctx context.Context, id string, upd models.IdentityUpdate) (*models.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.ErrStoreUnavailable
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.byID[id]
	if !ok {
		return nil, common.ErrIdentityNotFound
	}

	if upd.DisplayName != nil {
		i.DisplayName = *upd.DisplayName
	}
	if upd.PasswordHash != nil {
		i.PasswordHash = append([]byte(nil), upd.PasswordHash...)
	}
	if upd.Salt != nil {
		i.Salt = append([]byte(nil), upd.Salt...)
	}
	i.UpdatedAt = upd.UpdatedAt

	return clone(i), nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return common.ErrStoreUnavailable
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.byID[id]
	if !ok {
		return common.ErrIdentityNotFound
	}
	delete(r.byEmail, i.Email)
	delete(r.byID, id)
	return nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]*models.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.ErrStoreUnavailable
	}

	r.mu.RLock()
	out := make([]*models.Identity, 0, len(r.byID))
	for _, i := range r.byID {
		out = append(out, clone(i))
	}
	r.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool {
		if out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].ID < out[b].ID
		}
		return out[a].CreatedAt.Before(out[b].CreatedAt)
	})
	return out, nil
}

func clone(i *models.Identity) *models.Identity {
	c := *i
	c.PasswordHash = append([]byte(nil), i.PasswordHash...)
	c.Salt = append([]byte(nil), i.Salt...)
	return &c
}
