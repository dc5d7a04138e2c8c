package users

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/dmitrijs2005/tasklist/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	saved, err := r.Insert(ctx, alice())
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", saved.Email)

	byEmail, err := r.FindByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", byEmail.ID)

	byID, err := r.FindByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", byID.DisplayName)

	name := "Alicia"
	got, err := r.Update(ctx, "u-1", models.IdentityUpdate{DisplayName: &name, UpdatedAt: updated})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", got.DisplayName)
	assert.Equal(t, []byte("hash"), got.PasswordHash, "nil fields are kept")
	assert.True(t, got.UpdatedAt.Equal(updated))

	require.NoError(t, r.Delete(ctx, "u-1"))
	_, err = r.FindByEmail(ctx, "alice@x.com")
	assert.ErrorIs(t, err, common.ErrIdentityNotFound)
	assert.ErrorIs(t, r.Delete(ctx, "u-1"), common.ErrIdentityNotFound)

	_, err = r.Update(ctx, "u-1", models.IdentityUpdate{UpdatedAt: updated})
	assert.ErrorIs(t, err, common.ErrIdentityNotFound)
}

func TestMemoryRepository_EmailIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	_, err := r.Insert(ctx, alice())
	require.NoError(t, err)

	upper := alice()
	upper.ID = "u-2"
	upper.Email = "Alice@x.com"
	_, err = r.Insert(ctx, upper)
	require.NoError(t, err)

	dup := alice()
	dup.ID = "u-3"
	_, err = r.Insert(ctx, dup)
	assert.ErrorIs(t, err, common.ErrDuplicateIdentity)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	in := alice()
	_, err := r.Insert(ctx, in)
	require.NoError(t, err)
	in.Salt[0] = 'X'

	got, err := r.FindByID(ctx, "u-1")
	require.NoError(t, err)
	got.PasswordHash[0] = 'X'

	again, err := r.FindByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("salt"), again.Salt)
	assert.Equal(t, []byte("hash"), again.PasswordHash)
}

func TestMemoryRepository_ConcurrentInsertSameEmail(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	const n = 32
	var ok, dup atomic.Int32
	var wg sync.WaitGroup
	for k := 0; k < n; k++ {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			i := alice()
			i.ID = fmt.Sprintf("u-%d", k)
			_, err := r.Insert(ctx, i)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, common.ErrDuplicateIdentity):
				dup.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(k)
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(n-1), dup.Load())
}

func TestMemoryRepository_ListOrdered(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for k, email := range []string{"c@x.com", "a@x.com", "b@x.com"} {
		_, err := r.Insert(ctx, &models.Identity{
			ID:        fmt.Sprintf("u-%d", k),
			Email:     email,
			CreatedAt: base.Add(time.Duration(k) * time.Minute),
		})
		require.NoError(t, err)
	}

	got, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c@x.com", "a@x.com", "b@x.com"}, []string{got[0].Email, got[1].Email, got[2].Email})
}

func TestMemoryRepository_CancelledContext(t *testing.T) {
	r := NewMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.FindByEmail(ctx, "alice@x.com")
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}
