package requisition

import (
	"context"
	"testing"
	"time"

	"github.com/buildflow/backend/internal/domain/requisition"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfirmationToken(t *testing.T) {
	id := uuid.New()
	token := NewConfirmationToken(id, requisition.StageResident, requisition.RoleResident, "done")

	assert.Len(t, token.Token, 32)
	assert.Equal(t, id, token.RequisitionID)
	assert.Equal(t, requisition.StageResident, token.Stage)
	assert.Equal(t, "done", token.Comments)

	other := NewConfirmationToken(id, requisition.StageResident, requisition.RoleResident, "done")
	assert.NotEqual(t, token.Token, other.Token)
}

func TestInMemoryTokenStore_PutAndTake(t *testing.T) {
	store := NewInMemoryTokenStore()
	ctx := context.Background()

	token := NewConfirmationToken(uuid.New(), requisition.StageTreasury, requisition.RoleTreasury, "")
	require.NoError(t, store.Put(ctx, token, time.Minute))

	got, ok, err := store.Take(ctx, token.Token)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, token.RequisitionID, got.RequisitionID)
	assert.Equal(t, requisition.StageTreasury, got.Stage)

	// single use
	_, ok, err = store.Take(ctx, token.Token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInMemoryTokenStore_UnknownToken(t *testing.T) {
	store := NewInMemoryTokenStore()

	_, ok, err := store.Take(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInMemoryTokenStore_Expiry(t *testing.T) {
	store := NewInMemoryTokenStore()
	ctx := context.Background()

	token := NewConfirmationToken(uuid.New(), requisition.StageResident, requisition.RoleResident, "")
	require.NoError(t, store.Put(ctx, token, 10*time.Millisecond))

	time.Sleep(30 * time.Millisecond)
	_, ok, err := store.Take(ctx, token.Token)
	require.NoError(t, err)
	assert.False(t, ok)
}
