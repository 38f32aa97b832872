package cache

import (
	"context"
	"testing"
	"time"

	"removaltracker/internal/authz"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorCache_DegradesWithoutClient(t *testing.T) {
	ctx := context.Background()
	c := NewActorCache(nil, time.Minute)
	actor := authz.NewActor(uuid.New(), "Employee", []authz.RoleName{authz.RoleLevel1})

	assert.False(t, c.IsAvailable())
	require.NoError(t, c.Set(ctx, actor))

	got, err := c.Get(ctx, actor.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, c.Invalidate(ctx, actor.ID))
	assert.NoError(t, c.InvalidateAll(ctx))
	assert.NoError(t, c.Close())
}

func TestActorCache_NilReceiver(t *testing.T) {
	var c *ActorCache

	got, err := c.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, c.IsAvailable())
}

func TestConnect_WithoutAddressDisablesCaching(t *testing.T) {
	c := Connect("", "", 0, time.Minute)
	assert.False(t, c.IsAvailable())
}
