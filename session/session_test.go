package session

import (
	"context"
	"testing"
	"time"

	"github.com/Sujan7036/friends-momo-sub001/cart"
	"github.com/Sujan7036/friends-momo-sub001/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, 30*time.Minute), mr
}

func TestRedisStore_RoundTripKeepsCart(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	sess := New(time.Hour)
	_, err := sess.Cart.Add(cart.Item{ID: 7, Name: "Jhol Momo", Price: 9.5}, 2, "extra soup")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, sess))

	assert.True(t, mr.Exists(store.Key(sess.ID)))
	assert.Equal(t, 30*time.Minute, mr.TTL(store.Key(sess.ID)))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	require.Len(t, got.Cart.Lines, 1)
	assert.Equal(t, 2, got.Cart.Lines[0].Quantity)
	assert.Equal(t, "extra soup", got.Cart.Lines[0].SpecialInstructions)
}

func TestRedisStore_ExpiredAndDeleted(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	sess := New(time.Hour)
	require.NoError(t, store.Save(ctx, sess))
	mr.FastForward(31 * time.Minute)

	_, err := store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	other := New(time.Hour)
	require.NoError(t, store.Save(ctx, other))
	require.NoError(t, store.Delete(ctx, other.ID))
	_, err = store.Get(ctx, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	sess := New(time.Minute)
	sess.Login(&models.User{ID: 3, FirstName: "Asha", Role: models.RoleStaff})
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(3), got.UserID)
	assert.Equal(t, models.RoleStaff, got.Role)

	// mutating the loaded copy does not touch the stored one
	got.Logout()
	again, _ := store.Get(ctx, sess.ID)
	assert.True(t, again.LoggedIn())

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSession_LoginLockout(t *testing.T) {
	sess := New(time.Hour)
	now := time.Now()

	for i := 0; i < 4; i++ {
		sess.RecordFailedLogin(now, 5, 15*time.Minute)
		assert.False(t, sess.Locked(now))
	}
	sess.RecordFailedLogin(now, 5, 15*time.Minute)
	assert.True(t, sess.Locked(now))
	assert.True(t, sess.Locked(now.Add(14*time.Minute)))
	assert.False(t, sess.Locked(now.Add(15*time.Minute)))

	sess.Login(&models.User{ID: 1})
	assert.False(t, sess.Locked(now))
	assert.Zero(t, sess.LoginAttempts)
}
