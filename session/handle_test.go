package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-rental-storefront/apiclient"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

var _ apiclient.Session = (*Handle)(nil)
var _ apiclient.RefreshTokenSetter = (*Handle)(nil)

type failingStore struct {
	*MemoryStore
	getErr    error
	upsertErr error
}

func (f *failingStore) Get(ctx context.Context, id string) (State, error) {
	if f.getErr != nil {
		return State{}, f.getErr
	}
	return f.MemoryStore.Get(ctx, id)
}

func (f *failingStore) Upsert(ctx context.Context, id string, state State) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	return f.MemoryStore.Upsert(ctx, id, state)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	t.Run("empty id gets a new id", func(t *testing.T) {
		h, err := Open(ctx, store, "")
		require.NoError(t, err)
		require.NotEmpty(t, h.ID())
		require.False(t, h.SignedIn())
		require.Nil(t, h.Profile())
	})

	t.Run("unknown id is anonymous", func(t *testing.T) {
		h, err := Open(ctx, store, "nope")
		require.NoError(t, err)
		require.Equal(t, "nope", h.ID())
		require.False(t, h.SignedIn())
	})

	t.Run("store failure", func(t *testing.T) {
		boom := errors.New("redis down")
		_, err := Open(ctx, &failingStore{MemoryStore: NewMemoryStore(0), getErr: boom}, "s1")
		require.ErrorIs(t, err, boom)
	})
}

func TestHandleLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	h, err := Open(ctx, store, "s1")
	require.NoError(t, err)

	require.Error(t, h.Login(ctx, &oauth2.Token{}, nil))

	profile := &Profile{ID: 1, Username: "asha", FirstName: "Asha", LastName: "Rao", IsStaff: true}
	require.NoError(t, h.Login(ctx, &oauth2.Token{AccessToken: "abc123", RefreshToken: "r1"}, profile))
	require.True(t, h.SignedIn())
	require.True(t, h.IsStaff())
	require.Equal(t, "Asha Rao", h.Profile().DisplayName())

	// a second request for the same browser sees the stored state
	other, err := Open(ctx, store, "s1")
	require.NoError(t, err)
	require.Equal(t, "abc123", other.AccessToken())
	require.Equal(t, "r1", other.RefreshToken())

	require.NoError(t, other.SetAccessToken(ctx, "xyz789"))
	require.NoError(t, other.SetRefreshToken(ctx, "r2"))
	stored, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "xyz789", stored.AccessToken)
	require.Equal(t, "r2", stored.RefreshToken)
	require.NotNil(t, stored.Profile)

	require.True(t, stored.ExpiresAt.IsZero())
	require.True(t, stored.CreatedAt.Add(time.Hour).Equal(other.EndsAt(time.Hour)))

	require.NoError(t, other.Clear(ctx))
	require.False(t, other.SignedIn())
	require.Nil(t, other.Profile())
	_, err = store.Get(ctx, "s1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestHandleProfileIsCopy(t *testing.T) {
	ctx := context.Background()
	h, err := Open(ctx, NewMemoryStore(0), "s1")
	require.NoError(t, err)
	require.NoError(t, h.SetProfile(ctx, &Profile{Username: "asha"}))

	p := h.Profile()
	p.IsStaff = true
	require.False(t, h.IsStaff())
}

func TestHandleWriteFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	h, err := Open(ctx, &failingStore{MemoryStore: NewMemoryStore(0), upsertErr: boom}, "s1")
	require.NoError(t, err)

	require.ErrorIs(t, h.SetAccessToken(ctx, "t"), boom)
	require.ErrorIs(t, h.Login(ctx, &oauth2.Token{AccessToken: "t"}, nil), boom)
}

func TestHandleConcurrentUse(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	h, err := Open(ctx, store, "s1")
	require.NoError(t, err)
	require.NoError(t, h.Login(ctx, &oauth2.Token{AccessToken: "a", RefreshToken: "r"}, nil))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.SetAccessToken(ctx, "b")
			_ = h.AccessToken()
			_ = h.Profile()
		}()
	}
	wg.Wait()
	require.Equal(t, "b", h.AccessToken())
}

func TestProfileDisplayName(t *testing.T) {
	require.Equal(t, "", (*Profile)(nil).DisplayName())
	require.Equal(t, "asha", (&Profile{Username: "asha"}).DisplayName())
	require.Equal(t, "Asha", (&Profile{Username: "asha", FirstName: "Asha"}).DisplayName())
}
