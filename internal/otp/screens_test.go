package otp

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/foodhub/internal/authflow"
	"github.com/example/foodhub/internal/storage"
)

func newTestScreens(t *testing.T) (*Screens, *authflow.HandoffStore, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	pending := storage.NewMemory(0)
	durable := storage.NewMemory(0)
	handoff := authflow.NewHandoffStore(pending)
	sessions := authflow.NewSessionStore(durable)

	s := NewScreens(func(role authflow.Role) Params {
		return Params{
			Handoff:  handoff,
			Sessions: sessions,
			Verifier: DemoPolicy{},
		}
	}, 0, clock)
	t.Cleanup(func() {
		s.Close()
		pending.Close()
		durable.Close()
	})
	return s, handoff, clock
}

func TestScreens_OpenReusesScreen(t *testing.T) {
	ctx := context.Background()
	s, handoff, _ := newTestScreens(t)
	require.NoError(t, handoff.Put(ctx, "tok", authflow.PendingAuthRecord{
		Contact: "a@b.co", Method: authflow.MethodEmail, Role: authflow.RoleConsumer,
	}))

	m1, err := s.Open(ctx, authflow.RoleConsumer, "tok")
	require.NoError(t, err)
	m2, err := s.Open(ctx, authflow.RoleConsumer, "tok")
	require.NoError(t, err)

	assert.Same(t, m1, m2)
	assert.Equal(t, 1, s.Len())

	got, ok := s.Lookup(authflow.RoleConsumer, "tok")
	require.True(t, ok)
	assert.Same(t, m1, got)

	_, ok = s.Lookup(authflow.RoleRestaurantPartner, "tok")
	assert.False(t, ok)
}

func TestScreens_OpenWithoutPending(t *testing.T) {
	s, _, _ := newTestScreens(t)

	_, err := s.Open(context.Background(), authflow.RoleRestaurantPartner, "missing")

	assert.ErrorIs(t, err, ErrMissingPendingAuth)
	assert.Equal(t, 0, s.Len())
}

func TestScreens_RecordsLandingNavigation(t *testing.T) {
	ctx := context.Background()
	s, handoff, clock := newTestScreens(t)
	require.NoError(t, handoff.Put(ctx, "tok", authflow.PendingAuthRecord{
		Contact: "+1 5550000000", Method: authflow.MethodPhone, Role: authflow.RoleRestaurantPartner,
	}))

	m, err := s.Open(ctx, authflow.RoleRestaurantPartner, "tok")
	require.NoError(t, err)
	require.NoError(t, m.OnPaste(ctx, "123456"))
	assert.Empty(t, s.NavigateTo(m))

	clock.Advance(DefaultSuccessDelay)
	require.Eventually(t, func() bool {
		return s.NavigateTo(m) == "/restaurant/dashboard"
	}, time.Second, time.Millisecond)
}

func TestScreens_FinishedScreenIsNotReopened(t *testing.T) {
	ctx := context.Background()
	s, handoff, clock := newTestScreens(t)
	require.NoError(t, handoff.Put(ctx, "tok", authflow.PendingAuthRecord{
		Contact: "+1 5550000000", Method: authflow.MethodPhone, Role: authflow.RoleConsumer,
	}))

	m, err := s.Open(ctx, authflow.RoleConsumer, "tok")
	require.NoError(t, err)
	require.NoError(t, m.OnPaste(ctx, "123456"))

	// Still on the success screen: same machine, no second session handed out.
	again, err := s.Open(ctx, authflow.RoleConsumer, "tok")
	require.NoError(t, err)
	assert.Same(t, m, again)
	_, ok := m.ClaimSession()
	assert.True(t, ok)
	_, ok = again.ClaimSession()
	assert.False(t, ok)

	clock.Advance(DefaultSuccessDelay)
	require.Eventually(t, func() bool { return !m.Mounted() }, time.Second, time.Millisecond)

	// One last read reports the landing route, then the token is spent.
	last, err := s.Open(ctx, authflow.RoleConsumer, "tok")
	require.NoError(t, err)
	assert.Equal(t, "/", s.NavigateTo(last))
	assert.Equal(t, 0, s.Len())

	_, err = s.Open(ctx, authflow.RoleConsumer, "tok")
	assert.ErrorIs(t, err, ErrMissingPendingAuth)
}

func TestScreens_EvictIdleDropsUnmounted(t *testing.T) {
	ctx := context.Background()
	s, handoff, _ := newTestScreens(t)
	require.NoError(t, handoff.Put(ctx, "tok", authflow.PendingAuthRecord{
		Contact: "a@b.co", Method: authflow.MethodEmail, Role: authflow.RoleConsumer,
	}))

	m, err := s.Open(ctx, authflow.RoleConsumer, "tok")
	require.NoError(t, err)
	m.Close()

	s.EvictIdle()
	assert.Equal(t, 0, s.Len())
}

func TestScreens_LeaveDropsPending(t *testing.T) {
	ctx := context.Background()
	s, handoff, _ := newTestScreens(t)
	rec := authflow.PendingAuthRecord{Contact: "a@b.co", Method: authflow.MethodEmail, Role: authflow.RoleConsumer}
	require.NoError(t, handoff.Put(ctx, "tok", rec))

	m, err := s.Open(ctx, authflow.RoleConsumer, "tok")
	require.NoError(t, err)
	require.NoError(t, s.Leave(ctx, authflow.RoleConsumer, "tok"))

	assert.False(t, m.Mounted())
	assert.Equal(t, 0, s.Len())
	_, err = handoff.Get(ctx, authflow.RoleConsumer, "tok")
	assert.ErrorIs(t, err, authflow.ErrNoPendingAuth)

	// Leaving a screen that was never opened still discards the hand-off.
	require.NoError(t, handoff.Put(ctx, "other", rec))
	require.NoError(t, s.Leave(ctx, authflow.RoleConsumer, "other"))
	_, err = handoff.Get(ctx, authflow.RoleConsumer, "other")
	assert.ErrorIs(t, err, authflow.ErrNoPendingAuth)
}

func TestScreens_EvictIdleKeepsPending(t *testing.T) {
	ctx := context.Background()
	s, handoff, clock := newTestScreens(t)
	s.idleTTL = time.Minute
	require.NoError(t, handoff.Put(ctx, "tok", authflow.PendingAuthRecord{
		Contact: "a@b.co", Method: authflow.MethodEmail, Role: authflow.RoleConsumer,
	}))

	m, err := s.Open(ctx, authflow.RoleConsumer, "tok")
	require.NoError(t, err)

	clock.Advance(30 * time.Second)
	s.EvictIdle()
	assert.Equal(t, 1, s.Len())

	clock.Advance(2 * time.Minute)
	s.EvictIdle()
	assert.Equal(t, 0, s.Len())
	assert.False(t, m.Mounted())

	// The hand-off survives, so the screen can be mounted again.
	_, err = s.Open(ctx, authflow.RoleConsumer, "tok")
	require.NoError(t, err)
}
