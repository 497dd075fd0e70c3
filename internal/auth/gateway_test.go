package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planetprotrader/backend/internal/profile"
	"github.com/planetprotrader/backend/pkg/logger"
	"github.com/planetprotrader/backend/pkg/metrics"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	gw       *Gateway
	provider *MemoryProvider
	profiles *profile.MemoryRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	provider := NewMemoryProvider(time.Hour)
	profiles := profile.NewMemoryRepository()
	gw := NewGateway(provider, profiles, Config{Metrics: metrics.New()}, logger.NewNop())
	gw.now = func() time.Time { return fixedNow }
	return fixture{gw: gw, provider: provider, profiles: profiles}
}

func TestSignUp_CreatesDefaultProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.gw.SignUp(ctx, "goldbug", "goldbug@goldex.ai", "secret123"))

	s := f.gw.Current()
	assert.True(t, s.IsAuthenticated)
	assert.False(t, s.IsLoading)
	assert.Empty(t, s.ErrorMessage)
	require.NotNil(t, s.User)

	p, err := f.profiles.Get(ctx, s.User.UID)
	require.NoError(t, err)
	assert.Equal(t, "goldbug", p.Username)
	assert.Equal(t, []string{"1h", "4h", "1d"}, p.PreferredTimeframes)
	assert.True(t, p.Notifications.TradeSignals)
	assert.Equal(t, fixedNow, p.CreatedAt)
}

func TestSignIn_ExpandsBareUsername(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.gw.SignUp(ctx, "goldbug", "goldbug@goldex.ai", "secret123"))
	require.NoError(t, f.gw.SignOut(ctx))

	require.NoError(t, f.gw.SignIn(ctx, "goldbug", "secret123"))

	s := f.gw.Current()
	assert.True(t, s.IsAuthenticated)
	assert.Equal(t, "goldbug@goldex.ai", s.User.Email)

	p, err := f.profiles.Get(ctx, s.User.UID)
	require.NoError(t, err)
	assert.True(t, p.IsOnline)
	assert.Equal(t, fixedNow, p.LastLoginAt)
}

func TestNormalizeEmail(t *testing.T) {
	gw := NewGateway(nil, nil, Config{EmailDomain: "example.com"}, logger.NewNop())
	assert.Equal(t, "trader@example.com", gw.NormalizeEmail("trader"))
	assert.Equal(t, "a@b.io", gw.NormalizeEmail(" a@b.io "))
	assert.Equal(t, "", gw.NormalizeEmail(""))
}

func TestSignIn_WrongPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.gw.SignUp(ctx, "goldbug", "goldbug@goldex.ai", "secret123"))
	require.NoError(t, f.gw.SignOut(ctx))

	err := f.gw.SignIn(ctx, "goldbug@goldex.ai", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	s := f.gw.Current()
	assert.False(t, s.IsAuthenticated)
	assert.False(t, s.IsLoading)
	assert.Equal(t, "Sign in failed: invalid email or password", s.ErrorMessage)
}

func TestSignIn_ValidationMessage(t *testing.T) {
	f := newFixture(t)

	err := f.gw.SignIn(context.Background(), "goldbug", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "Sign in failed: password is required", f.gw.Current().ErrorMessage)
}

func TestSignUp_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Error(t, f.gw.SignUp(ctx, "goldbug", "not-an-email", "secret123"))
	assert.Equal(t, "Sign up failed: email must be a valid email address", f.gw.Current().ErrorMessage)

	assert.Error(t, f.gw.SignUp(ctx, "goldbug", "goldbug@goldex.ai", "123"))
	assert.Equal(t, "Sign up failed: password must be at least 6 characters", f.gw.Current().ErrorMessage)

	require.NoError(t, f.gw.SignUp(ctx, "goldbug", "goldbug@goldex.ai", "secret123"))
	err := f.gw.SignUp(ctx, "other", "goldbug@goldex.ai", "secret123")
	assert.ErrorIs(t, err, ErrEmailInUse)
	assert.Equal(t, "Sign up failed: email address is already in use", f.gw.Current().ErrorMessage)
}

func TestSignUp_ProfileWriteFailureKeepsSession(t *testing.T) {
	f := newFixture(t)
	f.profiles.FailWith(errors.New("permission denied"))

	err := f.gw.SignUp(context.Background(), "goldbug", "goldbug@goldex.ai", "secret123")
	assert.ErrorIs(t, err, ErrProfileWrite)

	s := f.gw.Current()
	assert.True(t, s.IsAuthenticated)
	assert.False(t, s.IsLoading)
	assert.Equal(t, "Sign up failed: permission denied", s.ErrorMessage)
}

func TestSignIn_MissingProfileKeepsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.provider.CreateUser(ctx, "ghost", "ghost@goldex.ai", "secret123")
	require.NoError(t, err)

	err = f.gw.SignIn(ctx, "ghost", "secret123")
	assert.ErrorIs(t, err, ErrProfileWrite)
	assert.True(t, f.gw.Current().IsAuthenticated)
	assert.Equal(t, "Sign in failed: profile not found", f.gw.Current().ErrorMessage)
}

func TestSignOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.gw.SignUp(ctx, "goldbug", "goldbug@goldex.ai", "secret123"))
	uid := f.gw.Current().User.UID
	require.NoError(t, f.profiles.SetOnline(ctx, uid, true))

	require.NoError(t, f.gw.SignOut(ctx))

	s := f.gw.Current()
	assert.False(t, s.IsAuthenticated)
	assert.Nil(t, s.User)

	p, err := f.profiles.Get(ctx, uid)
	require.NoError(t, err)
	assert.False(t, p.IsOnline)
}

func TestSignOut_FailureKeepsSession(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.gw.SignUp(context.Background(), "goldbug", "goldbug@goldex.ai", "secret123"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, f.gw.SignOut(ctx))
	s := f.gw.Current()
	assert.True(t, s.IsAuthenticated)
	assert.Equal(t, "Sign out failed: context canceled", s.ErrorMessage)
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.gw.SignUp(ctx, "goldbug", "goldbug@goldex.ai", "secret123"))

	require.NoError(t, f.gw.ResetPassword(ctx, "goldbug"))
	tokens := f.provider.ResetTokens()
	require.Len(t, tokens, 1)
	assert.Equal(t, f.gw.Current().User.UID, tokens[0].UID)

	err := f.gw.ResetPassword(ctx, "nobody@goldex.ai")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, "Password reset failed: no account for this email", f.gw.Current().ErrorMessage)
}

func TestSignIn_RateLimited(t *testing.T) {
	provider := NewMemoryProvider(time.Hour)
	gw := NewGateway(provider, profile.NewMemoryRepository(), Config{SignInPerMin: 2}, logger.NewNop())
	ctx := context.Background()

	assert.ErrorIs(t, gw.SignIn(ctx, "x@goldex.ai", "bad"), ErrInvalidCredentials)
	assert.ErrorIs(t, gw.SignIn(ctx, "x@goldex.ai", "bad"), ErrInvalidCredentials)
	assert.ErrorIs(t, gw.SignIn(ctx, "x@goldex.ai", "bad"), ErrTooManyAttempts)

	assert.ErrorIs(t, gw.SignIn(ctx, "y@goldex.ai", "bad"), ErrInvalidCredentials, "limit is per email")
}

func TestSignIn_IdleLimitersAreDropped(t *testing.T) {
	now := fixedNow
	gw := NewGateway(NewMemoryProvider(time.Hour), profile.NewMemoryRepository(), Config{SignInPerMin: 2}, logger.NewNop())
	gw.now = func() time.Time { return now }
	ctx := context.Background()

	for _, email := range []string{"a@goldex.ai", "b@goldex.ai", "c@goldex.ai"} {
		assert.ErrorIs(t, gw.SignIn(ctx, email, "bad"), ErrInvalidCredentials)
	}
	assert.ErrorIs(t, gw.SignIn(ctx, "a@goldex.ai", "bad"), ErrInvalidCredentials)
	assert.ErrorIs(t, gw.SignIn(ctx, "a@goldex.ai", "bad"), ErrTooManyAttempts)
	assert.Len(t, gw.limiters, 3)

	now = now.Add(2 * time.Minute)
	assert.ErrorIs(t, gw.SignIn(ctx, "d@goldex.ai", "bad"), ErrInvalidCredentials)
	assert.Len(t, gw.limiters, 1, "only the fresh bucket survives the sweep")

	// a dropped bucket comes back full
	assert.ErrorIs(t, gw.SignIn(ctx, "a@goldex.ai", "bad"), ErrInvalidCredentials)
	assert.ErrorIs(t, gw.SignIn(ctx, "a@goldex.ai", "bad"), ErrInvalidCredentials)
	assert.ErrorIs(t, gw.SignIn(ctx, "a@goldex.ai", "bad"), ErrTooManyAttempts)
}

func TestSessionPublishesLoading(t *testing.T) {
	f := newFixture(t)
	ch, cancel := f.gw.Session().Subscribe(8)
	defer cancel()

	require.NoError(t, f.gw.SignUp(context.Background(), "goldbug", "goldbug@goldex.ai", "secret123"))

	first := <-ch
	assert.True(t, first.IsLoading)
}
