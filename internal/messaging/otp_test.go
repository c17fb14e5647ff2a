package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOTPTestStore(t *testing.T) (*OTPStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewOTPStore(client, 5*time.Minute, 3, nil), mr
}

func TestOTP_IssueAndVerify(t *testing.T) {
	store, _ := newOTPTestStore(t)
	ctx := context.Background()

	code, err := store.Issue(ctx, "+15551230001")
	require.NoError(t, err)
	require.Len(t, code, 6)

	require.NoError(t, store.Verify(ctx, "+15551230001", code))

	// code is consumed on success
	assert.ErrorIs(t, store.Verify(ctx, "+15551230001", code), ErrOTPNotFound)
}

func TestOTP_Mismatch(t *testing.T) {
	store, _ := newOTPTestStore(t)
	ctx := context.Background()

	code, err := store.Issue(ctx, "+15551230001")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	assert.ErrorIs(t, store.Verify(ctx, "+15551230001", wrong), ErrOTPMismatch)

	// the right code still works within the attempt budget
	assert.NoError(t, store.Verify(ctx, "+15551230001", code))
}

func TestOTP_TooManyAttempts(t *testing.T) {
	store, _ := newOTPTestStore(t)
	ctx := context.Background()

	code, err := store.Issue(ctx, "+15551230001")
	require.NoError(t, err)

	wrong := "999999"
	if wrong == code {
		wrong = "999998"
	}
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, store.Verify(ctx, "+15551230001", wrong), ErrOTPMismatch)
	}
	assert.ErrorIs(t, store.Verify(ctx, "+15551230001", wrong), ErrOTPTooManyAttempts)

	// even the right code is dead after lockout
	assert.ErrorIs(t, store.Verify(ctx, "+15551230001", code), ErrOTPNotFound)
}

func TestOTP_Expiry(t *testing.T) {
	store, mr := newOTPTestStore(t)
	ctx := context.Background()

	code, err := store.Issue(ctx, "+15551230001")
	require.NoError(t, err)

	mr.FastForward(6 * time.Minute)
	assert.ErrorIs(t, store.Verify(ctx, "+15551230001", code), ErrOTPNotFound)
}

func TestOTP_ReissueResetsAttempts(t *testing.T) {
	store, _ := newOTPTestStore(t)
	ctx := context.Background()

	_, err := store.Issue(ctx, "+15551230001")
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		store.Verify(ctx, "+15551230001", "xxxxxx")
	}

	code, err := store.Issue(ctx, "+15551230001")
	require.NoError(t, err)
	assert.NoError(t, store.Verify(ctx, "+15551230001", code))
}
