package messaging

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clipperdesk/clipperdesk/internal/observability/metrics"
)

var (
	// ErrOTPNotFound is returned when no code is pending for the phone
	ErrOTPNotFound = errors.New("no code pending for this number")

	// ErrOTPMismatch is returned when the submitted code is wrong
	ErrOTPMismatch = errors.New("incorrect code")

	// ErrOTPTooManyAttempts is returned once the attempt budget is spent
	ErrOTPTooManyAttempts = errors.New("too many attempts, request a new code")
)

// OTPStore issues and verifies one-time login codes backed by Redis.
// Codes expire after the configured TTL and are invalidated after too
// many wrong guesses.
type OTPStore struct {
	client      *redis.Client
	ttl         time.Duration
	maxAttempts int
	metrics     *metrics.SMSMetrics
}

// NewOTPStore creates an OTP store.
func NewOTPStore(client *redis.Client, ttl time.Duration, maxAttempts int, sms *metrics.SMSMetrics) *OTPStore {
	if client == nil {
		panic("messaging: redis client required")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &OTPStore{client: client, ttl: ttl, maxAttempts: maxAttempts, metrics: sms}
}

func otpCodeKey(phone string) string     { return "otp:code:" + phone }
func otpAttemptsKey(phone string) string { return "otp:attempts:" + phone }

// Issue generates a fresh 6-digit code for the phone and stores it with TTL.
// Re-issuing replaces any pending code and resets the attempt counter.
func (s *OTPStore) Issue(ctx context.Context, phone string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("messaging: generate otp: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, otpCodeKey(phone), code, s.ttl)
	pipe.Del(ctx, otpAttemptsKey(phone))
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("messaging: store otp: %w", err)
	}

	s.metrics.ObserveOTP("issue", "ok")
	return code, nil
}

// Verify checks a submitted code. The pending code is consumed on success
// and invalidated after maxAttempts wrong guesses.
func (s *OTPStore) Verify(ctx context.Context, phone, submitted string) error {
	stored, err := s.client.Get(ctx, otpCodeKey(phone)).Result()
	if err == redis.Nil {
		s.metrics.ObserveOTP("verify", "expired")
		return ErrOTPNotFound
	}
	if err != nil {
		return fmt.Errorf("messaging: load otp: %w", err)
	}

	attempts, err := s.client.Incr(ctx, otpAttemptsKey(phone)).Result()
	if err != nil {
		return fmt.Errorf("messaging: count otp attempt: %w", err)
	}
	if attempts == 1 {
		s.client.Expire(ctx, otpAttemptsKey(phone), s.ttl)
	}
	if attempts > int64(s.maxAttempts) {
		s.client.Del(ctx, otpCodeKey(phone))
		s.metrics.ObserveOTP("verify", "locked")
		return ErrOTPTooManyAttempts
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) != 1 {
		s.metrics.ObserveOTP("verify", "mismatch")
		return ErrOTPMismatch
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, otpCodeKey(phone))
	pipe.Del(ctx, otpAttemptsKey(phone))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("messaging: consume otp: %w", err)
	}

	s.metrics.ObserveOTP("verify", "ok")
	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
