package messaging

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const optOutSetKey = "sms:optout"

// OptOutStore tracks phone numbers that replied STOP.
type OptOutStore struct {
	client *redis.Client
}

// NewOptOutStore creates an opt-out store.
func NewOptOutStore(client *redis.Client) *OptOutStore {
	if client == nil {
		panic("messaging: redis client required")
	}
	return &OptOutStore{client: client}
}

// OptOut records that the phone must not receive further texts.
func (s *OptOutStore) OptOut(ctx context.Context, phone string) error {
	if err := s.client.SAdd(ctx, optOutSetKey, phone).Err(); err != nil {
		return fmt.Errorf("messaging: record opt-out: %w", err)
	}
	return nil
}

// OptIn removes the phone from the opt-out list.
func (s *OptOutStore) OptIn(ctx context.Context, phone string) error {
	if err := s.client.SRem(ctx, optOutSetKey, phone).Err(); err != nil {
		return fmt.Errorf("messaging: clear opt-out: %w", err)
	}
	return nil
}

// IsOptedOut reports whether the phone has opted out of texts.
func (s *OptOutStore) IsOptedOut(ctx context.Context, phone string) (bool, error) {
	out, err := s.client.SIsMember(ctx, optOutSetKey, phone).Result()
	if err != nil {
		return false, fmt.Errorf("messaging: opt-out lookup: %w", err)
	}
	return out, nil
}
