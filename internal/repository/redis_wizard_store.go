package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bookingDomain "github.com/Kilat-Home-Services/service-booking/internal/domain/booking"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/apperr"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const wizardKeyPrefix = "booking:wizard:"

// RedisWizardStore keeps wizard sessions as JSON snapshots in redis, one key
// per session, refreshed to ttl on every write.
type RedisWizardStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisWizardStore creates a RedisWizardStore.
func NewRedisWizardStore(client redis.UniversalClient, ttl time.Duration) *RedisWizardStore {
	return &RedisWizardStore{client: client, ttl: ttl}
}

var _ bookingDomain.WizardRepository = (*RedisWizardStore)(nil)

func wizardKey(id uuid.UUID) string {
	return wizardKeyPrefix + id.String()
}

// FindByID retrieves a wizard session by its identifier.
func (s *RedisWizardStore) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Wizard, error) {
	raw, err := s.client.Get(ctx, wizardKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.NewNotFoundError("Wizard", id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find wizard by ID: %w", err)
	}

	rec, err := decodeWizardRecord(raw)
	if err != nil {
		return nil, err
	}
	return toDomainWizard(rec)
}

// Save persists a new wizard session.
func (s *RedisWizardStore) Save(ctx context.Context, w *bookingDomain.Wizard) error {
	raw, err := json.Marshal(toWizardRecord(w))
	if err != nil {
		return fmt.Errorf("failed to marshal wizard: %w", err)
	}

	ok, err := s.client.SetNX(ctx, wizardKey(w.ID()), raw, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to save wizard: %w", err)
	}
	if !ok {
		return apperr.NewConflictError("wizard already exists")
	}
	return nil
}

// Update persists changes with optimistic locking. The stored version must
// equal wizard.Version()-1 and the key must not change between the check and
// the write.
func (s *RedisWizardStore) Update(ctx context.Context, w *bookingDomain.Wizard) error {
	raw, err := json.Marshal(toWizardRecord(w))
	if err != nil {
		return fmt.Errorf("failed to marshal wizard: %w", err)
	}
	key := wizardKey(w.ID())
	expectedVersion := w.Version() - 1

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return apperr.NewNotFoundError("Wizard", w.ID().String())
		}
		if err != nil {
			return fmt.Errorf("failed to read wizard: %w", err)
		}
		rec, err := decodeWizardRecord(current)
		if err != nil {
			return err
		}
		if rec.Version != expectedVersion {
			return apperr.NewConflictError("wizard was modified by another request")
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, s.ttl)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return apperr.NewConflictError("wizard was modified by another request")
	}
	if err != nil {
		if apperr.CodeOf(err) != "" {
			return err
		}
		return fmt.Errorf("failed to update wizard: %w", err)
	}
	return nil
}

// Delete discards a session.
func (s *RedisWizardStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, wizardKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete wizard: %w", err)
	}
	return nil
}

func decodeWizardRecord(raw []byte) (wizardRecord, error) {
	var rec wizardRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return wizardRecord{}, fmt.Errorf("failed to unmarshal wizard: %w", err)
	}
	return rec, nil
}
