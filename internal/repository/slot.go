package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/studentalliance/catalog-gateway/internal/storage/db"
)

// SlotChannel is the Postgres notification channel slot writes are
// announced on. Every gateway instance LISTENs here; the payload names the
// slot key and the writer's origin ID so a writer can skip its own writes.
const SlotChannel = "slot_changed"

// ErrSlotNotFound is returned when the requested slot has never been
// written.
var ErrSlotNotFound = errors.New("slot not found")

// Slot is one persisted key/value entry. Data holds whatever JSON the owner
// serialized into it; writes are last-write-wins with no merging.
type Slot struct {
	Key       string
	Data      json.RawMessage
	OriginID  string
	UpdatedAt time.Time
}

// SlotChange is the notification payload published on SlotChannel.
type SlotChange struct {
	Key      string `json:"key"`
	OriginID string `json:"origin_id"`
}

type PutSlotParams struct {
	Key      string
	Data     json.RawMessage
	OriginID string
}

type SlotRepository interface {
	WithDB(db db.DB) SlotRepository
	GetSlot(ctx context.Context, key string) (Slot, error)
	PutSlot(ctx context.Context, params PutSlotParams) error
}

type slotRepository struct {
	db db.DB
}

func NewSlotRepository(db db.DB) SlotRepository {
	return &slotRepository{db: db}
}

func (r slotRepository) WithDB(db db.DB) SlotRepository {
	return &slotRepository{db: db}
}

func (r slotRepository) GetSlot(ctx context.Context, key string) (Slot, error) {
	var slot Slot
	err := r.db.QueryRow(ctx, `
		SELECT key, data, origin_id, updated_at
		FROM slots
		WHERE key = @key
	`, pgx.NamedArgs{"key": key}).Scan(&slot.Key, &slot.Data, &slot.OriginID, &slot.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Slot{}, ErrSlotNotFound
	}
	if err != nil {
		return Slot{}, fmt.Errorf("get slot: %w", err)
	}

	return slot, nil
}

// PutSlot upserts the slot and notifies SlotChannel. The notification is
// delivered on commit, so listeners never observe a write that rolled back.
func (r slotRepository) PutSlot(ctx context.Context, params PutSlotParams) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO slots (key, data, origin_id, updated_at)
		VALUES (@key, @data, @origin_id, NOW())
		ON CONFLICT (key) DO UPDATE
		SET data = EXCLUDED.data,
		    origin_id = EXCLUDED.origin_id,
		    updated_at = EXCLUDED.updated_at
	`, pgx.NamedArgs{
		"key":       params.Key,
		"data":      params.Data,
		"origin_id": params.OriginID,
	}); err != nil {
		return fmt.Errorf("put slot: %w", err)
	}

	change, err := json.Marshal(SlotChange{Key: params.Key, OriginID: params.OriginID})
	if err != nil {
		return fmt.Errorf("marshal slot change: %w", err)
	}

	if _, err := r.db.Exec(ctx, `SELECT pg_notify(@channel, @payload)`, pgx.NamedArgs{
		"channel": SlotChannel,
		"payload": string(change),
	}); err != nil {
		return fmt.Errorf("notify slot change: %w", err)
	}

	return nil
}
