// Package store implements the Local Product Store: the working set of
// products behind the admin views. The set lives in memory, is mirrored to
// a persisted slot on every mutation, and follows remote-first CRUD — the
// remote product service is always updated before the local set.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/studentalliance/catalog-gateway/internal/config"
	"github.com/studentalliance/catalog-gateway/internal/event"
	"github.com/studentalliance/catalog-gateway/internal/model"
	"github.com/studentalliance/catalog-gateway/internal/repository"
	"github.com/studentalliance/catalog-gateway/internal/storage/db"
	"github.com/studentalliance/catalog-gateway/pkg/eventmeta"
)

// RemoteCatalog is the slice of the remote product service the store needs.
type RemoteCatalog interface {
	List(ctx context.Context) ([]model.Product, error)
	Create(ctx context.Context, product model.Product, token string) (model.Product, error)
	Update(ctx context.Context, id string, product model.Product, token string) (model.Product, error)
	Delete(ctx context.Context, id string, token string) error
}

type Store struct {
	cfg      config.Store
	originID string
	logger   *slog.Logger
	db       db.DB
	slotRepo repository.SlotRepository
	outbox   repository.OutboxMsgRepository
	remote   RemoteCatalog

	mu       sync.RWMutex
	products []model.Product
	loaded   bool
}

func New(
	cfg config.Store,
	logger *slog.Logger,
	db db.DB,
	slotRepo repository.SlotRepository,
	outbox repository.OutboxMsgRepository,
	remote RemoteCatalog,
) *Store {
	originID := cfg.OriginID
	if originID == "" {
		originID = uuid.NewString()
	}

	return &Store{
		cfg:      cfg,
		originID: originID,
		logger:   logger.With(slog.String("service", "product-store")),
		db:       db,
		slotRepo: slotRepo,
		outbox:   outbox,
		remote:   remote,
	}
}

// OriginID identifies this store instance in slot notifications.
func (s *Store) OriginID() string {
	return s.originID
}

// Load warm-starts the store: the persisted snapshot wins when present,
// otherwise the full list is fetched from the remote service. A failed
// fetch is logged and leaves the store empty; there is no automatic retry.
func (s *Store) Load(ctx context.Context) error {
	slot, err := s.slotRepo.GetSlot(ctx, s.cfg.SlotKey)
	switch {
	case err == nil:
		var products []model.Product
		if jsonErr := json.Unmarshal(slot.Data, &products); jsonErr != nil {
			// Corrupt snapshot content is not propagated; the store starts
			// empty and the next save overwrites the slot.
			s.logger.ErrorContext(ctx, "failed to load persisted products",
				slog.Any("error", jsonErr))
			products = nil
		}
		s.setProducts(products)
		return nil

	case errors.Is(err, repository.ErrSlotNotFound):
		products, fetchErr := s.remote.List(ctx)
		if fetchErr != nil {
			s.logger.ErrorContext(ctx, "failed to fetch products",
				slog.Any("error", fetchErr))
			s.setProducts(nil)
			return nil
		}
		s.setProducts(products)
		return s.persist(ctx, nil)

	default:
		return fmt.Errorf("read snapshot slot: %w", err)
	}
}

// Loaded reports whether Load has completed, so views can render an
// explicit loading state instead of a silently empty table.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Products returns a copy of the current working set.
func (s *Store) Products() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Create issues the remote create first; only on success is the returned
// record appended, the snapshot saved and the product-added event staged in
// the outbox — all in one transaction.
func (s *Store) Create(ctx context.Context, product model.Product, token string) (model.Product, error) {
	created, err := s.remote.Create(ctx, product, token)
	if err != nil {
		return model.Product{}, err
	}

	s.mu.Lock()
	s.products = append(s.products, created)
	s.mu.Unlock()

	ev := event.ProductAddedEvent{
		ProductID: created.ID,
		Name:      created.Name,
		Category:  string(created.Category),
		Price:     created.Price,
	}
	if err := s.persist(ctx, &ev); err != nil {
		return created, err
	}

	return created, nil
}

// Update issues the remote update first; on success the echo replaces the
// matching record and the snapshot is saved.
func (s *Store) Update(ctx context.Context, id string, product model.Product, token string) (model.Product, error) {
	updated, err := s.remote.Update(ctx, id, product, token)
	if err != nil {
		return model.Product{}, err
	}

	s.mu.Lock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products[i] = updated
		}
	}
	s.mu.Unlock()

	if err := s.persist(ctx, nil); err != nil {
		return updated, err
	}

	return updated, nil
}

// Remove issues the remote delete first; on success the record is filtered
// out and the snapshot saved. Deletes always carry the bearer token.
func (s *Store) Remove(ctx context.Context, id string, token string) error {
	if err := s.remote.Delete(ctx, id, token); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.products[:0]
	for _, p := range s.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.products = kept
	s.mu.Unlock()

	return s.persist(ctx, nil)
}

// Reload refetches the full list from the remote service and replaces the
// working set. Used when a product-added broadcast arrives.
func (s *Store) Reload(ctx context.Context) error {
	products, err := s.remote.List(ctx)
	if err != nil {
		return fmt.Errorf("refetch products: %w", err)
	}

	s.setProducts(products)
	return s.persist(ctx, nil)
}

// HandleSlotChange applies an external write to the persisted slot. The
// writer's own notifications are skipped, mirroring how browser storage
// events are delivered to every tab except the one that wrote. The
// in-memory set is replaced only when the incoming snapshot differs by
// full-content comparison.
func (s *Store) HandleSlotChange(ctx context.Context, change repository.SlotChange) {
	if change.Key != s.cfg.SlotKey || change.OriginID == s.originID {
		return
	}

	slot, err := s.slotRepo.GetSlot(ctx, s.cfg.SlotKey)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to sync products",
			slog.Any("error", err))
		return
	}

	var incoming []model.Product
	if err := json.Unmarshal(slot.Data, &incoming); err != nil {
		s.logger.ErrorContext(ctx, "failed to sync products",
			slog.Any("error", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if model.SameContent(incoming, s.products) {
		return
	}
	s.products = incoming
}

func (s *Store) setProducts(products []model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if products == nil {
		products = []model.Product{}
	}
	s.products = products
	s.loaded = true
}

// persist re-serializes the full set into the slot, unconditionally — no
// diffing, O(n) per mutation. When a product-added event is staged it is
// written in the same transaction as the snapshot.
func (s *Store) persist(ctx context.Context, added *event.ProductAddedEvent) error {
	s.mu.RLock()
	snapshot, err := json.Marshal(s.products)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	return s.db.WithTx(ctx, func(tx db.DB) error {
		if err := s.slotRepo.WithDB(tx).PutSlot(ctx, repository.PutSlotParams{
			Key:      s.cfg.SlotKey,
			Data:     snapshot,
			OriginID: s.originID,
		}); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}

		if added == nil {
			return nil
		}

		payload, err := json.Marshal(added)
		if err != nil {
			return fmt.Errorf("marshal product added event: %w", err)
		}

		if err := s.outbox.WithDB(tx).CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:   event.TopicProductAdded,
			Headers: eventmeta.BuildHeaders(ctx),
			Payload: payload,
		}); err != nil {
			return fmt.Errorf("stage product added event: %w", err)
		}

		return nil
	})
}
