package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/studentalliance/catalog-gateway/internal/storage/mq"
)

// CatalogRefresher refreshes the local product set from the remote
// service. Satisfied by the product store.
type CatalogRefresher interface {
	Reload(ctx context.Context) error
}

// Service is the event service.
type Service struct {
	logger     *slog.Logger
	mqConsumer mq.Consumer
	refresher  CatalogRefresher
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
	refresher CatalogRefresher,
) *Service {
	return &Service{
		logger:     logger,
		mqConsumer: mqConsumer,
		refresher:  refresher,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := s.mqConsumer.RegisterHandler(
		TopicProductAdded,
		func(ctx context.Context, topic string, payload []byte) error {
			var ev ProductAddedEvent
			if err := json.Unmarshal(payload, &ev); err != nil {
				return fmt.Errorf("unmarshal product added event: %w", err)
			}

			if err := s.handleProductAddedEvent(ctx, ev); err != nil {
				return fmt.Errorf("handle product added event: %w", err)
			}

			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("register product added event handler: %w", err)
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}

func (s *Service) handleProductAddedEvent(ctx context.Context, ev ProductAddedEvent) error {
	s.logger.InfoContext(ctx, "handling product added event", slog.Any("event", ev))

	// Every instance refreshes its working set so that a create anywhere is
	// visible everywhere.
	if err := s.refresher.Reload(ctx); err != nil {
		return fmt.Errorf("reload product store: %w", err)
	}

	return nil
}
