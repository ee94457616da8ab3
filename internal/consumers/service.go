package consumers

import (
	"context"
	"fmt"
	"log/slog"

	"eventhub/internal/config"
	"eventhub/internal/messaging"
	"eventhub/internal/models"
	"eventhub/internal/search"
)

const (
	auditQueue      = "audit"
	searchSyncQueue = "search-sync"
)

type ConsumerService struct {
	bus      messaging.Bus
	handlers *Handlers
}

// NewConsumerService подключается к брокеру и, если включен, к Elasticsearch
func NewConsumerService(ctx context.Context, cfg *config.Config) (*ConsumerService, error) {
	if cfg.Messaging.Driver == messaging.DriverNone {
		return nil, fmt.Errorf("consumers need a message broker, set MESSAGING_DRIVER")
	}

	bus, err := messaging.New(cfg.Messaging)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to message broker: %w", err)
	}

	var index SearchIndex
	if cfg.Elasticsearch.Enabled {
		es, err := search.NewElasticsearchClient(ctx, cfg.Elasticsearch)
		if err != nil {
			bus.Close()
			return nil, fmt.Errorf("failed to connect to elasticsearch: %w", err)
		}
		index = es
	}

	return New(bus, NewHandlers(index, slog.Default())), nil
}

func New(bus messaging.Bus, handlers *Handlers) *ConsumerService {
	return &ConsumerService{bus: bus, handlers: handlers}
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting consumers...")

	for _, subject := range models.AuditSubjects {
		if err := cs.bus.Subscribe(subject, auditQueue, cs.handlers.HandleAudit); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
	}

	if cs.handlers.index != nil {
		subscriptions := map[string]messaging.Handler{
			models.SubjectEventCreated: cs.handlers.HandleEventChanged,
			models.SubjectEventUpdated: cs.handlers.HandleEventChanged,
			models.SubjectEventDeleted: cs.handlers.HandleEventDeleted,
		}
		for subject, handler := range subscriptions {
			if err := cs.bus.Subscribe(subject, searchSyncQueue, handler); err != nil {
				return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
			}
		}
	}

	slog.Info("All consumers started successfully", "search_sync", cs.handlers.index != nil)
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	done := make(chan error, 1)
	go func() { done <- cs.bus.Close() }()

	select {
	case err := <-done:
		if err != nil {
			slog.Error("Error closing message broker connection", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
