package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/config"
	"github.com/spec-kit/marketplace-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventListingSubmitted, n.handleListingSubmitted)
	n.dispatcher.Subscribe(events.EventListingReviewed, n.handleListingReviewed)
	n.dispatcher.Subscribe(events.EventPurchaseCompleted, n.handlePurchaseCompleted)
	n.dispatcher.Subscribe(events.EventDownloadRedeemed, n.handleDownloadRedeemed)
	n.dispatcher.Subscribe(events.EventDeveloperPromoted, n.handleDeveloperPromoted)
}

func (n *NotificationService) handleListingSubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("ListingSubmitted", zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleListingReviewed(ctx context.Context, event events.Event) error {
	n.logger.Info("ListingReviewed", zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handlePurchaseCompleted(ctx context.Context, event events.Event) error {
	n.logger.Info("PurchaseCompleted", zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleDownloadRedeemed(_ context.Context, event events.Event) error {
	n.logger.Info("DownloadRedeemed", zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleDeveloperPromoted(ctx context.Context, event events.Event) error {
	n.logger.Info("DeveloperPromoted", zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)))
}
