package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/request-service/internal/config"
	"github.com/spec-kit/request-service/internal/events"
)

// NotificationService consumes committed lifecycle events and fans them out
// to outbound channels. It runs strictly after the transaction: a channel
// failure is logged and never propagated back into request handling.
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

// RegisterHandlers subscribes to lifecycle events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRequestSubmitted, n.handleSubmitted)
	n.dispatcher.Subscribe(events.EventRequestStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventRequestAssigned, n.handleAssigned)
	n.dispatcher.Subscribe(events.EventQuoteIssued, n.handleQuoteIssued)
	n.dispatcher.Subscribe(events.EventInvoiceIssued, n.handleInvoiceIssued)
}

func (n *NotificationService) handleSubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("RequestSubmitted", zap.String("order_number", event.OrderNumber), zap.Any("payload", event.Payload))
	n.sendEmail(ctx, event)
	n.sendWhatsApp(ctx, event)
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("RequestStatusChanged", zap.String("order_number", event.OrderNumber), zap.Any("payload", event.Payload))
	n.sendEmail(ctx, event)
	n.sendWebhook(ctx, event)
	return nil
}

func (n *NotificationService) handleAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("RequestAssigned", zap.String("order_number", event.OrderNumber), zap.Any("payload", event.Payload))
	n.sendWebhook(ctx, event)
	return nil
}

func (n *NotificationService) handleQuoteIssued(ctx context.Context, event events.Event) error {
	n.logger.Info("QuoteIssued", zap.String("order_number", event.OrderNumber), zap.Any("payload", event.Payload))
	n.sendEmail(ctx, event)
	n.sendWhatsApp(ctx, event)
	return nil
}

func (n *NotificationService) handleInvoiceIssued(ctx context.Context, event events.Event) error {
	n.logger.Info("InvoiceIssued", zap.String("order_number", event.OrderNumber), zap.Any("payload", event.Payload))
	n.sendEmail(ctx, event)
	return nil
}

func (n *NotificationService) sendEmail(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmail",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("order_number", event.OrderNumber),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWhatsApp(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WhatsAppURL) == "" {
		return
	}
	n.logger.Debug("sendWhatsApp",
		zap.String("url", n.cfg.WhatsAppURL),
		zap.String("order_number", event.OrderNumber),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhook(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhook",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("order_number", event.OrderNumber),
		zap.String("event_type", string(event.Type)))
}
