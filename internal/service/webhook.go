package service

import (
	"context"
	"errors"
	"fmt"
	"food-ordering-api/internal/client"
	"food-ordering-api/internal/model"
	"food-ordering-api/internal/repository"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type WebhookService interface {
	HandlePaymentWebhook(ctx context.Context, payload []byte, signature string) error
}

type webhookServiceImpl struct {
	db          *gorm.DB
	verifier    client.WebhookVerifier
	orderRepo   repository.OrderRepository
	webhookRepo repository.WebhookEventRepository
	publisher   client.EventPublisher
	now         func() time.Time
}

func NewWebhookService(
	db *gorm.DB,
	verifier client.WebhookVerifier,
	orderRepo repository.OrderRepository,
	webhookRepo repository.WebhookEventRepository,
	publisher client.EventPublisher,
) WebhookService {
	return &webhookServiceImpl{
		db:          db,
		verifier:    verifier,
		orderRepo:   orderRepo,
		webhookRepo: webhookRepo,
		publisher:   publisher,
		now:         time.Now,
	}
}

// HandlePaymentWebhook marks the matching order paid. Each event id is applied once;
// an unknown session is reported as not found so the gateway redelivers later.
func (s *webhookServiceImpl) HandlePaymentWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.verifier.ParseWebhook(payload, signature)
	if err != nil {
		log.Warn().Err(err).Msg("rejected payment webhook")
		return validationError("invalid webhook signature")
	}

	processed, err := s.webhookRepo.Exists(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if processed {
		return nil
	}

	if event.SessionID == "" || !event.Paid {
		if err := s.webhookRepo.MarkProcessed(ctx, nil, event.ID, event.Type); err != nil {
			return fmt.Errorf("mark webhook processed: %w", err)
		}
		return nil
	}

	order, err := s.orderRepo.FindBySessionID(ctx, event.SessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundError(msgOrderNotFound)
	}
	if err != nil {
		return fmt.Errorf("find order by session: %w", err)
	}

	fields := map[string]interface{}{
		"payment_status": model.PaymentStatusSucceeded,
		"updated_at":     s.now(),
	}
	if event.PaymentIntentID != "" {
		fields["payment_intent_id"] = event.PaymentIntentID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Update(ctx, tx, order.ID, fields); err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		if err := s.webhookRepo.MarkProcessed(ctx, tx, event.ID, event.Type); err != nil {
			return fmt.Errorf("mark webhook processed: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	order.PaymentStatus = model.PaymentStatusSucceeded
	publishOrderEvent(ctx, s.publisher, client.OrderEventPaymentConfirmed, order, s.now())
	return nil
}
