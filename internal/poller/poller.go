// Package poller empties carts once an external checkout reports completion.
package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shoppyglobe/backend/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultTopic   = "checkout-outbox"
	DefaultGroupID = "cart-service-consumer"

	retryDelay = time.Second
)

var errMissingUserID = errors.New("missing or invalid user_id")

type CartClearer interface {
	ClearCart(ctx context.Context, ownerID string) (*domain.Cart, error)
}

type Poller struct {
	carts  CartClearer
	reader *kafka.Reader
	logger *zap.Logger
}

func NewPoller(carts CartClearer, logger *zap.Logger, topic string, brokers ...string) *Poller {
	if topic == "" {
		topic = DefaultTopic
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  DefaultGroupID,
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{carts: carts, reader: reader, logger: logger}
}

// Run consumes until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	for {
		m, err := p.reader.ReadMessage(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			p.logger.Error("read checkout message", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(retryDelay):
			}
			continue
		}

		if err := p.Handle(ctx, m.Value); err != nil {
			p.logger.Error("handle checkout message",
				zap.String("key", string(m.Key)),
				zap.Int64("offset", m.Offset),
				zap.Error(err))
		}
	}
}

// Handle clears the cart of the user named in a checkout event. A user
// without a cart is not an error.
func (p *Poller) Handle(ctx context.Context, value []byte) error {
	var payload map[string]any
	if err := json.Unmarshal(value, &payload); err != nil {
		return fmt.Errorf("parse message: %w", err)
	}
	userID, ok := payload["user_id"].(string)
	if !ok || userID == "" {
		return errMissingUserID
	}

	_, err := p.carts.ClearCart(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrCartNotFound) {
		return fmt.Errorf("clear cart for %s: %w", userID, err)
	}
	return nil
}

func (p *Poller) Close() error {
	return p.reader.Close()
}
