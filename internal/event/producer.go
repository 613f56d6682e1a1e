// Package event publishes cart and wishlist changes to Kafka.
package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Event types. Each is published to pkgkafka.Topic(type).
const (
	TypeCartUpdated     = "cart.updated"
	TypeWishlistUpdated = "wishlist.updated"
)

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "storefront"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID  string         `json:"session_id"`
	Items      []CartItemData `json:"items"`
	TotalItems int            `json:"total_items"`
	TotalPrice string         `json:"total_price"`
}

// CartItemData is one line within a cart event.
type CartItemData struct {
	ProductID int     `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// WishlistUpdatedData is the payload for a wishlist.updated event.
type WishlistUpdatedData struct {
	SessionID  string `json:"session_id"`
	ProductIDs []int  `json:"product_ids"`
	TotalItems int    `json:"total_items"`
}

// Publisher is the part of the Kafka producer used here.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront domain events.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates an event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// PublishCartUpdated publishes the full cart of a session.
func (p *Producer) PublishCartUpdated(ctx context.Context, sessionID string, entries []domain.CartEntry) error {
	items := make([]CartItemData, len(entries))
	for i, e := range entries {
		items[i] = CartItemData{
			ProductID: e.Product.ID,
			Title:     e.Product.Title,
			Price:     e.Product.Price,
			Quantity:  e.Quantity,
		}
	}

	data := CartUpdatedData{
		SessionID:  sessionID,
		Items:      items,
		TotalItems: domain.ItemCount(entries),
		TotalPrice: domain.TotalAmount(entries).String(),
	}
	return p.publish(ctx, TypeCartUpdated, sessionID, data)
}

// PublishWishlistUpdated publishes the wishlist product ids of a session.
func (p *Producer) PublishWishlistUpdated(ctx context.Context, sessionID string, products []domain.Product) error {
	ids := make([]int, len(products))
	for i, prod := range products {
		ids[i] = prod.ID
	}

	data := WishlistUpdatedData{
		SessionID:  sessionID,
		ProductIDs: ids,
		TotalItems: len(ids),
	}
	return p.publish(ctx, TypeWishlistUpdated, sessionID, data)
}

func (p *Producer) publish(ctx context.Context, eventType, sessionID string, data any) error {
	event, err := pkgkafka.NewEvent(eventType, sessionID, SourceStorefront, data,
		pkgkafka.WithCorrelationID(logger.CorrelationIDFromContext(ctx)))
	if err != nil {
		return err
	}
	if err := p.kafka.Publish(ctx, pkgkafka.Topic(eventType), event); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

// CartObserver returns a cart observer publishing for sessionID. Failures are
// logged and otherwise ignored.
func (p *Producer) CartObserver(sessionID string) func(context.Context, []domain.CartEntry) {
	return func(ctx context.Context, entries []domain.CartEntry) {
		if err := p.PublishCartUpdated(ctx, sessionID, entries); err != nil {
			p.logger.WarnContext(ctx, "cart event dropped", slog.String("error", err.Error()))
		}
	}
}

// WishlistObserver is the wishlist counterpart of CartObserver.
func (p *Producer) WishlistObserver(sessionID string) func(context.Context, []domain.Product) {
	return func(ctx context.Context, products []domain.Product) {
		if err := p.PublishWishlistUpdated(ctx, sessionID, products); err != nil {
			p.logger.WarnContext(ctx, "wishlist event dropped", slog.String("error", err.Error()))
		}
	}
}
