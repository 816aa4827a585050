package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/protyayrd/tweestbd-sub001/internal/domain"
	pkgkafka "github.com/protyayrd/tweestbd-sub001/pkg/kafka"
)

// Kafka topic constants for pricing domain events.
const (
	TopicComboApplied      = "storefront.pricing.combo_applied"
	TopicComboOfferCreated = "storefront.combo_offer.created"
	TopicComboOfferUpdated = "storefront.combo_offer.updated"
)

// Aggregate type constants.
const (
	AggregateTypeCart       = "guest_cart"
	AggregateTypeComboOffer = "combo_offer"
)

// Source identifier for events originating from this service.
const SourcePricingService = "pricing-service"

// ComboAppliedData is the payload for a pricing.combo_applied event.
type ComboAppliedData struct {
	GuestID            string                       `json:"guest_id"`
	TotalComboDiscount int64                        `json:"total_combo_discount"`
	AppliedOffers      []domain.AppliedOfferSummary `json:"applied_offers"`
}

// ComboOfferData is the payload for combo_offer.created and
// combo_offer.updated events.
type ComboOfferData struct {
	OfferID         string `json:"offer_id"`
	CategoryID      string `json:"category_id"`
	Name            string `json:"name"`
	MinimumQuantity int    `json:"minimum_quantity"`
	ComboPrice      int64  `json:"combo_price"`
	IsActive        bool   `json:"is_active"`
}

// Producer publishes pricing domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the pricing service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishComboApplied publishes a pricing.combo_applied event. Only called
// when at least one offer qualified.
func (p *Producer) PublishComboApplied(ctx context.Context, guestID string, result *domain.PricingResult) error {
	data := ComboAppliedData{
		GuestID:            guestID,
		TotalComboDiscount: result.TotalComboDiscount,
		AppliedOffers:      result.AppliedOffers,
	}

	event, err := pkgkafka.NewEvent(TopicComboApplied, guestID, AggregateTypeCart, SourcePricingService, data)
	if err != nil {
		return fmt.Errorf("create pricing.combo_applied event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicComboApplied, event); err != nil {
		return fmt.Errorf("publish pricing.combo_applied event: %w", err)
	}

	p.logger.DebugContext(ctx, "published pricing.combo_applied event",
		slog.String("guest_id", guestID),
		slog.Int64("total_combo_discount", result.TotalComboDiscount),
		slog.Int("applied_offers", len(result.AppliedOffers)),
	)

	return nil
}

// PublishComboOfferCreated publishes a combo_offer.created event.
func (p *Producer) PublishComboOfferCreated(ctx context.Context, offer *domain.ComboOffer) error {
	return p.publishOfferEvent(ctx, TopicComboOfferCreated, offer)
}

// PublishComboOfferUpdated publishes a combo_offer.updated event.
func (p *Producer) PublishComboOfferUpdated(ctx context.Context, offer *domain.ComboOffer) error {
	return p.publishOfferEvent(ctx, TopicComboOfferUpdated, offer)
}

func (p *Producer) publishOfferEvent(ctx context.Context, topic string, offer *domain.ComboOffer) error {
	data := ComboOfferData{
		OfferID:         offer.ID,
		CategoryID:      offer.CategoryID,
		Name:            offer.Name,
		MinimumQuantity: offer.MinimumQuantity,
		ComboPrice:      offer.ComboPrice,
		IsActive:        offer.IsActive,
	}

	event, err := pkgkafka.NewEvent(topic, offer.ID, AggregateTypeComboOffer, SourcePricingService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published combo offer event",
		slog.String("topic", topic),
		slog.String("offer_id", offer.ID),
		slog.String("category_id", offer.CategoryID),
	)

	return nil
}
