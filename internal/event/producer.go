package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/ScentGo/internal/domain"
	pkgkafka "github.com/utafrali/ScentGo/pkg/kafka"
	"github.com/utafrali/ScentGo/pkg/logger"
)

// Kafka topic constants for ScentGo events.
const (
	TopicUserRegistered  = "scentgo.user.registered"
	TopicFavoriteToggled = "scentgo.favorite.toggled"
)

// Aggregate type constants.
const (
	AggregateTypeUser    = "user"
	AggregateTypePerfume = "perfume"
)

// SourceScentGo identifies events originating from this service.
const SourceScentGo = "scentgo"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// FavoriteToggledData is the payload for a favorite.toggled event.
type FavoriteToggledData struct {
	PerfumeID string `json:"perfume_id"`
	Favorite  bool   `json:"favorite"`
	SetSize   int    `json:"set_size"`
}

// Publisher emits domain events. Implementations must be safe for concurrent use.
type Publisher interface {
	PublishUserRegistered(ctx context.Context, user *domain.User) error
	PublishFavoriteToggled(ctx context.Context, perfumeID string, favorite bool, setSize int) error
}

// Producer publishes ScentGo events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
	}
	if err := p.publish(ctx, TopicUserRegistered, user.ID, AggregateTypeUser, data); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.String("user_id", user.ID),
	)
	return nil
}

// PublishFavoriteToggled publishes a favorite.toggled event.
func (p *Producer) PublishFavoriteToggled(ctx context.Context, perfumeID string, favorite bool, setSize int) error {
	data := FavoriteToggledData{
		PerfumeID: perfumeID,
		Favorite:  favorite,
		SetSize:   setSize,
	}
	if err := p.publish(ctx, TopicFavoriteToggled, perfumeID, AggregateTypePerfume, data); err != nil {
		return fmt.Errorf("publish favorite.toggled event: %w", err)
	}

	p.logger.DebugContext(ctx, "published favorite.toggled event",
		slog.String("perfume_id", perfumeID),
		slog.Bool("favorite", favorite),
	)
	return nil
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	evt, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceScentGo, data)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}
	return p.kafka.Publish(ctx, topic, evt)
}

// Noop discards every event. Used when Kafka is disabled.
type Noop struct{}

func (Noop) PublishUserRegistered(context.Context, *domain.User) error { return nil }

func (Noop) PublishFavoriteToggled(context.Context, string, bool, int) error { return nil }
