package favorite

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/utafrali/ScentGo/internal/event"
)

// NewToggleCounter registers scentgo_favorite_toggles_total on reg and
// returns a listener that increments it.
func NewToggleCounter(reg prometheus.Registerer) (Listener, error) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scentgo_favorite_toggles_total",
		Help: "Favorite toggles by resulting action.",
	}, []string{"action"})
	if err := reg.Register(counter); err != nil {
		return nil, err
	}

	return func(_ context.Context, c Change) {
		action := "remove"
		if c.Favorite {
			action = "add"
		}
		counter.WithLabelValues(action).Inc()
	}, nil
}

// PublishChanges returns a listener that emits a favorite.toggled event per
// toggle. Publishing runs in the background and failures are logged.
func PublishChanges(pub event.Publisher, logger *slog.Logger) Listener {
	return func(ctx context.Context, c Change) {
		ctx = context.WithoutCancel(ctx)
		go func() {
			if err := pub.PublishFavoriteToggled(ctx, c.ID, c.Favorite, len(c.IDs)); err != nil {
				logger.ErrorContext(ctx, "failed to publish favorite.toggled event",
					slog.String("perfume_id", c.ID),
					slog.String("error", err.Error()),
				)
			}
		}()
	}
}
