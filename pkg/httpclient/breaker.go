package httpclient

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig tunes a Breaker.
type BreakerConfig struct {
	// Name labels the breaker in logs and metrics.
	Name string
	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32
	// Interval clears closed-state counts periodically. 0 never clears them.
	Interval time.Duration
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
	// FailureRatio trips the breaker once failures/requests reaches it,
	// after at least MinRequests calls.
	FailureRatio float64
	MinRequests  uint32
}

// DefaultBreakerConfig returns defaults for a breaker named name.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     time.Minute,
		OpenTimeout:  30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  3,
	}
}

// ErrOpen is returned while the breaker rejects calls.
var ErrOpen = gobreaker.ErrOpenState

var breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "storefront_upstream_breaker_state",
	Help: "Upstream circuit breaker state (0=closed, 1=half-open, 2=open).",
}, []string{"name"})

// Breaker guards calls to one upstream.
type Breaker struct {
	cb *gobreaker.CircuitBreaker[struct{}]
}

// NewBreaker creates a breaker. Client errors (4xx StatusError) and
// cancellations by the caller do not count as upstream failures.
func NewBreaker(cfg BreakerConfig, logger *slog.Logger) *Breaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.Requests >= cfg.MinRequests &&
				float64(c.TotalFailures)/float64(c.Requests) >= cfg.FailureRatio
		},
		IsSuccessful: upstreamHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("upstream breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(float64(to))
		},
	}
	breakerState.WithLabelValues(cfg.Name).Set(float64(gobreaker.StateClosed))

	return &Breaker{cb: gobreaker.NewCircuitBreaker[struct{}](settings)}
}

// Run calls fn through the breaker.
func (b *Breaker) Run(fn func() error) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// State returns the breaker's current state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func upstreamHealthy(err error) bool {
	if err == nil || errors.Is(err, errCallerCancelled) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode < http.StatusInternalServerError
}
