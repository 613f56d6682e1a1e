package source

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/tracing"
)

// FallbackMessage is reported when a failure carries no usable message.
const FallbackMessage = "An unexpected error occurred"

// State is what the presentation layer sees of the product feed.
type State struct {
	Loading  bool             `json:"loading"`
	Error    string           `json:"error,omitempty"`
	Products []domain.Product `json:"products"`
}

// Loader runs the fetcher and keeps the outcome. It is safe for concurrent use.
type Loader struct {
	fetcher Fetcher
	logger  *slog.Logger

	mu         sync.RWMutex
	state      State
	generation uint64
}

// NewLoader creates a loader. It reports Loading until the first Load ends.
func NewLoader(fetcher Fetcher, l *slog.Logger) *Loader {
	if l == nil {
		l = logger.Discard()
	}
	return &Loader{
		fetcher: fetcher,
		logger:  l,
		state:   State{Loading: true, Products: []domain.Product{}},
	}
}

// Load fetches the collection and records products or the failure message.
// Products from an earlier success survive a failed load. When loads
// overlap, only the most recently started one is recorded.
func (l *Loader) Load(ctx context.Context) State {
	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.state.Loading = true
	l.state.Error = ""
	l.mu.Unlock()

	ctx, span := tracing.Start(ctx, "source.Load", attribute.Int64("source.generation", int64(gen)))
	defer span.End()

	products, err := l.fetch(ctx)
	tracing.Fail(span, err)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		l.logger.DebugContext(ctx, "discarding stale product load", slog.Uint64("generation", gen))
		return l.copyState()
	}

	l.state.Loading = false
	if err != nil {
		l.state.Error = Message(err)
		l.logger.WarnContext(ctx, "product load failed", slog.String("error", err.Error()))
	} else {
		if products == nil {
			products = []domain.Product{}
		}
		l.state.Products = products
		l.logger.InfoContext(ctx, "products loaded", slog.Int("count", len(products)))
	}
	return l.copyState()
}

// Retry re-runs Load.
func (l *Loader) Retry(ctx context.Context) State {
	return l.Load(ctx)
}

// State returns the current state.
func (l *Loader) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.copyState()
}

// Products returns the loaded collection, empty until a load succeeds.
func (l *Loader) Products() []domain.Product {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Products
}

func (l *Loader) copyState() State {
	s := l.state
	s.Products = append([]domain.Product(nil), l.state.Products...)
	if s.Products == nil {
		s.Products = []domain.Product{}
	}
	return s
}

// fetch runs the fetcher, turning a panic into an error.
func (l *Loader) fetch(ctx context.Context) (products []domain.Product, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = errUnknown
		}
	}()
	return l.fetcher.Fetch(ctx)
}

var errUnknown = errors.New("")

// Message returns the text shown for a failed load: the error's own message,
// or FallbackMessage when there is none.
func Message(err error) string {
	if err == nil || err.Error() == "" {
		return FallbackMessage
	}
	return err.Error()
}
