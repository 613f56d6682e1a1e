// Package session bundles one shopper's catalogue view, cart and wishlist
// and keeps the live bundles in a bounded registry.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/text/language"

	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/catalogue"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/storage"
	"github.com/utafrali/storefront/internal/wishlist"
	"github.com/utafrali/storefront/pkg/logger"
)

// DefaultMaxSessions bounds the number of sessions held in memory.
const DefaultMaxSessions = 10000

var activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "storefront_sessions_active",
	Help: "Sessions currently held in memory.",
})

// Session is the state of one shopper.
type Session struct {
	ID        string
	Catalogue *catalogue.Engine
	Cart      *cart.Ledger
	Wishlist  *wishlist.Set

	lastSeen time.Time
}

// Config holds the engine settings shared by all sessions.
type Config struct {
	PageSize    int
	Locale      language.Tag
	MaxSessions int
	// MinIdle is how long a session must go unused before it can be
	// evicted. Set it to the request timeout so in-flight sessions stay put.
	MinIdle time.Duration
}

// Registry creates sessions on first use. Evicted sessions lose only their
// filter state; cart and wishlist are rehydrated from storage.
//
// Only sessions idle for at least Config.MinIdle are evicted. When every
// session is busier than that, the registry grows past MaxSessions until
// one goes idle, so two ledgers never write the same session's keys.
type Registry struct {
	products catalogue.ProductSource
	store    *storage.Store
	events   *event.Producer
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates a registry. events may be nil to disable publishing.
func NewRegistry(products catalogue.ProductSource, store *storage.Store, events *event.Producer, cfg Config, l *slog.Logger) *Registry {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = catalogue.DefaultPageSize
	}
	if cfg.Locale == language.Und {
		cfg.Locale = language.English
	}
	if l == nil {
		l = logger.Discard()
	}
	return &Registry{
		products: products,
		store:    store,
		events:   events,
		cfg:      cfg,
		logger:   l,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for id, creating and hydrating it if needed.
func (r *Registry) Get(ctx context.Context, id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		s.lastSeen = r.now()
		return s
	}

	if len(r.sessions) >= r.cfg.MaxSessions {
		r.evictOldest(ctx)
	}

	s := r.newSession(ctx, id)
	r.sessions[id] = s
	activeSessions.Set(float64(len(r.sessions)))
	r.logger.DebugContext(ctx, "session created", slog.String("session_id", id))
	return s
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) newSession(ctx context.Context, id string) *Session {
	store := r.store.Namespace(id)
	l := r.logger.With(slog.String("session_id", id))

	cartOpts := []cart.Option{cart.WithLogger(l)}
	wishOpts := []wishlist.Option{wishlist.WithLogger(l)}
	if r.events != nil {
		cartOpts = append(cartOpts, cart.WithObserver(r.events.CartObserver(id)))
		wishOpts = append(wishOpts, wishlist.WithObserver(r.events.WishlistObserver(id)))
	}

	return &Session{
		ID: id,
		Catalogue: catalogue.New(r.products,
			catalogue.WithPageSize(r.cfg.PageSize),
			catalogue.WithLocale(r.cfg.Locale),
			catalogue.WithLogger(l),
		),
		Cart:     cart.New(ctx, store, cartOpts...),
		Wishlist: wishlist.New(ctx, store, wishOpts...),
		lastSeen: r.now(),
	}
}

// evictOldest drops the least recently used session if it has been idle for
// at least MinIdle. Callers hold mu.
func (r *Registry) evictOldest(ctx context.Context) {
	var oldest *Session
	for _, s := range r.sessions {
		if oldest == nil || s.lastSeen.Before(oldest.lastSeen) {
			oldest = s
		}
	}
	if oldest == nil {
		return
	}
	if idle := r.now().Sub(oldest.lastSeen); idle < r.cfg.MinIdle {
		r.logger.WarnContext(ctx, "session limit exceeded, no idle session to evict",
			slog.Int("sessions", len(r.sessions)),
			slog.Int("max_sessions", r.cfg.MaxSessions),
			slog.Duration("oldest_idle", idle),
		)
		return
	}
	delete(r.sessions, oldest.ID)
	r.logger.DebugContext(ctx, "session evicted", slog.String("session_id", oldest.ID))
}
