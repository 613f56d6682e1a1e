package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/domain/domaintest"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

type mockPublisher struct {
	mock.Mock
	mu     sync.Mutex
	events []*pkgkafka.Event
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, event *pkgkafka.Event) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	return m.Called(ctx, topic, event).Error(0)
}

func TestProducer_PublishCartUpdated(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, "storefront.cart.updated", mock.Anything).Return(nil)
	p := NewProducer(pub, logger.Discard())
	products := domaintest.Products()

	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	err := p.PublishCartUpdated(ctx, "sess-1", []domain.CartEntry{
		{Product: products[0], Quantity: 2},
		{Product: products[1], Quantity: 1},
	})
	require.NoError(t, err)
	pub.AssertExpectations(t)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, "sess-1", ev.Key)
	assert.Equal(t, TypeCartUpdated, ev.Type)
	assert.Equal(t, "corr-1", ev.CorrelationID)

	var data CartUpdatedData
	require.NoError(t, ev.Decode(&data))
	assert.Equal(t, 3, data.TotalItems)
	assert.Equal(t, "242.2", data.TotalPrice)
	assert.Len(t, data.Items, 2)
}

func TestProducer_PublishWishlistUpdated(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, "storefront.wishlist.updated", mock.Anything).Return(nil)
	p := NewProducer(pub, logger.Discard())

	require.NoError(t, p.PublishWishlistUpdated(context.Background(), "sess-2", domaintest.Products()[:2]))

	var data WishlistUpdatedData
	require.NoError(t, pub.events[0].Decode(&data))
	assert.Equal(t, []int{1, 2}, data.ProductIDs)
	assert.Equal(t, 2, data.TotalItems)
}

func TestProducer_PublishError(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))
	p := NewProducer(pub, logger.Discard())

	err := p.PublishWishlistUpdated(context.Background(), "s", nil)
	assert.ErrorContains(t, err, "broker down")
}

func TestProducer_ObserversSwallowErrors(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))
	p := NewProducer(pub, logger.Discard())

	assert.NotPanics(t, func() {
		p.CartObserver("s")(context.Background(), nil)
		p.WishlistObserver("s")(context.Background(), nil)
	})
	pub.AssertNumberOfCalls(t, "Publish", 2)
}
