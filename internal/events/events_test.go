package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, e Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockPublisher) Close() error { return m.Called().Error(0) }

func TestNewPublisher(t *testing.T) {
	assert.IsType(t, Noop{}, NewPublisher(nil, "topic"))
	assert.IsType(t, &KafkaPublisher{}, NewPublisher([]string{"localhost:9092"}, "topic"))
}

func TestNewEvent(t *testing.T) {
	e := NewEvent(OrderCreated, "ORD-1", map[string]any{"total": "10.00"})
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, OrderCreated, e.Type)
	assert.Equal(t, "ORD-1", e.Key)
	assert.False(t, e.OccurredAt.IsZero())
}

func TestEmit_LogsFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e Event) bool { return e.Type == KYCReviewed })).
		Return(errors.New("broker down"))

	Emit(context.Background(), pub, zap.New(core), NewEvent(KYCReviewed, "KYC-1", nil))

	pub.AssertExpectations(t)
	assert.Equal(t, 1, logs.FilterMessage("event publish failed").Len())
}
