package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ChannelMock struct{ mock.Mock }

func (m *ChannelMock) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, mandatory, immediate, msg).Error(0)
}

func TestPublisher_Publish(t *testing.T) {
	ch := new(ChannelMock)
	ch.On("Publish", "favorites", FavoriteAdded, false, false, mock.MatchedBy(func(msg amqp.Publishing) bool {
		var got map[string]string
		if err := json.Unmarshal(msg.Body, &got); err != nil {
			return false
		}
		return msg.ContentType == "application/json" &&
			msg.DeliveryMode == amqp.Persistent &&
			got["fk_film"] == "abc"
	})).Return(nil).Once()

	p := NewPublisher(ch, "favorites")
	err := p.Publish(context.Background(), FavoriteAdded, map[string]string{"fk_film": "abc"})
	require.NoError(t, err)
	ch.AssertExpectations(t)
}

func TestPublisher_PublishErrors(t *testing.T) {
	t.Run("ошибка канала", func(t *testing.T) {
		ch := new(ChannelMock)
		ch.On("Publish", mock.Anything, mock.Anything, false, false, mock.Anything).
			Return(errors.New("channel closed")).Once()

		err := NewPublisher(ch, "favorites").Publish(context.Background(), FavoriteRemoved, struct{}{})
		assert.ErrorContains(t, err, "events.Publish")
	})

	t.Run("неподдерживаемый payload", func(t *testing.T) {
		ch := new(ChannelMock)
		err := NewPublisher(ch, "favorites").Publish(context.Background(), FavoriteAdded, make(chan int))
		assert.Error(t, err)
		ch.AssertNotCalled(t, "Publish")
	})

	t.Run("отмененный контекст", func(t *testing.T) {
		ch := new(ChannelMock)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := NewPublisher(ch, "favorites").Publish(ctx, FavoriteAdded, struct{}{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NoopPublisher{}.Publish(context.Background(), FavoriteAdded, nil))
}

type TopologyMock struct{ mock.Mock }

func (m *TopologyMock) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return m.Called(name, kind).Error(0)
}

func (m *TopologyMock) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	return amqp.Queue{Name: name}, m.Called(name).Error(0)
}

func (m *TopologyMock) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	return m.Called(name, key, exchange).Error(0)
}

func (m *TopologyMock) Close() error {
	return m.Called().Error(0)
}

func TestDeclareTopology(t *testing.T) {
	brokerErr := errors.New("access refused")

	tests := []struct {
		name      string
		setup     func(m *TopologyMock)
		wantErr   error
		wantClose bool
	}{
		{
			name: "exchange и очередь объявлены",
			setup: func(m *TopologyMock) {
				m.On("ExchangeDeclare", "favorites", "topic").Return(nil).Once()
				m.On("QueueDeclare", AuditQueue).Return(nil).Once()
				m.On("QueueBind", AuditQueue, "favorite.*", "favorites").Return(nil).Once()
			},
		},
		{
			name: "ошибка объявления exchange",
			setup: func(m *TopologyMock) {
				m.On("ExchangeDeclare", "favorites", "topic").Return(brokerErr).Once()
				m.On("Close").Return(nil).Once()
			},
			wantErr:   brokerErr,
			wantClose: true,
		},
		{
			name: "ошибка объявления очереди",
			setup: func(m *TopologyMock) {
				m.On("ExchangeDeclare", "favorites", "topic").Return(nil).Once()
				m.On("QueueDeclare", AuditQueue).Return(brokerErr).Once()
				m.On("Close").Return(nil).Once()
			},
			wantErr:   brokerErr,
			wantClose: true,
		},
		{
			name: "ошибка привязки очереди",
			setup: func(m *TopologyMock) {
				m.On("ExchangeDeclare", "favorites", "topic").Return(nil).Once()
				m.On("QueueDeclare", AuditQueue).Return(nil).Once()
				m.On("QueueBind", AuditQueue, "favorite.*", "favorites").Return(brokerErr).Once()
				m.On("Close").Return(nil).Once()
			},
			wantErr:   brokerErr,
			wantClose: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := new(TopologyMock)
			tt.setup(ch)

			err := declareTopology(ch, "favorites")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			if !tt.wantClose {
				ch.AssertNotCalled(t, "Close")
			}
			ch.AssertExpectations(t)
		})
	}
}
