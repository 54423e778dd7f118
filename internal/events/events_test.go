package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAMQPChannel struct {
	mock.Mock
}

func (m *MockAMQPChannel) PublishWithContext(
	ctx context.Context,
	exchange, key string,
	mandatory, immediate bool,
	msg amqp.Publishing,
) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func (m *MockAMQPChannel) Close() error { return nil }

func newTestPublisher(ch *MockAMQPChannel) *RabbitPublisher {
	return newRabbitPublisher(nil, ch, "newsroom.events", zerolog.Nop())
}

func TestPublish_RoutesByEventName(t *testing.T) {
	ch := &MockAMQPChannel{}
	pub := newTestPublisher(ch)

	ch.On("PublishWithContext",
		mock.Anything,
		"newsroom.events",
		ArticlePublished,
		false,
		false,
		mock.AnythingOfType("amqp091.Publishing"),
	).Return(nil).Once()

	err := pub.Publish(context.Background(), ArticlePublished, map[string]string{"slug": "schulfest"})
	require.NoError(t, err)
	ch.AssertExpectations(t)
}

func TestPublish_MessageBody(t *testing.T) {
	ch := &MockAMQPChannel{}
	pub := newTestPublisher(ch)

	var sent amqp.Publishing
	ch.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, false, false, mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(5).(amqp.Publishing)
		}).
		Return(nil).Once()

	require.NoError(t, pub.Publish(context.Background(), InviteIssued, map[string]string{"email": "neu@schule.de"}))

	assert.Equal(t, "application/json", sent.ContentType)
	assert.Equal(t, amqp.Persistent, sent.DeliveryMode)

	var msg struct {
		Event   string            `json:"event"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(sent.Body, &msg))
	assert.Equal(t, InviteIssued, msg.Event)
	assert.Equal(t, "neu@schule.de", msg.Payload["email"])
}

func TestPublish_ChannelError(t *testing.T) {
	ch := &MockAMQPChannel{}
	pub := newTestPublisher(ch)

	ch.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, false, false, mock.Anything).
		Return(errors.New("channel closed")).Once()

	err := pub.Publish(context.Background(), SubmissionCreated, nil)
	assert.ErrorContains(t, err, "channel closed")
}

func TestNopPublisher(t *testing.T) {
	pub := NewNopPublisher(zerolog.Nop())
	assert.NoError(t, pub.Publish(context.Background(), ArticlePublished, nil))
	pub.Close()
}
