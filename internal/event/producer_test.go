package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/ScentGo/internal/domain"
	pkgkafka "github.com/utafrali/ScentGo/pkg/kafka"
	"github.com/utafrali/ScentGo/pkg/logger"
)

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockWriter) Close() error {
	return m.Called().Error(0)
}

func newTestProducer(w *mockWriter) *Producer {
	return NewProducer(pkgkafka.NewProducerWithWriter(w, []string{"localhost:9092"}, logger.Discard()), logger.Discard())
}

func decodeSingle(t *testing.T, msgs []kafka.Message) *pkgkafka.Event {
	t.Helper()
	require.Len(t, msgs, 1)
	var evt pkgkafka.Event
	require.NoError(t, json.Unmarshal(msgs[0].Value, &evt))
	return &evt
}

func TestProducer_PublishUserRegistered(t *testing.T) {
	w := new(mockWriter)
	var sent []kafka.Message
	w.On("WriteMessages", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).([]kafka.Message)
	}).Return(nil).Once()

	ctx := logger.WithCorrelationID(context.Background(), "corr-9")
	err := newTestProducer(w).PublishUserRegistered(ctx, &domain.User{ID: "u1", Email: "jo@example.com", Username: "jo"})
	require.NoError(t, err)

	evt := decodeSingle(t, sent)
	assert.Equal(t, TopicUserRegistered, sent[0].Topic)
	assert.Equal(t, "corr-9", evt.CorrelationID)

	var data UserRegisteredData
	require.NoError(t, json.Unmarshal(evt.Data, &data))
	assert.Equal(t, UserRegisteredData{ID: "u1", Email: "jo@example.com", Username: "jo"}, data)
	w.AssertExpectations(t)
}

func TestProducer_PublishFavoriteToggled(t *testing.T) {
	w := new(mockWriter)
	var sent []kafka.Message
	w.On("WriteMessages", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).([]kafka.Message)
	}).Return(nil).Once()

	require.NoError(t, newTestProducer(w).PublishFavoriteToggled(context.Background(), "p1", true, 3))

	evt := decodeSingle(t, sent)
	assert.Equal(t, "p1", string(sent[0].Key))
	var data FavoriteToggledData
	require.NoError(t, json.Unmarshal(evt.Data, &data))
	assert.Equal(t, FavoriteToggledData{PerfumeID: "p1", Favorite: true, SetSize: 3}, data)
}

func TestProducer_PublishError(t *testing.T) {
	w := new(mockWriter)
	w.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("leader not available"))

	err := newTestProducer(w).PublishFavoriteToggled(context.Background(), "p1", false, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "favorite.toggled")
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.PublishUserRegistered(context.Background(), &domain.User{}))
	assert.NoError(t, p.PublishFavoriteToggled(context.Background(), "p1", true, 1))
}
