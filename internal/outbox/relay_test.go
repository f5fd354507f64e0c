package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) FetchPending(ctx context.Context, limit int) ([]Record, error) {
	args := m.Called(ctx, limit)
	recs, _ := args.Get(0).([]Record)
	return recs, args.Error(1)
}

func (m *mockStore) MarkSent(ctx context.Context, ids []int64) error {
	return m.Called(ctx, ids).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, records []Record) error {
	return m.Called(ctx, records).Error(0)
}

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *recordingWriter) Close() error { return nil }

func records(ids ...int64) []Record {
	out := make([]Record, len(ids))
	for i, id := range ids {
		out[i] = Record{ID: id, EventID: uuid.New(), Topic: "storefront.orders", Key: "k", Payload: []byte(`{}`)}
	}
	return out
}

func TestRelay_RunOnce(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	pub := new(mockPublisher)
	m := metrics.New()

	batch := records(1, 2, 3)
	store.On("FetchPending", ctx, 10).Return(batch, nil)
	pub.On("Publish", ctx, batch).Return(nil)
	store.On("MarkSent", ctx, []int64{1, 2, 3}).Return(nil)

	n, err := NewRelay(store, pub, 10, time.Second, m, zerolog.Nop()).RunOnce(ctx)

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.OutboxPublished))
	store.AssertExpectations(t)
}

func TestRelay_RunOnce_PublishFailureLeavesRowsPending(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	pub := new(mockPublisher)
	m := metrics.New()

	batch := records(1)
	store.On("FetchPending", ctx, 10).Return(batch, nil)
	pub.On("Publish", ctx, batch).Return(errors.New("broker down"))

	_, err := NewRelay(store, pub, 10, time.Second, m, zerolog.Nop()).RunOnce(ctx)

	require.Error(t, err)
	store.AssertNotCalled(t, "MarkSent", mock.Anything, mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxFailures))
}

func TestRelay_RunOnce_Empty(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	pub := new(mockPublisher)
	store.On("FetchPending", ctx, 10).Return(nil, nil)

	n, err := NewRelay(store, pub, 10, time.Second, metrics.New(), zerolog.Nop()).RunOnce(ctx)

	require.NoError(t, err)
	assert.Zero(t, n)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestRelay_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := new(mockStore)
	store.On("FetchPending", mock.Anything, 5).Return(nil, nil)

	done := make(chan error, 1)
	go func() {
		done <- NewRelay(store, new(mockPublisher), 5, 10*time.Millisecond, metrics.New(), zerolog.Nop()).Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	batch := records(4, 5)

	require.NoError(t, NewKafkaPublisher(w).Publish(context.Background(), batch))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "storefront.orders", w.msgs[0].Topic)
	assert.Equal(t, []byte("k"), w.msgs[0].Key)
	assert.Equal(t, "event_id", w.msgs[1].Headers[0].Key)
	assert.Equal(t, []byte(batch[1].EventID.String()), w.msgs[1].Headers[0].Value)
}
