package favorite

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/ScentGo/internal/domain"
	"github.com/utafrali/ScentGo/internal/storage"
	"github.com/utafrali/ScentGo/internal/storage/memory"
	apperrors "github.com/utafrali/ScentGo/pkg/errors"
	"github.com/utafrali/ScentGo/pkg/logger"
)

type failingStore struct {
	storage.Store
	setErr error
	getErr error
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Store.Set(ctx, key, value)
}

func (f *failingStore) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.Store.Get(ctx, key)
}

func savedPayload(t *testing.T, kv storage.Store) string {
	t.Helper()
	v, err := kv.Get(context.Background(), domain.FavoriteStorageKey)
	require.NoError(t, err)
	return v
}

func TestToggle_Scenario(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	s := New(kv, logger.Discard())
	s.Hydrate(ctx)
	assert.Empty(t, s.IDs())

	fav, ids, err := s.Toggle(ctx, "x")
	require.NoError(t, err)
	assert.True(t, fav)
	assert.Equal(t, []string{"x"}, ids)

	_, ids, err = s.Toggle(ctx, "y")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, ids)

	fav, ids, err = s.Toggle(ctx, "x")
	require.NoError(t, err)
	assert.False(t, fav)
	assert.Equal(t, []string{"y"}, ids)
	assert.JSONEq(t, `{"kind":"identifier-set","members":["y"]}`, savedPayload(t, kv))
}

func TestToggle_TwiceRestoresMembership(t *testing.T) {
	ctx := context.Background()
	s := New(memory.New(), logger.Discard())
	_, _, _ = s.Toggle(ctx, "a")
	before := s.IDs()

	_, _, _ = s.Toggle(ctx, "b")
	_, _, _ = s.Toggle(ctx, "b")
	assert.Equal(t, before, s.IDs())

	_, _, _ = s.Toggle(ctx, "a")
	_, _, _ = s.Toggle(ctx, "a")
	assert.Equal(t, before, s.IDs())
	assert.True(t, s.Contains("a"))
	assert.Equal(t, 1, s.Len())
}

func TestToggle_EmptyID(t *testing.T) {
	s := New(memory.New(), logger.Discard())
	_, _, err := s.Toggle(context.Background(), "  ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestHydrate(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	require.NoError(t, kv.Set(ctx, domain.FavoriteStorageKey, `{"kind":"identifier-set","members":["b","a"]}`))

	s := New(kv, logger.Discard())
	s.Hydrate(ctx)
	assert.Equal(t, []string{"a", "b"}, s.IDs())
}

func TestHydrate_CorruptPayloadLogsAndStartsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	require.NoError(t, kv.Set(ctx, domain.FavoriteStorageKey, `["a","b"]`))

	var buf bytes.Buffer
	s := New(kv, logger.NewWithWriter("test", "warn", &buf))
	s.Hydrate(ctx)

	assert.Empty(t, s.IDs())
	assert.Contains(t, buf.String(), "discarding corrupt favorite set")
}

func TestHydrate_ReadErrorStartsEmpty(t *testing.T) {
	var buf bytes.Buffer
	s := New(&failingStore{Store: memory.New(), getErr: errors.New("disk gone")}, logger.NewWithWriter("test", "warn", &buf))
	s.Hydrate(context.Background())

	assert.Zero(t, s.Len())
	assert.Contains(t, buf.String(), "failed to read favorite set")
}

func TestToggle_PersistFailureKeepsMemoryState(t *testing.T) {
	var buf bytes.Buffer
	s := New(&failingStore{Store: memory.New(), setErr: errors.New("read-only")}, logger.NewWithWriter("test", "warn", &buf))

	fav, ids, err := s.Toggle(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, fav)
	assert.Equal(t, []string{"p1"}, ids)
	assert.True(t, s.Contains("p1"))
	assert.Contains(t, buf.String(), "failed to persist favorite set")
}

func TestSubscribe_NotifiedBeforePersist(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	s := New(kv, logger.Discard())

	var changes []Change
	unsubscribe := s.Subscribe(func(ctx context.Context, c Change) {
		changes = append(changes, c)
		_, err := kv.Get(ctx, domain.FavoriteStorageKey)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.True(t, s.Contains(c.ID))
	})

	_, _, err := s.Toggle(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, Change{ID: "p1", Favorite: true, IDs: []string{"p1"}}, changes[0])

	unsubscribe()
	unsubscribe()
	_, _, _ = s.Toggle(ctx, "p1")
	assert.Len(t, changes, 1)
}

func TestToggle_ConcurrentTogglesAreSerialized(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	s := New(kv, logger.Discard())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = s.Toggle(ctx, "p1")
		}()
	}
	wg.Wait()

	assert.False(t, s.Contains("p1"))
	assert.JSONEq(t, `{"kind":"identifier-set","members":[]}`, savedPayload(t, kv))
}

func TestNewToggleCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter, err := NewToggleCounter(reg)
	require.NoError(t, err)

	s := New(memory.New(), logger.Discard())
	s.Subscribe(counter)
	ctx := context.Background()
	_, _, _ = s.Toggle(ctx, "p1")
	_, _, _ = s.Toggle(ctx, "p2")
	_, _, _ = s.Toggle(ctx, "p1")

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)

	got := map[string]float64{}
	for _, m := range families[0].GetMetric() {
		got[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"add": 2, "remove": 1}, got)

	_, err = NewToggleCounter(reg)
	assert.Error(t, err)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockPublisher) PublishFavoriteToggled(ctx context.Context, perfumeID string, favorite bool, setSize int) error {
	return m.Called(ctx, perfumeID, favorite, setSize).Error(0)
}

func TestPublishChanges(t *testing.T) {
	pub := new(mockPublisher)
	done := make(chan struct{})
	pub.On("PublishFavoriteToggled", mock.Anything, "p1", true, 1).
		Run(func(mock.Arguments) { close(done) }).
		Return(errors.New("broker down")).Once()

	s := New(memory.New(), logger.Discard())
	s.Subscribe(PublishChanges(pub, logger.Discard()))

	_, _, err := s.Toggle(context.Background(), "p1")
	require.NoError(t, err)
	<-done
	pub.AssertExpectations(t)
}
