package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/ScentGo/internal/app"
	"github.com/utafrali/ScentGo/internal/config"
	"github.com/utafrali/ScentGo/internal/domain"
	apperrors "github.com/utafrali/ScentGo/pkg/errors"
)

type fakePerfumes struct{ rows []domain.Perfume }

func (f *fakePerfumes) List(_ context.Context, ids []string) ([]domain.Perfume, error) {
	if len(ids) == 0 {
		return f.rows, nil
	}
	var out []domain.Perfume
	for _, p := range f.rows {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f *fakePerfumes) GetByID(_ context.Context, id string) (*domain.Perfume, error) {
	for _, p := range f.rows {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, apperrors.NotFound("perfume", id)
}

type fakeReviews struct {
	mu      sync.Mutex
	ratings []domain.Rating
	created []domain.Review
}

func (f *fakeReviews) ListRatings(context.Context) ([]domain.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Rating(nil), f.ratings...), nil
}

func (f *fakeReviews) ListByPerfume(context.Context, string) ([]domain.Review, error) {
	return nil, nil
}

func (f *fakeReviews) Create(_ context.Context, rv *domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, *rv)
	f.ratings = append(f.ratings, domain.Rating{ID: rv.ID, PerfumeID: rv.PerfumeID, Rating: rv.Rating})
	return nil
}

type fakeUsers struct {
	byEmail map[string]*domain.User
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return apperrors.AlreadyExists("user", "email", u.Email)
	}
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, apperrors.NotFound("user", email)
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user", id)
}

type cliFixture struct {
	backend *app.Backend
	reviews *fakeReviews
	cfg     *config.Config
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	cfg, err := config.LoadFrom(map[string]string{})
	require.NoError(t, err)

	reviews := &fakeReviews{ratings: []domain.Rating{
		{ID: "r1", PerfumeID: "2", Rating: 4},
		{ID: "r2", PerfumeID: "2", Rating: 5},
	}}
	return &cliFixture{
		cfg:     cfg,
		reviews: reviews,
		backend: &app.Backend{
			Driver: config.BackendPostgres,
			Perfumes: &fakePerfumes{rows: []domain.Perfume{
				{ID: "1", Name: "Versace Eros", Brand: "VERSACE", Notes: []string{"mint"}},
				{ID: "2", Name: "Coco Noir", Brand: "Chanel", Notes: []string{"rose"}},
				{ID: "6", Name: "Bleu de Chanel", Brand: "Chanel", Notes: []string{"citrus"}},
			}},
			Reviews: reviews,
			Users:   &fakeUsers{byEmail: map[string]*domain.User{}},
		},
	}
}

func (f *cliFixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(deps{
		loadConfig: func() (*config.Config, error) {
			cfg := *f.cfg
			return &cfg, nil
		},
		openBackend: func(_ context.Context, cfg *config.Config, _ *slog.Logger) (*app.Backend, error) {
			f.cfg.RunMigrations = cfg.RunMigrations
			return f.backend, nil
		},
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSearch_JSONFiltersAndAggregates(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "search", "--format", "json", "CHANEL")
	require.NoError(t, err)

	var got []domain.Perfume
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, 4.5, got[0].AverageRating)
	assert.Equal(t, 2, got[0].ReviewCount)
	assert.Equal(t, "6", got[1].ID)
	assert.Equal(t, 0.0, got[1].AverageRating)
}

func TestSearch_TextTable(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "search")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Versace Eros")
	assert.Contains(t, out, "Bleu de Chanel")
}

func TestSearch_NoMatchIsEmpty(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "search", "--format", "json", "oud")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}

func TestStats(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "stats", "2", "--format", "json")
	require.NoError(t, err)
	var got []domain.Perfume
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, 4.5, got[0].AverageRating)

	_, err = f.run(t, "stats", "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSeed_CreatesUserOnceAndReviews(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "seed", "--format", "json", "--per-perfume", "1")
	require.NoError(t, err)
	var first SeedResult
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	assert.True(t, first.UserCreated)
	assert.Equal(t, 3, first.Perfumes)
	assert.Equal(t, 3, first.Reviews)

	out, err = f.run(t, "seed", "--format", "json", "--per-perfume", "1")
	require.NoError(t, err)
	var second SeedResult
	require.NoError(t, json.Unmarshal([]byte(out), &second))
	assert.False(t, second.UserCreated)
	assert.Equal(t, first.UserID, second.UserID)

	require.Len(t, f.reviews.created, 6)
	for _, rv := range f.reviews.created {
		assert.GreaterOrEqual(t, rv.Rating, 1)
		assert.LessOrEqual(t, rv.Rating, 5)
		assert.Equal(t, first.UserID, rv.UserID)
	}
}

func TestMigrate(t *testing.T) {
	f := newCLIFixture(t)
	f.cfg.RunMigrations = false

	out, err := f.run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")
	assert.True(t, f.cfg.RunMigrations)

	f.backend.Driver = config.BackendREST
	_, err = f.run(t, "migrate")
	assert.ErrorContains(t, err, "requires the postgres backend")
}

func TestRoot_RejectsUnknownFormat(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.run(t, "search", "--format", "yaml")
	assert.ErrorContains(t, err, "invalid format")
}
