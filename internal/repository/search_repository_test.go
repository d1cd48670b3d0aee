package repository_test

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/nikolayk812/shoplocal/internal/domain"
	"github.com/nikolayk812/shoplocal/internal/port"
	"github.com/nikolayk812/shoplocal/internal/repository"
	"github.com/nikolayk812/shoplocal/internal/store"
)

type searchRepositorySuite struct {
	suite.Suite

	repo port.SearchHistoryRepository
	pool *pgxpool.Pool
}

// entry point to run the tests in the suite
func TestSearchRepositorySuite(t *testing.T) {
	suite.Run(t, new(searchRepositorySuite))
}

// before all tests in the suite
func (suite *searchRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	_, connStr, err := startPostgres(ctx)
	suite.NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.NoError(err)

	st, err := store.New(suite.pool)
	suite.NoError(err)

	suite.repo, err = repository.NewSearchHistory(st, zerolog.Nop())
	suite.NoError(err)
}

// after all tests in the suite
func (suite *searchRepositorySuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
}

func (suite *searchRepositorySuite) TestSaveQuery() {
	suite.Run("first save: record created, one broadcast", func() {
		t := suite.T()
		ctx := t.Context()
		defer suite.deleteAll()

		var events []domain.HistoryChanged
		token := suite.repo.Subscribe(func(e domain.HistoryChanged) { events = append(events, e) })
		defer suite.repo.Unsubscribe(token)

		filters := randomFilters()
		require.NoError(t, suite.repo.SaveQuery(ctx, filters))

		records := suite.repo.GetRecent(ctx, 0)
		require.Len(t, records, 1)
		assert.Equal(t, filters, records[0].Filters())
		assert.False(t, records[0].LastAccess.IsZero())

		require.Len(t, events, 1)
		assert.Equal(t, filters, events[0].Query.Filters())
	})

	suite.Run("equivalent save: single record, last access bumped", func() {
		t := suite.T()
		ctx := t.Context()
		defer suite.deleteAll()

		filters := randomFilters()
		require.NoError(t, suite.repo.SaveQuery(ctx, filters))

		first := suite.repo.GetRecent(ctx, 0)
		require.Len(t, first, 1)

		time.Sleep(10 * time.Millisecond)
		require.NoError(t, suite.repo.SaveQuery(ctx, filters))

		second := suite.repo.GetRecent(ctx, 0)
		require.Len(t, second, 1)
		assert.True(t, second[0].LastAccess.After(first[0].LastAccess))
		assert.Equal(t, filters, second[0].Filters())
	})

	suite.Run("different filters: separate records", func() {
		t := suite.T()
		ctx := t.Context()
		defer suite.deleteAll()

		filters := domain.RangeFilters(gofakeit.ProductName(), 10, 100, domain.UnsetCategory)
		narrower := domain.RangeFilters(filters.Title, 10, 50, domain.UnsetCategory)

		require.NoError(t, suite.repo.SaveQuery(ctx, filters))
		require.NoError(t, suite.repo.SaveQuery(ctx, narrower))

		assert.Len(t, suite.repo.GetRecent(ctx, 0), 2)
	})

	suite.Run("no search text: no record, no broadcast", func() {
		t := suite.T()
		ctx := t.Context()
		defer suite.deleteAll()

		var events []domain.HistoryChanged
		token := suite.repo.Subscribe(func(e domain.HistoryChanged) { events = append(events, e) })
		defer suite.repo.Unsubscribe(token)

		for _, title := range []string{"", "   "} {
			require.NoError(t, suite.repo.SaveQuery(ctx, domain.RangeFilters(title, 0, 100, domain.UnsetCategory)))
		}

		assert.Empty(t, suite.repo.GetRecent(ctx, 0))
		assert.Empty(t, events)
	})

	suite.Run("both price modes set: error, no broadcast", func() {
		t := suite.T()
		ctx := t.Context()
		defer suite.deleteAll()

		var events []domain.HistoryChanged
		token := suite.repo.Subscribe(func(e domain.HistoryChanged) { events = append(events, e) })
		defer suite.repo.Unsubscribe(token)

		filters := domain.ProductFilters{
			Title:       gofakeit.ProductName(),
			CategoryID:  domain.UnsetCategory,
			TargetPrice: 50,
			MaxPrice:    100,
		}

		err := suite.repo.SaveQuery(ctx, filters)
		require.ErrorContains(t, err, "mutually exclusive")
		assert.Empty(t, events)
		assert.Empty(t, suite.repo.GetRecent(ctx, 0))
	})
}

func (suite *searchRepositorySuite) TestGetRecent() {
	t := suite.T()
	ctx := t.Context()
	defer suite.deleteAll()

	saved := make([]domain.ProductFilters, 0, 7)
	for i := 0; i < 7; i++ {
		filters := randomFilters()
		require.NoError(t, suite.repo.SaveQuery(ctx, filters))
		saved = append(saved, filters)
		time.Sleep(5 * time.Millisecond)
	}

	// default limit keeps the five most recent, newest first
	records := suite.repo.GetRecent(ctx, 0)
	require.Len(t, records, repository.DefaultRecentLimit)
	for i, record := range records {
		assert.Equal(t, saved[len(saved)-1-i], record.Filters())
	}
	for i := 1; i < len(records); i++ {
		assert.True(t, records[i-1].LastAccess.After(records[i].LastAccess))
	}

	records = suite.repo.GetRecent(ctx, 2)
	require.Len(t, records, 2)
	assert.Equal(t, saved[6], records[0].Filters())
	assert.Equal(t, saved[5], records[1].Filters())
}

func (suite *searchRepositorySuite) deleteAll() {
	_, err := suite.pool.Exec(suite.T().Context(), "TRUNCATE TABLE search_queries")
	suite.NoError(err)
}

func randomFilters() domain.ProductFilters {
	title := gofakeit.ProductName()
	categoryID := int64(gofakeit.IntRange(1, 20))

	if gofakeit.Bool() {
		return domain.ExactPriceFilters(title, int64(gofakeit.IntRange(1, 1000)), categoryID)
	}

	minPrice := int64(gofakeit.IntRange(1, 500))
	return domain.RangeFilters(title, minPrice, minPrice+int64(gofakeit.IntRange(1, 500)), categoryID)
}
