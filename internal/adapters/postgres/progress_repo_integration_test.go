//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/example/gamebook/internal/adapters/postgres"
	"github.com/example/gamebook/internal/models"
)

type ProgressRepositorySuite struct {
	suite.Suite
	ctx       context.Context
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool
	repo      *postgres.ProgressRepository
}

func (s *ProgressRepositorySuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.container, err = tcpostgres.Run(s.ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("gamebook_test"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2*time.Minute),
		),
	)
	require.NoError(s.T(), err, "failed to start postgres container")

	dsn, err := s.container.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	s.pool, err = postgres.Connect(s.ctx, dsn, 4)
	require.NoError(s.T(), err)

	logger := zap.NewNop()
	require.NoError(s.T(), postgres.NewMigrator(s.pool, logger).Up(s.ctx))

	s.repo = postgres.NewProgressRepository(s.pool, logger)
}

func (s *ProgressRepositorySuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *ProgressRepositorySuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, "TRUNCATE user_progress")
	s.Require().NoError(err)
}

func (s *ProgressRepositorySuite) TestGetMissing() {
	_, err := s.repo.Get(s.ctx, "reader-1", 1)
	s.ErrorIs(err, models.ErrNotFound)
}

func (s *ProgressRepositorySuite) TestSaveGetRoundTrip() {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	progress := &models.Progress{
		UserID:         "reader-1",
		BookID:         7,
		CurrentEntryID: "END",
		VisitedEntries: []string{"START", "END"},
		Choices:        []models.ChoiceRecord{{EntryID: "START", TargetID: "END", Timestamp: now}},
		CompletedAt:    &now,
		UpdatedAt:      now,
	}
	s.Require().NoError(s.repo.Save(s.ctx, progress))

	got, err := s.repo.Get(s.ctx, "reader-1", 7)
	s.Require().NoError(err)
	s.Equal("END", got.CurrentEntryID)
	s.Equal([]string{"START", "END"}, got.VisitedEntries)
	s.Require().Len(got.Choices, 1)
	s.Equal("END", got.Choices[0].TargetID)
	s.Require().NotNil(got.CompletedAt)
	s.True(got.CompletedAt.Equal(now))
}

func (s *ProgressRepositorySuite) TestSaveOverwritesAndDelete() {
	s.Require().NoError(s.repo.Save(s.ctx, &models.Progress{UserID: "r", BookID: 1, CurrentEntryID: "A"}))
	s.Require().NoError(s.repo.Save(s.ctx, &models.Progress{UserID: "r", BookID: 1, CurrentEntryID: "B"}))

	got, err := s.repo.Get(s.ctx, "r", 1)
	s.Require().NoError(err)
	s.Equal("B", got.CurrentEntryID)
	s.Empty(got.Choices)

	s.Require().NoError(s.repo.Delete(s.ctx, "r", 1))
	_, err = s.repo.Get(s.ctx, "r", 1)
	s.ErrorIs(err, models.ErrNotFound)
}

func (s *ProgressRepositorySuite) TestMigratorVersion() {
	version, dirty, err := postgres.NewMigrator(s.pool, zap.NewNop()).Version(s.ctx)
	s.Require().NoError(err)
	s.False(dirty)
	s.EqualValues(2, version)
}

func TestProgressRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	suite.Run(t, new(ProgressRepositorySuite))
}
