//go:build integration

package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"coregw/internal/subscriber/models"
	"coregw/internal/subscriber/store"
	"coregw/pkg/platform/sentinel"
	"coregw/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) TearDownSuite() {
	_ = s.postgres.DB.Close()
	_ = s.postgres.Container.Terminate(context.Background())
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(context.Background()))
}

func newTestRecord(imsi, name string, slices ...models.Slice) *models.SubscriberRecord {
	if len(slices) == 0 {
		slices = []models.Slice{{Sst: 1, Sd: "000001", Session: []models.Session{{Name: "internet"}}}}
	}
	rec := &models.SubscriberRecord{
		IMSI: imsi,
		Name: name,
		Security: &models.Security{
			K:   "465b5ce8b199b49faa5f0a2ee238a6bc",
			Amf: "8000",
			Opc: "e8ed289deba952e4283b54e88e6183ca",
		},
		Slices: slices,
	}
	rec.ApplyDefaults()
	return rec
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	rec := newTestRecord("001010000000001", "alpha")

	s.Require().NoError(s.store.Create(ctx, rec))

	found, err := s.store.GetByIMSI(ctx, rec.IMSI)
	s.Require().NoError(err)
	s.Equal(rec, found)
}

func (s *PostgresStoreSuite) TestNotFoundAndDuplicate() {
	ctx := context.Background()

	_, err := s.store.GetByIMSI(ctx, "999990000000000")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	rec := newTestRecord("001010000000001", "alpha")
	s.Require().NoError(s.store.Create(ctx, rec))
	s.Require().ErrorIs(s.store.Create(ctx, rec), sentinel.ErrDuplicate)

	s.Require().ErrorIs(s.store.ReplaceByIMSI(ctx, "999990000000000", rec), sentinel.ErrNotFound)
	s.Require().ErrorIs(s.store.DeleteByIMSI(ctx, "999990000000000"), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestSliceFilterMatchesWithinOneSlice() {
	ctx := context.Background()
	sliceA := models.Slice{Sst: 1, Sd: "000001", Session: []models.Session{{Name: "internet"}}}
	sliceB := models.Slice{Sst: 2, Sd: "abcdef", Session: []models.Session{{Name: "ims"}}}

	s.Require().NoError(s.store.Create(ctx, newTestRecord("001010000000001", "Alice Phone", sliceA)))
	s.Require().NoError(s.store.Create(ctx, newTestRecord("001010000000002", "Bob Phone", sliceB)))
	s.Require().NoError(s.store.Create(ctx, newTestRecord("001010000000003", "Alice Tablet", sliceA, sliceB)))

	s.Run("name filter is case-insensitive", func() {
		records, err := s.store.List(ctx, store.Filter{Name: "ALICE"}, 10, 0)
		s.Require().NoError(err)
		s.Len(records, 2)
	})

	s.Run("sst filter", func() {
		sst := 2
		records, err := s.store.List(ctx, store.Filter{Sst: &sst}, 10, 0)
		s.Require().NoError(err)
		s.Len(records, 2)
	})

	s.Run("sst and sd must hit the same slice", func() {
		sst := 1
		records, err := s.store.List(ctx, store.Filter{Sst: &sst, Sd: "abcdef"}, 10, 0)
		s.Require().NoError(err)
		s.Empty(records)

		sst = 2
		records, err = s.store.List(ctx, store.Filter{Sst: &sst, Sd: "abcdef"}, 10, 0)
		s.Require().NoError(err)
		s.Len(records, 2)
	})
}

func (s *PostgresStoreSuite) TestListPagination() {
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		imsi := fmt.Sprintf("00101000000000%d", i)
		s.Require().NoError(s.store.Create(ctx, newTestRecord(imsi, "ue")))
	}

	records, err := s.store.List(ctx, store.Filter{}, 2, 2)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal("001010000000003", records[0].IMSI)
	s.Equal("001010000000004", records[1].IMSI)
}

// TestConcurrentCreateUniqueViolation verifies that concurrent registration
// of the same IMSI results in exactly one success; the primary key is the
// final arbiter.
func (s *PostgresStoreSuite) TestConcurrentCreateUniqueViolation() {
	ctx := context.Background()
	const goroutines = 50

	var wg sync.WaitGroup
	var successCount atomic.Int32
	var duplicateCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			rec := newTestRecord("001010000000099", "concurrent")
			err := s.store.Create(ctx, rec)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, sentinel.ErrDuplicate):
				duplicateCount.Add(1)
			default:
				s.T().Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load())
	s.Equal(int32(goroutines-1), duplicateCount.Load())
}
