package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/ecopoint-service/internal/domain"
	"github.com/ecopoint-service/internal/domain/repository"
	"github.com/ecopoint-service/internal/geo"
	"github.com/ecopoint-service/internal/repository/postgres/testhelpers"
)

// PointRepositorySuite tests the point repository with a real database
type PointRepositorySuite struct {
	suite.Suite
	testDB  *testhelpers.TestDB
	repo    repository.PointStore
	indexer *geo.Indexer
	ctx     context.Context
}

func (s *PointRepositorySuite) SetupSuite() {
	s.testDB = testhelpers.SetupTestDB(s.T())
	s.ctx = context.Background()

	s.Require().NoError(testhelpers.ApplyMigrations(s.ctx, s.testDB.DB, s.testDB.Logger))

	s.repo = testhelpers.NewPointRepositoryForTest(s.testDB.DB, s.testDB.Logger)
	s.indexer = geo.NewIndexer(geo.DefaultPrecision)
}

func (s *PointRepositorySuite) TearDownSuite() {
	if s.testDB != nil {
		_ = s.testDB.Cleanup(context.Background())
		s.testDB.Close()
	}
}

func (s *PointRepositorySuite) SetupTest() {
	s.Require().NoError(s.testDB.Cleanup(s.ctx))
}

func (s *PointRepositorySuite) point(id string, lat, lng float64, items ...string) *domain.CollectionPoint {
	p := &domain.CollectionPoint{ID: id, Name: "Ecoponto " + id, AcceptedItems: items}
	s.indexer.Locate(p, lat, lng)
	return p
}

func (s *PointRepositorySuite) TestUpsertAndQueryRange() {
	near := s.point("near", -23.5503, -46.6339, "papel", "vidro", "metal")
	far := s.point("far", -22.9068, -43.1729, "papel")
	s.Require().NoError(s.repo.Upsert(s.ctx, []*domain.CollectionPoint{near, far}))

	ranges, err := s.indexer.QueryBounds(&domain.Coordinate{Lat: -23.55, Lng: -46.63}, 5000)
	s.Require().NoError(err)

	var found []*domain.CollectionPoint
	for _, r := range ranges {
		points, err := s.repo.QueryRange(s.ctx, r.Lower, r.Upper)
		s.Require().NoError(err)
		found = append(found, points...)
	}

	s.Require().Len(found, 1)
	s.Equal("near", found[0].ID)
	s.Equal([]string{"metal", "papel", "vidro"}, found[0].AcceptedItems)
	s.False(found[0].ImportedAt.IsZero())
}

func (s *PointRepositorySuite) TestInclusiveBoundsAndOrdering() {
	a := s.point("b", -23.5503, -46.6339, "papel")
	b := s.point("a", -23.5503, -46.6339, "papel")
	s.Require().NoError(s.repo.Upsert(s.ctx, []*domain.CollectionPoint{a, b}))

	points, err := s.repo.QueryRange(s.ctx, a.Geohash, a.Geohash)
	s.Require().NoError(err)
	s.Require().Len(points, 2)
	s.Equal("a", points[0].ID)
	s.Equal("b", points[1].ID)
}

func (s *PointRepositorySuite) TestUpsertReplacesGeohash() {
	p := s.point("moving", -23.5503, -46.6339, "papel")
	s.Require().NoError(s.repo.Upsert(s.ctx, []*domain.CollectionPoint{p}))
	old := p.Geohash

	s.indexer.Locate(p, -22.9068, -43.1729)
	s.Require().NoError(s.repo.Upsert(s.ctx, []*domain.CollectionPoint{p}))

	points, err := s.repo.QueryRange(s.ctx, old, old)
	s.Require().NoError(err)
	s.Empty(points)

	points, err = s.repo.QueryRange(s.ctx, p.Geohash, p.Geohash)
	s.Require().NoError(err)
	s.Len(points, 1)
}

func (s *PointRepositorySuite) TestSkipsInvalidRows() {
	s.Require().NoError(testhelpers.InsertRawPoints(s.ctx, s.testDB.DB, []testhelpers.PointFixture{
		{ID: "bad-hash", Name: "Broken", Latitude: -23.55, Longitude: -46.63, Geohash: "6GYF!", Items: "{papel}"},
	}))

	points, err := s.repo.QueryRange(s.ctx, "", "~")
	s.Require().NoError(err)
	s.Empty(points)
}

func TestPointRepositorySuite(t *testing.T) {
	suite.Run(t, new(PointRepositorySuite))
}
