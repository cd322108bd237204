package firestore

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecopoint-service/internal/domain"
	"github.com/ecopoint-service/internal/geo"
	"github.com/ecopoint-service/internal/pkg/validator"
)

func TestPointDocument_RoundTrip(t *testing.T) {
	p := &domain.CollectionPoint{
		ID:             "abc",
		Name:           "Ecoponto Vila Mariana",
		Address:        "Rua Dr. Diogo de Faria, 1",
		PostalCode:     "04037-000",
		Phone:          "(11) 5555-0000",
		OperatingHours: "Seg a Sab, 6h às 22h",
		Latitude:       -23.59,
		Longitude:      -46.64,
		Geohash:        "6gyckk0000",
		AcceptedItems:  []string{"Vidro", "papel"},
	}

	doc := fromDomain(p)
	assert.False(t, doc.ImportedAt.IsZero())
	require.NoError(t, validator.Validate(doc))

	back := doc.toDomain("abc")
	assert.Equal(t, "abc", back.ID)
	assert.Equal(t, p.Name, back.Name)
	assert.Equal(t, []string{"papel", "vidro"}, back.AcceptedItems)
}

func TestPointDocument_Validation(t *testing.T) {
	tests := []struct {
		name string
		doc  pointDocument
	}{
		{name: "missing name", doc: pointDocument{Latitude: -23.5, Longitude: -46.6, Geohash: "6gyf"}},
		{name: "bad latitude", doc: pointDocument{Name: "x", Latitude: -123.5, Longitude: -46.6, Geohash: "6gyf"}},
		{name: "bad geohash", doc: pointDocument{Name: "x", Latitude: -23.5, Longitude: -46.6, Geohash: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, validator.Validate(tt.doc))
		})
	}
}

// Requires the Firestore emulator (FIRESTORE_EMULATOR_HOST).
func TestPointRepository_Emulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client, err := firestore.NewClient(ctx, "ecopoint-test")
	require.NoError(t, err)
	defer client.Close()

	collection := "pontosColeta_test_" + time.Now().Format("150405.000")
	repo := NewPointRepository(client, collection, zap.NewNop())
	idx := geo.NewIndexer(geo.DefaultPrecision)

	near := &domain.CollectionPoint{ID: "near", Name: "Ecoponto Sé", AcceptedItems: []string{"papel", "vidro", "metal"}}
	idx.Locate(near, -23.5503, -46.6339)
	far := &domain.CollectionPoint{ID: "far", Name: "Ecoponto Rio", AcceptedItems: []string{"papel"}}
	idx.Locate(far, -22.9068, -43.1729)

	require.NoError(t, repo.Upsert(ctx, []*domain.CollectionPoint{near, far}))

	// документ с координатами-строками, как в старой базе, должен быть пропущен
	_, err = client.Collection(collection).Doc("legacy").Set(ctx, map[string]interface{}{
		"nome":      "Legacy",
		"latitude":  "-23.55",
		"longitude": "-46.63",
		"geohash":   near.Geohash,
	})
	require.NoError(t, err)

	points, err := repo.QueryRange(ctx, near.Geohash, near.Geohash)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "near", points[0].ID)

	points, err = repo.QueryRange(ctx, "", "~")
	require.NoError(t, err)
	assert.Len(t, points, 2)
}
