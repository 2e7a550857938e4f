package locate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapgrind/addresser/internal/geodata"
)

func TestNearest_PicksClosestCentroid(t *testing.T) {
	buildings := []geodata.Building{
		{ID: 1, Lat: 35.00, Lng: -80.00},
		{ID: 2, Lat: 35.01, Lng: -80.01},
		{ID: 3, Lat: 35.50, Lng: -80.50},
	}

	got := Nearest(35.001, -80.001, buildings)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.ID)

	got = Nearest(35.009, -80.009, buildings)
	require.NotNil(t, got)
	assert.Equal(t, int64(2), got.ID)
}

func TestNearest_SpecProperty(t *testing.T) {
	// Query sits between the first two buildings but closer to the second
	// when the second is moved next to it.
	buildings := []geodata.Building{
		{ID: 1, Lat: 35.00, Lng: -80.00},
		{ID: 2, Lat: 35.001, Lng: -80.001},
		{ID: 3, Lat: 35.50, Lng: -80.50},
	}
	got := Nearest(35.0011, -80.0011, buildings)
	require.NotNil(t, got)
	assert.Equal(t, int64(2), got.ID)
}

func TestNearest_EmptyViewReturnsNil(t *testing.T) {
	assert.Nil(t, Nearest(35.0, -80.0, nil))
	assert.Nil(t, Nearest(35.0, -80.0, []geodata.Building{}))
}

func TestNearest_TieKeepsFirst(t *testing.T) {
	buildings := []geodata.Building{
		{ID: 10, Lat: 35.0, Lng: -80.0},
		{ID: 11, Lat: 35.0, Lng: -80.0},
	}
	got := Nearest(35.0005, -80.0005, buildings)
	require.NotNil(t, got)
	assert.Equal(t, int64(10), got.ID)
}

func TestNearest_ExactPoint(t *testing.T) {
	buildings := []geodata.Building{
		{ID: 5, Lat: 35.2271, Lng: -80.8431},
		{ID: 6, Lat: 35.2280, Lng: -80.8440},
	}
	got := Nearest(35.2271, -80.8431, buildings)
	require.NotNil(t, got)
	assert.Equal(t, int64(5), got.ID)
}

func TestHaversine(t *testing.T) {
	// Charlotte to Raleigh is roughly 209 km.
	d := haversineKm(35.2271, -80.8431, 35.7796, -78.6382)
	assert.InDelta(t, 209, d, 5)

	assert.Zero(t, haversineKm(35.0, -80.0, 35.0, -80.0))
}
