package overpass

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapgrind/addresser/internal/tile"
)

var testBBox = tile.BBox{South: 35.20, West: -80.85, North: 35.22, East: -80.83}

func TestBuildings_ParsesCenterAndNodes(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotQuery = r.PostFormValue("data")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"elements": [
				{"type": "way", "id": 101,
				 "center": {"lat": 35.21, "lon": -80.84},
				 "nodes": [1, 2, 3, 1],
				 "tags": {"building": "yes"}},
				{"type": "way", "id": 102,
				 "nodes": [4, 5, 6]},
				{"type": "node", "id": 7, "tags": {}}
			]
		}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRateLimit(1000))
	buildings, err := c.Buildings(context.Background(), testBBox)
	require.NoError(t, err)

	// Way 102 has no center and node 7 is not a way; only 101 survives.
	require.Len(t, buildings, 1)
	assert.Equal(t, int64(101), buildings[0].ID)
	assert.InDelta(t, 35.21, buildings[0].Lat, 1e-9)
	assert.InDelta(t, -80.84, buildings[0].Lng, 1e-9)
	assert.Equal(t, []int64{1, 2, 3, 1}, buildings[0].Nodes)
	assert.Equal(t, "yes", buildings[0].Tags["building"])

	assert.Contains(t, gotQuery, `way["building"]`)
	assert.Contains(t, gotQuery, "out center qt;")
	assert.Contains(t, gotQuery, "35.200000,-80.850000,35.220000,-80.830000")
}

func TestStreets_ParsesTags(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotQuery = r.PostFormValue("data")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"elements": [
				{"type": "way", "id": 201, "tags": {"highway": "residential", "name": "North Tryon Street"}},
				{"type": "way", "id": 202, "tags": {"highway": "primary", "name": "Trade Street", "ref": "US 74"}}
			]
		}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRateLimit(1000))
	streets, err := c.Streets(context.Background(), testBBox)
	require.NoError(t, err)

	require.Len(t, streets, 2)
	assert.Equal(t, int64(201), streets[0].ID)
	assert.Equal(t, "North Tryon Street", streets[0].Name())
	assert.Equal(t, "Trade Street", streets[1].Name())

	assert.Contains(t, gotQuery, `way["highway"]["name"]`)
	assert.Contains(t, gotQuery, "out tags qt;")
}

func TestRun_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRateLimit(1000))
	_, err := c.Buildings(context.Background(), testBBox)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}

func TestRun_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html>not json</html>`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRateLimit(1000))
	_, err := c.Streets(context.Background(), testBBox)
	assert.Error(t, err)
}

func TestNewClient_DefaultEndpoint(t *testing.T) {
	c := NewClient("")
	assert.Equal(t, DefaultEndpoint, c.endpoint)
}
