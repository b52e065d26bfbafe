package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"event-search-system/events"
	"event-search-system/geohash"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	router := RegisterRoutes()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestEncodeGeohashHandler(t *testing.T) {
	rec := doRequest(t, "GET", "/geohash/encode?lat=52.205&lon=0.119&precision=7")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "u120fxw", body["geohash"])
}

func TestEncodeGeohashHandlerAutoPrecision(t *testing.T) {
	rec := doRequest(t, "GET", "/geohash/encode?lat=57.648&lon=10.41")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "u4pruy", body["geohash"])
}

func TestEncodeGeohashHandlerInvalid(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, doRequest(t, "GET", "/geohash/encode?lat=abc&lon=0").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(t, "GET", "/geohash/encode?lon=0").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(t, "GET", "/geohash/encode?lat=91&lon=0&precision=5").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(t, "GET", "/geohash/encode?lat=0&lon=0&precision=13").Code)
}

func TestDecodeGeohashHandler(t *testing.T) {
	rec := doRequest(t, "GET", "/geohash/u120fxw")
	require.Equal(t, http.StatusOK, rec.Code)

	var pt geohash.Point
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pt))
	assert.Equal(t, 52.205, pt.Lat)
	assert.Equal(t, 0.1188, pt.Lon)
}

func TestDecodeGeohashHandlerInvalid(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, doRequest(t, "GET", "/geohash/u12a").Code)
}

func TestGeohashBoundsHandler(t *testing.T) {
	rec := doRequest(t, "GET", "/geohash/u120fxw/bounds")
	require.Equal(t, http.StatusOK, rec.Code)

	var box geohash.Box
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &box))
	assert.LessOrEqual(t, box.SouthWest.Lat, box.NorthEast.Lat)
	assert.LessOrEqual(t, box.SouthWest.Lon, box.NorthEast.Lon)
}

func TestGeohashNeighboursHandler(t *testing.T) {
	rec := doRequest(t, "GET", "/geohash/gbsuv/neighbours")
	require.Equal(t, http.StatusOK, rec.Code)

	var nb geohash.Neighbours
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nb))
	assert.Equal(t, "gbsvj", nb.N)
	assert.Equal(t, "gbsvn", nb.NE)
}

func TestGeohashAdjacentHandler(t *testing.T) {
	rec := doRequest(t, "GET", "/geohash/u120fxw/adjacent/n")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "u120fxy", body["geohash"])
}

func TestGeohashAdjacentHandlerInvalidDirection(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, doRequest(t, "GET", "/geohash/u120fxw/adjacent/x").Code)
}

func TestNearbyVenuesHandler(t *testing.T) {
	ix, err := geohash.NewVenueIndex(5)
	require.NoError(t, err)
	require.NoError(t, ix.Add(geohash.IndexedVenue{
		ID: "msg", Name: "Madison Square Garden", Lat: 40.7505, Lon: -73.9934,
	}))
	VenueIndex = ix
	defer func() { VenueIndex = nil }()

	cell, err := geohash.EncodeWithPrecision(40.7505, -73.9934, 5)
	require.NoError(t, err)

	rec := doRequest(t, "GET", "/venues/nearby?geoHash="+cell)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Venues []geohash.IndexedVenue `json:"venues"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Venues, 1)
	assert.Equal(t, "msg", body.Venues[0].ID)

	rec = doRequest(t, "GET", "/venues/nearby?lat=40.75&lon=-73.99&radius=0.05")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusBadRequest, doRequest(t, "GET", "/venues/nearby?geoHash=bad!").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(t, "GET", "/venues/nearby").Code)
}

func TestNearbyVenuesHandlerNoIndex(t *testing.T) {
	VenueIndex = nil

	rec := doRequest(t, "GET", "/venues/nearby?lat=40.75&lon=-73.99")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// A venue whose coordinates cannot be indexed must not break the venue card
// response.
func TestGetVenueDetailUnindexableVenue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"_embedded": {"venues": [{
				"name": "Broken Venue",
				"location": {"latitude": "95.0", "longitude": "10.0"}
			}]}
		}`))
	}))
	defer srv.Close()

	EventsClient = events.NewClient("test-key", "maps-key", time.Minute)
	EventsClient.BaseURL = srv.URL
	defer func() { EventsClient = nil }()

	ix, err := geohash.NewVenueIndex(5)
	require.NoError(t, err)
	VenueIndex = ix
	defer func() { VenueIndex = nil }()

	rec := doRequest(t, "GET", "/venues?keyword=broken")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, ix.Len())
}
