package geohash

import (
	"errors"
	"math"
	"testing"

	mcgeohash "github.com/mmcloughlin/geohash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeWithPrecision(t *testing.T) {
	tests := []struct {
		lat, lon  float64
		precision int
		want      string
	}{
		{52.205, 0.119, 7, "u120fxw"},
		{57.648, 10.41, 6, "u4pruy"},
		{42.605, -5.603, 5, "ezs42"},
		{37.42201, -122.08408, 9, mcgeohash.EncodeWithPrecision(37.42201, -122.08408, 9)},
		{90, 180, 3, "zzz"},
		{-90, -180, 3, "000"},
	}
	for _, tt := range tests {
		got, err := EncodeWithPrecision(tt.lat, tt.lon, tt.precision)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

// Fixed-precision encoding must agree with an independent implementation.
func TestEncodeMatchesReference(t *testing.T) {
	points := [][]float64{
		{42.62889, -79.4472},
		{42.72989, -79.4472},
		{43.62989, -79.4472},
		{44.72889, -79.44722},
		{42.72889, -78.5472},
		{42.72889, -80.4472},
		{-33.8688, 151.2093},
		{55.7558, 37.6173},
		{-22.9068, -43.1729},
		{0.0001, -0.0001},
	}
	for _, point := range points {
		for p := 1; p <= MaxPrecision; p++ {
			got, err := EncodeWithPrecision(point[0], point[1], p)
			require.NoError(t, err)
			assert.Equal(t, mcgeohash.EncodeWithPrecision(point[0], point[1], uint(p)), got,
				"point %v precision %d", point, p)
		}
	}
}

func TestEncodeAutoPrecision(t *testing.T) {
	// Inputs that reproduce exactly at a short precision stop there.
	hash, err := Encode(57.648, 10.41)
	require.NoError(t, err)
	assert.Equal(t, "u4pruy", hash)

	hash, err = Encode(52.205, 0.1188)
	require.NoError(t, err)
	assert.Equal(t, "u120fxw", hash)

	// An input that never reproduces exactly falls back to MaxPrecision.
	hash, err = Encode(0, 0)
	require.NoError(t, err)
	assert.Len(t, hash, MaxPrecision)
}

func TestEncodeInvalidInput(t *testing.T) {
	cases := []struct {
		name      string
		lat, lon  float64
		precision int
	}{
		{"nan latitude", math.NaN(), 0, 5},
		{"nan longitude", 0, math.NaN(), 5},
		{"infinite latitude", math.Inf(1), 0, 5},
		{"latitude above range", 90.1, 0, 5},
		{"longitude below range", 0, -180.1, 5},
		{"zero precision", 0, 0, 0},
		{"negative precision", 0, 0, -1},
		{"precision too long", 0, 0, 13},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := EncodeWithPrecision(tc.lat, tc.lon, tc.precision)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestBounds(t *testing.T) {
	box, err := Bounds("u120fxw")
	require.NoError(t, err)
	assert.InDelta(t, 52.20428466796875, box.SouthWest.Lat, 1e-12)
	assert.InDelta(t, 52.205657958984375, box.NorthEast.Lat, 1e-12)
	assert.InDelta(t, 0.11810302734375, box.SouthWest.Lon, 1e-12)
	assert.InDelta(t, 0.119476318359375, box.NorthEast.Lon, 1e-12)

	// Case-insensitive input.
	upper, err := Bounds("U120FXW")
	require.NoError(t, err)
	assert.Equal(t, box, upper)
}

func TestBoundsInvariant(t *testing.T) {
	for _, hash := range []string{"0", "z", "u120fxw", "ezs42", "zzzzzzzzzzzz", "s00000000000"} {
		box, err := Bounds(hash)
		require.NoError(t, err)
		assert.LessOrEqual(t, box.SouthWest.Lat, box.NorthEast.Lat, hash)
		assert.LessOrEqual(t, box.SouthWest.Lon, box.NorthEast.Lon, hash)
	}
}

func TestBoundsMonotonicPrefixes(t *testing.T) {
	hash := "u120fxwshvkg"
	prev, err := Bounds(hash[:1])
	require.NoError(t, err)
	for i := 2; i <= len(hash); i++ {
		box, err := Bounds(hash[:i])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, box.SouthWest.Lat, prev.SouthWest.Lat)
		assert.GreaterOrEqual(t, box.SouthWest.Lon, prev.SouthWest.Lon)
		assert.LessOrEqual(t, box.NorthEast.Lat, prev.NorthEast.Lat)
		assert.LessOrEqual(t, box.NorthEast.Lon, prev.NorthEast.Lon)
		assert.Less(t, box.NorthEast.Lat-box.SouthWest.Lat, prev.NorthEast.Lat-prev.SouthWest.Lat)
		prev = box
	}
}

func TestBoundsInvalidGeohash(t *testing.T) {
	for _, hash := range []string{"", "a", "u12a", "hello", "o", "i", "l"} {
		_, err := Bounds(hash)
		assert.ErrorIs(t, err, ErrInvalidGeohash, "hash %q", hash)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		hash     string
		lat, lon float64
	}{
		{"u120fxw", 52.205, 0.1188},
		{"u4pruy", 57.648, 10.41},
		{"ezs42", 42.605, -5.603},
	}
	for _, tt := range tests {
		pt, err := Decode(tt.hash)
		require.NoError(t, err)
		assert.Equal(t, tt.lat, pt.Lat, tt.hash)
		assert.Equal(t, tt.lon, pt.Lon, tt.hash)
	}
}

func TestDecodeInvalidGeohash(t *testing.T) {
	_, err := Decode("")
	assert.ErrorIs(t, err, ErrInvalidGeohash)
	_, err = Decode("xza")
	assert.ErrorIs(t, err, ErrInvalidGeohash)
}

// Decoded centroids land within the cell plus rounding slack: per axis the
// error is at most width/2 + width/20, so at most 0.55 of the cell diagonal.
func TestRoundTrip(t *testing.T) {
	points := [][]float64{
		{52.205, 0.119},
		{57.648, 10.41},
		{37.42201, -122.08408},
		{-33.8688, 151.2093},
		{78.56713, -45.27515},
		{-74.05781, 167.10858},
		{0.5, 0.5},
	}
	for _, point := range points {
		lat, lon := point[0], point[1]
		for p := 1; p <= MaxPrecision; p++ {
			hash, err := EncodeWithPrecision(lat, lon, p)
			require.NoError(t, err)
			box, err := Bounds(hash)
			require.NoError(t, err)
			pt, err := Decode(hash)
			require.NoError(t, err)

			dLat := box.NorthEast.Lat - box.SouthWest.Lat
			dLon := box.NorthEast.Lon - box.SouthWest.Lon
			diag := math.Hypot(dLat, dLon)
			dist := math.Hypot(pt.Lat-lat, pt.Lon-lon)
			assert.LessOrEqual(t, dist, 0.55*diag+1e-12, "point %v precision %d hash %s", point, p, hash)
		}
	}
}

func TestErrorKinds(t *testing.T) {
	_, err := EncodeWithPrecision(math.NaN(), 0, 5)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.False(t, errors.Is(err, ErrInvalidGeohash))

	_, err = Bounds("a")
	assert.True(t, errors.Is(err, ErrInvalidGeohash))
	assert.False(t, errors.Is(err, ErrInvalidDirection))
}
