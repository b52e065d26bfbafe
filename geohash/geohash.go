package geohash

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// base32 alphabet used by geohashes. Deliberately excludes a, i, l and o.
const alphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// MaxPrecision is the longest supported geohash length.
const MaxPrecision = 12

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidGeohash   = errors.New("invalid geohash")
	ErrInvalidDirection = errors.New("invalid direction")
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Box is the rectangular cell a geohash denotes.
type Box struct {
	SouthWest Point `json:"sw"`
	NorthEast Point `json:"ne"`
}

// EncodeWithPrecision encodes a coordinate into a geohash of the given
// length. Each character carries 5 bits, alternating longitude and latitude
// bisections starting with longitude.
func EncodeWithPrecision(lat, lon float64, precision int) (string, error) {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return "", fmt.Errorf("%w: latitude %v", ErrInvalidInput, lat)
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) || lon < -180 || lon > 180 {
		return "", fmt.Errorf("%w: longitude %v", ErrInvalidInput, lon)
	}
	if precision < 1 || precision > MaxPrecision {
		return "", fmt.Errorf("%w: precision %d", ErrInvalidInput, precision)
	}

	latMin, latMax := -90.0, 90.0
	lonMin, lonMax := -180.0, 180.0

	var sb strings.Builder
	sb.Grow(precision)

	idx := 0        // index into alphabet, built 5 bits at a time
	bit := 0        // bits accumulated so far
	evenBit := true // longitude on even bit positions

	for sb.Len() < precision {
		idx <<= 1
		if evenBit {
			mid := (lonMin + lonMax) / 2
			if lon >= mid {
				idx |= 1
				lonMin = mid
			} else {
				lonMax = mid
			}
		} else {
			mid := (latMin + latMax) / 2
			if lat >= mid {
				idx |= 1
				latMin = mid
			} else {
				latMax = mid
			}
		}
		evenBit = !evenBit

		bit++
		if bit == 5 {
			sb.WriteByte(alphabet[idx])
			idx, bit = 0, 0
		}
	}

	return sb.String(), nil
}

// Encode encodes a coordinate at the shortest precision that round-trips the
// input exactly through Decode, falling back to MaxPrecision.
func Encode(lat, lon float64) (string, error) {
	for p := 1; p <= MaxPrecision; p++ {
		hash, err := EncodeWithPrecision(lat, lon, p)
		if err != nil {
			return "", err
		}
		pt, err := Decode(hash)
		if err != nil {
			return "", err
		}
		if pt.Lat == lat && pt.Lon == lon {
			return hash, nil
		}
	}
	return EncodeWithPrecision(lat, lon, MaxPrecision)
}

// Bounds resolves a geohash to its cell. This is the single source of truth
// for spatial extent; Decode is derived from it.
func Bounds(hash string) (Box, error) {
	if hash == "" {
		return Box{}, fmt.Errorf("%w: empty string", ErrInvalidGeohash)
	}
	hash = strings.ToLower(hash)

	latMin, latMax := -90.0, 90.0
	lonMin, lonMax := -180.0, 180.0

	evenBit := true
	for _, ch := range hash {
		idx := strings.IndexRune(alphabet, ch)
		if idx < 0 {
			return Box{}, fmt.Errorf("%w: character %q", ErrInvalidGeohash, ch)
		}
		for n := 4; n >= 0; n-- {
			bit := idx >> uint(n) & 1
			if evenBit {
				mid := (lonMin + lonMax) / 2
				if bit == 1 {
					lonMin = mid
				} else {
					lonMax = mid
				}
			} else {
				mid := (latMin + latMax) / 2
				if bit == 1 {
					latMin = mid
				} else {
					latMax = mid
				}
			}
			evenBit = !evenBit
		}
	}

	return Box{
		SouthWest: Point{Lat: latMin, Lon: lonMin},
		NorthEast: Point{Lat: latMax, Lon: lonMax},
	}, nil
}

// Decode resolves a geohash to its cell centroid. Each ordinate is rounded to
// a number of decimal places matched to the cell size, so longer geohashes
// decode to more decimal places.
func Decode(hash string) (Point, error) {
	box, err := Bounds(hash)
	if err != nil {
		return Point{}, err
	}

	lat := (box.SouthWest.Lat + box.NorthEast.Lat) / 2
	lon := (box.SouthWest.Lon + box.NorthEast.Lon) / 2

	return Point{
		Lat: roundToWidth(lat, box.NorthEast.Lat-box.SouthWest.Lat),
		Lon: roundToWidth(lon, box.NorthEast.Lon-box.SouthWest.Lon),
	}, nil
}

// roundToWidth keeps floor(2 - log10(width)) decimal places, the number of
// digits actually resolved by an interval of the given width.
func roundToWidth(v, width float64) float64 {
	places := int(math.Floor(2 - math.Log10(width)))
	if places < 0 {
		places = 0
	}
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	return rounded
}
