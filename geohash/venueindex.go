package geohash

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dhconnelly/rtreego"
)

// venueExtent is the tolerance used to box a venue point for the R-tree.
const venueExtent = 0.0001

// IndexedVenue is a venue pinned to a coordinate in the index.
type IndexedVenue struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type venueEntry struct {
	venue IndexedVenue
	loc   rtreego.Point
}

func (e *venueEntry) Bounds() rtreego.Rect {
	return e.loc.ToRect(venueExtent)
}

// VenueIndex is an in-memory spatial index over venues seen in search
// results. Venues are bucketed by geohash cell and mirrored into an R-tree
// for radius queries.
type VenueIndex struct {
	mu        sync.RWMutex
	precision int
	tree      *rtreego.Rtree
	cells     map[string][]IndexedVenue
	entries   map[string]*venueEntry
}

// NewVenueIndex creates an index bucketing venues at the given geohash
// precision.
func NewVenueIndex(precision int) (*VenueIndex, error) {
	if precision < 1 || precision > MaxPrecision {
		return nil, fmt.Errorf("%w: precision %d", ErrInvalidInput, precision)
	}
	return &VenueIndex{
		precision: precision,
		tree:      rtreego.NewTree(2, 25, 50),
		cells:     make(map[string][]IndexedVenue),
		entries:   make(map[string]*venueEntry),
	}, nil
}

// Add inserts a venue, replacing any previous entry with the same ID.
func (ix *VenueIndex) Add(v IndexedVenue) error {
	cell, err := EncodeWithPrecision(v.Lat, v.Lon, ix.precision)
	if err != nil {
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if old, ok := ix.entries[v.ID]; ok {
		ix.tree.Delete(old)
		ix.removeFromCell(old.venue)
	}

	entry := &venueEntry{venue: v, loc: rtreego.Point{v.Lat, v.Lon}}
	ix.tree.Insert(entry)
	ix.entries[v.ID] = entry
	ix.cells[cell] = append(ix.cells[cell], v)
	return nil
}

func (ix *VenueIndex) removeFromCell(v IndexedVenue) {
	cell, err := EncodeWithPrecision(v.Lat, v.Lon, ix.precision)
	if err != nil {
		return
	}
	bucket := ix.cells[cell]
	for i, existing := range bucket {
		if existing.ID == v.ID {
			ix.cells[cell] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
}

// Len reports the number of indexed venues.
func (ix *VenueIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// InCell returns the venues whose bucket matches the given geohash prefix.
func (ix *VenueIndex) InCell(hash string) ([]IndexedVenue, error) {
	if _, err := Bounds(hash); err != nil {
		return nil, err
	}
	hash = strings.ToLower(hash)

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var out []IndexedVenue
	for cell, bucket := range ix.cells {
		if strings.HasPrefix(cell, hash) || strings.HasPrefix(hash, cell) {
			out = append(out, bucket...)
		}
	}
	return out, nil
}

// Around returns the venues in the cell containing the hash plus its 8
// neighboring cells.
func (ix *VenueIndex) Around(hash string) ([]IndexedVenue, error) {
	nb, err := GetNeighbours(hash)
	if err != nil {
		return nil, err
	}

	var out []IndexedVenue
	for _, cell := range []string{hash, nb.N, nb.NE, nb.E, nb.SE, nb.S, nb.SW, nb.W, nb.NW} {
		venues, err := ix.InCell(cell)
		if err != nil {
			return nil, err
		}
		out = append(out, venues...)
	}
	return out, nil
}

// Near searches the R-tree for venues around a point, doubling the search
// radius (in degrees) on each empty attempt up to maxRetries.
func (ix *VenueIndex) Near(lat, lon, radius float64, maxRetries int) []IndexedVenue {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	for i := 0; i < maxRetries; i++ {
		center := rtreego.Point{lat, lon}
		hits := ix.tree.SearchIntersect(center.ToRect(radius))
		if len(hits) > 0 {
			out := make([]IndexedVenue, 0, len(hits))
			for _, hit := range hits {
				out = append(out, hit.(*venueEntry).venue)
			}
			return out
		}
		radius *= 2
	}
	return nil
}
