package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"event-search-system/database"
	"event-search-system/events"
	"event-search-system/geocoding"
	"event-search-system/geohash"
	"event-search-system/models"

	"github.com/gorilla/mux"
	"github.com/lib/pq"
)

// Package-level collaborators, wired up in main before the server starts.
var (
	EventsClient *events.Client
	Geocoder     *geocoding.Geocoder
	IPLocator    *geocoding.IPLocator
	VenueIndex   *geohash.VenueIndex
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeGeohashError maps codec errors to HTTP status codes.
func writeGeohashError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, geohash.ErrInvalidInput),
		errors.Is(err, geohash.ErrInvalidGeohash),
		errors.Is(err, geohash.ErrInvalidDirection):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// EncodeGeohash handles GET /geohash/encode?lat=..&lon=..[&precision=..]
func EncodeGeohash(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		http.Error(w, "Invalid latitude", http.StatusBadRequest)
		return
	}
	lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil {
		http.Error(w, "Invalid longitude", http.StatusBadRequest)
		return
	}

	var hash string
	if precStr := r.URL.Query().Get("precision"); precStr != "" {
		precision, err := strconv.Atoi(precStr)
		if err != nil {
			http.Error(w, "Invalid precision", http.StatusBadRequest)
			return
		}
		hash, err = geohash.EncodeWithPrecision(lat, lon, precision)
		if err != nil {
			writeGeohashError(w, err)
			return
		}
	} else {
		hash, err = geohash.Encode(lat, lon)
		if err != nil {
			writeGeohashError(w, err)
			return
		}
	}

	writeJSON(w, map[string]string{"geohash": hash})
}

// DecodeGeohash handles GET /geohash/{hash}
func DecodeGeohash(w http.ResponseWriter, r *http.Request) {
	pt, err := geohash.Decode(mux.Vars(r)["hash"])
	if err != nil {
		writeGeohashError(w, err)
		return
	}
	writeJSON(w, pt)
}

// GeohashBounds handles GET /geohash/{hash}/bounds
func GeohashBounds(w http.ResponseWriter, r *http.Request) {
	box, err := geohash.Bounds(mux.Vars(r)["hash"])
	if err != nil {
		writeGeohashError(w, err)
		return
	}
	writeJSON(w, box)
}

// GeohashNeighbours handles GET /geohash/{hash}/neighbours
func GeohashNeighbours(w http.ResponseWriter, r *http.Request) {
	nb, err := geohash.GetNeighbours(mux.Vars(r)["hash"])
	if err != nil {
		writeGeohashError(w, err)
		return
	}
	writeJSON(w, nb)
}

// GeohashAdjacent handles GET /geohash/{hash}/adjacent/{direction}
func GeohashAdjacent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	adj, err := geohash.Adjacent(vars["hash"], vars["direction"])
	if err != nil {
		writeGeohashError(w, err)
		return
	}
	writeJSON(w, map[string]string{"geohash": adj})
}

// SearchEvents handles GET /search. The search point is given either as a
// geoHash or as a lat/lon pair that gets encoded here.
func SearchEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	hash := q.Get("geoHash")
	if hash == "" {
		lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
		lon, lonErr := strconv.ParseFloat(q.Get("lon"), 64)
		if latErr != nil || lonErr != nil {
			http.Error(w, "Provide geoHash or lat and lon", http.StatusBadRequest)
			return
		}
		var err error
		hash, err = geohash.EncodeWithPrecision(lat, lon, 6)
		if err != nil {
			writeGeohashError(w, err)
			return
		}
	}

	distance := 10
	if d := q.Get("distance"); d != "" {
		var err error
		distance, err = strconv.Atoi(d)
		if err != nil || distance <= 0 {
			http.Error(w, "Invalid distance", http.StatusBadRequest)
			return
		}
	}

	results, err := EventsClient.Search(r.Context(), events.SearchParams{
		Keyword:   q.Get("keyword"),
		SegmentID: q.Get("segmentID"),
		Geohash:   hash,
		Radius:    distance,
	})
	if err != nil {
		if errors.Is(err, geohash.ErrInvalidGeohash) {
			writeGeohashError(w, err)
			return
		}
		http.Error(w, "Event search failed", http.StatusBadGateway)
		return
	}

	writeJSON(w, map[string]interface{}{"events": results})
}

// GetEventDetail handles GET /events/{event_id}
func GetEventDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := EventsClient.EventDetail(r.Context(), mux.Vars(r)["event_id"])
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			http.Error(w, "Event not found", http.StatusNotFound)
		} else {
			http.Error(w, "Event lookup failed", http.StatusBadGateway)
		}
		return
	}
	writeJSON(w, detail)
}

// GetVenueDetail handles GET /venues?keyword=..
func GetVenueDetail(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		http.Error(w, "Missing keyword", http.StatusBadRequest)
		return
	}

	detail, err := EventsClient.VenueDetail(r.Context(), keyword)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			http.Error(w, "Venue not found", http.StatusNotFound)
		} else {
			http.Error(w, "Venue lookup failed", http.StatusBadGateway)
		}
		return
	}

	// Remember the venue for nearby lookups when it carries coordinates.
	if VenueIndex != nil && (detail.Latitude != 0 || detail.Longitude != 0) {
		err = VenueIndex.Add(geohash.IndexedVenue{
			ID:   strings.ToLower(detail.Venue),
			Name: detail.Venue,
			Lat:  detail.Latitude,
			Lon:  detail.Longitude,
		})
		if err != nil {
			log.Printf("venue index add failed for %q: %v", detail.Venue, err)
		}
	}

	writeJSON(w, detail)
}

// NearbyVenues handles GET /venues/nearby with either a geoHash (cell plus
// neighbors sweep) or a lat/lon pair (expanding radius search).
func NearbyVenues(w http.ResponseWriter, r *http.Request) {
	if VenueIndex == nil {
		http.Error(w, "Venue index not initialized", http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()

	if hash := q.Get("geoHash"); hash != "" {
		venues, err := VenueIndex.Around(hash)
		if err != nil {
			writeGeohashError(w, err)
			return
		}
		writeJSON(w, map[string]interface{}{"venues": venues})
		return
	}

	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(q.Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		http.Error(w, "Provide geoHash or lat and lon", http.StatusBadRequest)
		return
	}
	radius := 0.1
	if rad := q.Get("radius"); rad != "" {
		var err error
		radius, err = strconv.ParseFloat(rad, 64)
		if err != nil || radius <= 0 {
			http.Error(w, "Invalid radius", http.StatusBadRequest)
			return
		}
	}

	venues := VenueIndex.Near(lat, lon, radius, 3)
	writeJSON(w, map[string]interface{}{"venues": venues})
}

// Locate handles GET /locate?ip=.. resolving the caller's position and its
// geohash.
func Locate(w http.ResponseWriter, r *http.Request) {
	pt, err := IPLocator.Locate(r.Context(), r.URL.Query().Get("ip"))
	if err != nil {
		http.Error(w, "Location lookup failed", http.StatusBadGateway)
		return
	}

	hash, err := geohash.EncodeWithPrecision(pt.Lat, pt.Lon, 6)
	if err != nil {
		writeGeohashError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"lat":     pt.Lat,
		"lon":     pt.Lon,
		"geohash": hash,
	})
}

// GeocodeAddress handles GET /geocode?address=..
func GeocodeAddress(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		http.Error(w, "Missing address", http.StatusBadRequest)
		return
	}

	pt, err := Geocoder.Geocode(r.Context(), address)
	if err != nil {
		if errors.Is(err, geocoding.ErrNoResult) {
			http.Error(w, "Address not found", http.StatusNotFound)
		} else {
			http.Error(w, "Geocoding failed", http.StatusBadGateway)
		}
		return
	}

	hash, err := geohash.EncodeWithPrecision(pt.Lat, pt.Lon, 6)
	if err != nil {
		writeGeohashError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"lat":     pt.Lat,
		"lon":     pt.Lon,
		"geohash": hash,
	})
}

// CreateFavorite handles POST /favorites
func CreateFavorite(w http.ResponseWriter, r *http.Request) {
	var fav models.Favorite
	err := json.NewDecoder(r.Body).Decode(&fav)
	if err != nil || fav.EventID == "" || fav.Event == "" {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	err = database.DB.QueryRow(
		`INSERT INTO favorites (event_id, date, event, genre, venue) VALUES ($1, $2, $3, $4, $5) RETURNING id, saved_at`,
		fav.EventID, fav.Date, fav.Event, fav.Genre, fav.Venue,
	).Scan(&fav.ID, &fav.SavedAt)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && strings.Contains(pgErr.Message, "duplicate key") {
			http.Error(w, "Favorite already exists", http.StatusConflict)
		} else {
			http.Error(w, "Failed to save favorite", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, fav)
}

// ListFavorites handles GET /favorites
func ListFavorites(w http.ResponseWriter, r *http.Request) {
	rows, err := database.DB.Query(
		`SELECT id, event_id, date, event, genre, venue, saved_at FROM favorites ORDER BY saved_at DESC`,
	)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	favorites := []models.Favorite{}
	for rows.Next() {
		var fav models.Favorite
		err = rows.Scan(&fav.ID, &fav.EventID, &fav.Date, &fav.Event, &fav.Genre, &fav.Venue, &fav.SavedAt)
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		favorites = append(favorites, fav)
	}

	writeJSON(w, favorites)
}

// DeleteFavorite handles DELETE /favorites/{event_id}
func DeleteFavorite(w http.ResponseWriter, r *http.Request) {
	var id int64
	err := database.DB.QueryRow(
		`DELETE FROM favorites WHERE event_id=$1 RETURNING id`,
		mux.Vars(r)["event_id"],
	).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Favorite not found", http.StatusNotFound)
		} else {
			http.Error(w, "Database error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, map[string]string{"message": "Favorite removed"})
}
