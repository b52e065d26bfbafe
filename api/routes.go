package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

func RegisterRoutes() http.Handler {
	router := mux.NewRouter()

	// Geohash codec endpoints
	router.HandleFunc("/geohash/encode", EncodeGeohash).Methods("GET")
	router.HandleFunc("/geohash/{hash}", DecodeGeohash).Methods("GET")
	router.HandleFunc("/geohash/{hash}/bounds", GeohashBounds).Methods("GET")
	router.HandleFunc("/geohash/{hash}/neighbours", GeohashNeighbours).Methods("GET")
	router.HandleFunc("/geohash/{hash}/adjacent/{direction}", GeohashAdjacent).Methods("GET")

	// Event discovery endpoints
	router.HandleFunc("/search", SearchEvents).Methods("GET")
	router.HandleFunc("/events/{event_id}", GetEventDetail).Methods("GET")
	router.HandleFunc("/venues", GetVenueDetail).Methods("GET")
	router.HandleFunc("/venues/nearby", NearbyVenues).Methods("GET")

	// Location endpoints
	router.HandleFunc("/locate", Locate).Methods("GET")
	router.HandleFunc("/geocode", GeocodeAddress).Methods("GET")

	// Favorites endpoints
	router.HandleFunc("/favorites", CreateFavorite).Methods("POST")
	router.HandleFunc("/favorites", ListFavorites).Methods("GET")
	router.HandleFunc("/favorites/{event_id}", DeleteFavorite).Methods("DELETE")

	// Add CORS support
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	return cors(router)
}
