package main

import (
	"log"
	"net/http"
	"time"

	"event-search-system/api"
	"event-search-system/cache"
	"event-search-system/config"
	"event-search-system/database"
	"event-search-system/events"
	"event-search-system/geocoding"
	"event-search-system/geohash"
	"event-search-system/migration"
)

func main() {
	// Initialize configuration
	config.InitConfig()

	// Initialize database and apply migrations
	if err := database.InitDB(); err != nil {
		log.Fatal(err)
	}
	if err := migration.RunMigrations(); err != nil {
		log.Fatalf("Migration error: %v", err)
	}

	// Initialize Redis
	if err := cache.InitRedis(); err != nil {
		log.Fatal(err)
	}

	// Wire up collaborators
	cacheTTL := time.Duration(config.Cfg.Ticketmaster.CacheTTL) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	api.EventsClient = events.NewClient(config.Cfg.Ticketmaster.APIKey, config.Cfg.Geocode.GoogleAPIKey, cacheTTL)
	api.Geocoder = geocoding.NewGeocoder(config.Cfg.Geocode.GoogleAPIKey)
	api.IPLocator = geocoding.NewIPLocator(config.Cfg.Geocode.IPInfoToken)

	venueIndex, err := geohash.NewVenueIndex(5)
	if err != nil {
		log.Fatal(err)
	}
	api.VenueIndex = venueIndex

	// Register routes
	router := api.RegisterRoutes()

	// Start the server
	port := config.Cfg.Server.Port
	if port == "" {
		port = "8080"
	}
	log.Println("Server started on :" + port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
