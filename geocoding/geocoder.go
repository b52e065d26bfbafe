package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"event-search-system/geohash"
)

const (
	// DefaultGeocodeBaseURL is the Google Geocoding API root.
	DefaultGeocodeBaseURL = "https://maps.googleapis.com/maps/api/geocode"
	// DefaultIPInfoBaseURL is the ipinfo.io API root.
	DefaultIPInfoBaseURL = "https://ipinfo.io"
)

var ErrNoResult = errors.New("no geocoding result")

// Geocoder resolves street addresses to coordinates via the Google Geocoding
// API.
type Geocoder struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewGeocoder(apiKey string) *Geocoder {
	return &Geocoder{
		APIKey:     apiKey,
		BaseURL:    DefaultGeocodeBaseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves an address to a coordinate.
func (g *Geocoder) Geocode(ctx context.Context, address string) (geohash.Point, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.APIKey)

	var resp geocodeResponse
	if err := getJSON(ctx, g.HTTPClient, g.BaseURL+"/json?"+q.Encode(), &resp); err != nil {
		return geohash.Point{}, err
	}
	if resp.Status != "OK" || len(resp.Results) == 0 {
		return geohash.Point{}, fmt.Errorf("%w: status %s", ErrNoResult, resp.Status)
	}

	loc := resp.Results[0].Geometry.Location
	return geohash.Point{Lat: loc.Lat, Lon: loc.Lng}, nil
}

// IPLocator resolves an IP address to a coordinate via ipinfo.io.
type IPLocator struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
}

func NewIPLocator(token string) *IPLocator {
	return &IPLocator{
		Token:      token,
		BaseURL:    DefaultIPInfoBaseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type ipInfoResponse struct {
	Loc  string `json:"loc"`
	City string `json:"city"`
}

// Locate resolves an IP address to a coordinate. An empty ip resolves the
// caller's own address.
func (l *IPLocator) Locate(ctx context.Context, ip string) (geohash.Point, error) {
	endpoint := l.BaseURL + "/json"
	if ip != "" {
		endpoint = l.BaseURL + "/" + url.PathEscape(ip) + "/json"
	}
	if l.Token != "" {
		endpoint += "?token=" + url.QueryEscape(l.Token)
	}

	var resp ipInfoResponse
	if err := getJSON(ctx, l.HTTPClient, endpoint, &resp); err != nil {
		return geohash.Point{}, err
	}

	parts := strings.Split(resp.Loc, ",")
	if len(parts) != 2 {
		return geohash.Point{}, fmt.Errorf("%w: malformed loc %q", ErrNoResult, resp.Loc)
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return geohash.Point{}, fmt.Errorf("%w: %v", ErrNoResult, err)
	}
	lon, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return geohash.Point{}, fmt.Errorf("%w: %v", ErrNoResult, err)
	}
	return geohash.Point{Lat: lat, Lon: lon}, nil
}

func getJSON(ctx context.Context, client *http.Client, rawURL string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
