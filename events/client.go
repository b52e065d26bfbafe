package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"event-search-system/cache"
	"event-search-system/geohash"
	"event-search-system/models"
)

// DefaultBaseURL is the Ticketmaster Discovery API root.
const DefaultBaseURL = "https://app.ticketmaster.com/discovery/v2"

// searchPrecision is the geohash length sent upstream; the Discovery API
// rejects geoPoint values longer than 9, and 6 chars (~1.2km) is plenty for
// a radius search.
const searchPrecision = 6

var ErrNotFound = errors.New("not found")

// Client calls the Ticketmaster Discovery API, caching responses in Redis.
type Client struct {
	APIKey     string
	MapsAPIKey string
	BaseURL    string
	CacheTTL   time.Duration
	HTTPClient *http.Client
}

func NewClient(apiKey, mapsAPIKey string, cacheTTL time.Duration) *Client {
	return &Client{
		APIKey:     apiKey,
		MapsAPIKey: mapsAPIKey,
		BaseURL:    DefaultBaseURL,
		CacheTTL:   cacheTTL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SearchParams describes an event search around a geohash cell.
type SearchParams struct {
	Keyword   string
	SegmentID string
	Geohash   string
	Radius    int // miles
}

type searchResponse struct {
	Embedded *struct {
		Events []upstreamEvent `json:"events"`
	} `json:"_embedded"`
	Page struct {
		Size int `json:"size"`
	} `json:"page"`
}

type upstreamEvent struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	URL   string `json:"url"`
	Dates struct {
		Start struct {
			LocalDate string `json:"localDate"`
			LocalTime string `json:"localTime"`
		} `json:"start"`
		Status struct {
			Code string `json:"code"`
		} `json:"status"`
	} `json:"dates"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	Classifications []classification `json:"classifications"`
	PriceRanges     []struct {
		Min      float64 `json:"min"`
		Max      float64 `json:"max"`
		Currency string  `json:"currency"`
	} `json:"priceRanges"`
	Seatmap *struct {
		StaticURL string `json:"staticUrl"`
	} `json:"seatmap"`
	Embedded *struct {
		Venues []struct {
			Name string `json:"name"`
		} `json:"venues"`
		Attractions []struct {
			Name string `json:"name"`
		} `json:"attractions"`
	} `json:"_embedded"`
}

type classification struct {
	Segment  namedField `json:"segment"`
	Genre    namedField `json:"genre"`
	SubGenre namedField `json:"subGenre"`
	Type     namedField `json:"type"`
	SubType  namedField `json:"subType"`
}

type namedField struct {
	Name string `json:"name"`
}

// Search finds events around a geohash cell. The geohash is validated and
// truncated to 6 characters before dispatch.
func (c *Client) Search(ctx context.Context, params SearchParams) ([]models.Event, error) {
	if _, err := geohash.Bounds(params.Geohash); err != nil {
		return nil, err
	}
	hash := params.Geohash
	if len(hash) > searchPrecision {
		hash = hash[:searchPrecision]
	}

	cacheKey := fmt.Sprintf("events:search:%s:%s:%d:%s", params.Keyword, params.SegmentID, params.Radius, hash)
	var cached []models.Event
	if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err != nil {
		log.Printf("cache read failed for %s: %v", cacheKey, err)
	} else if hit {
		return cached, nil
	}

	q := url.Values{}
	q.Set("apikey", c.APIKey)
	q.Set("keyword", params.Keyword)
	q.Set("segmentID", params.SegmentID)
	q.Set("radius", fmt.Sprintf("%d", params.Radius))
	q.Set("unit", "miles")
	q.Set("geoPoint", hash)

	var resp searchResponse
	if err := c.getJSON(ctx, c.BaseURL+"/events.json?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	events := []models.Event{}
	if resp.Embedded != nil {
		for _, ev := range resp.Embedded.Events {
			out := models.Event{
				ID:    ev.ID,
				Date:  ev.Dates.Start.LocalDate,
				Time:  ev.Dates.Start.LocalTime,
				Event: ev.Name,
			}
			if len(ev.Images) > 0 {
				out.Icon = ev.Images[0].URL
			}
			if len(ev.Classifications) > 0 {
				out.Genre = ev.Classifications[0].Segment.Name
			}
			if ev.Embedded != nil && len(ev.Embedded.Venues) > 0 {
				out.Venue = ev.Embedded.Venues[0].Name
			}
			events = append(events, out)
		}
	}

	if err := cache.SetJSON(ctx, cacheKey, events, c.CacheTTL); err != nil {
		log.Printf("cache write failed for %s: %v", cacheKey, err)
	}
	return events, nil
}

// EventDetail fetches the expanded card for one event.
func (c *Client) EventDetail(ctx context.Context, id string) (*models.EventDetail, error) {
	cacheKey := "events:detail:" + id
	var cached models.EventDetail
	if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err != nil {
		log.Printf("cache read failed for %s: %v", cacheKey, err)
	} else if hit {
		return &cached, nil
	}

	q := url.Values{}
	q.Set("apikey", c.APIKey)

	var ev upstreamEvent
	if err := c.getJSON(ctx, c.BaseURL+"/events/"+url.PathEscape(id)+"?"+q.Encode(), &ev); err != nil {
		return nil, err
	}
	if ev.Name == "" {
		return nil, fmt.Errorf("%w: event %s", ErrNotFound, id)
	}

	detail := &models.EventDetail{
		Title:        ev.Name,
		Date:         ev.Dates.Start.LocalDate,
		Time:         ev.Dates.Start.LocalTime,
		URL:          ev.URL,
		TicketStatus: ev.Dates.Status.Code,
		BuyTicketAt:  ev.URL,
	}
	if ev.Embedded != nil {
		if len(ev.Embedded.Attractions) > 0 {
			detail.ArtistTeam = ev.Embedded.Attractions[0].Name
		}
		if len(ev.Embedded.Venues) > 0 {
			detail.Venue = ev.Embedded.Venues[0].Name
		}
	}
	if len(ev.Classifications) > 0 {
		detail.Genre = genreChain(ev.Classifications[0])
	}
	if len(ev.PriceRanges) > 0 {
		pr := ev.PriceRanges[0]
		detail.PriceRanges = fmt.Sprintf("%v-%v %s", pr.Min, pr.Max, pr.Currency)
	}
	if ev.Seatmap != nil {
		detail.SeatMap = ev.Seatmap.StaticURL
	}

	if err := cache.SetJSON(ctx, cacheKey, detail, c.CacheTTL); err != nil {
		log.Printf("cache write failed for %s: %v", cacheKey, err)
	}
	return detail, nil
}

// genreChain joins the defined classification levels with " | ", skipping
// "Undefined" entries.
func genreChain(cls classification) string {
	chain := ""
	for _, field := range []namedField{cls.Segment, cls.Genre, cls.SubGenre, cls.Type, cls.SubType} {
		if field.Name == "" || field.Name == "Undefined" {
			continue
		}
		if chain == "" {
			chain = field.Name
		} else {
			chain += " | " + field.Name
		}
	}
	return chain
}

type venueResponse struct {
	Embedded *struct {
		Venues []struct {
			Name   string `json:"name"`
			URL    string `json:"url"`
			Images []struct {
				URL string `json:"url"`
			} `json:"images"`
			Address struct {
				Line1 string `json:"line1"`
			} `json:"address"`
			City struct {
				Name string `json:"name"`
			} `json:"city"`
			State struct {
				StateCode string `json:"stateCode"`
			} `json:"state"`
			PostalCode string `json:"postalCode"`
			Location   struct {
				Latitude  string `json:"latitude"`
				Longitude string `json:"longitude"`
			} `json:"location"`
		} `json:"venues"`
	} `json:"_embedded"`
}

// VenueDetail fetches the venue card for a keyword.
func (c *Client) VenueDetail(ctx context.Context, keyword string) (*models.VenueDetail, error) {
	cacheKey := "events:venue:" + keyword
	var cached models.VenueDetail
	if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err != nil {
		log.Printf("cache read failed for %s: %v", cacheKey, err)
	} else if hit {
		return &cached, nil
	}

	q := url.Values{}
	q.Set("apikey", c.APIKey)
	q.Set("keyword", keyword)

	var resp venueResponse
	if err := c.getJSON(ctx, c.BaseURL+"/venues?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Embedded == nil || len(resp.Embedded.Venues) == 0 {
		return nil, fmt.Errorf("%w: venue %q", ErrNotFound, keyword)
	}

	v := resp.Embedded.Venues[0]
	detail := &models.VenueDetail{
		Venue:      v.Name,
		Logo:       "nologo",
		Address:    v.Address.Line1,
		City:       v.City.Name,
		StateCode:  v.State.StateCode,
		PostalCode: v.PostalCode,
		URL:        v.URL,
		Map:        "https://www.google.com/maps/search/?api=" + c.MapsAPIKey + "&query=" + url.QueryEscape(v.Name),
	}
	if len(v.Images) > 0 {
		detail.Logo = v.Images[0].URL
	}
	fmt.Sscanf(v.Location.Latitude, "%f", &detail.Latitude)
	fmt.Sscanf(v.Location.Longitude, "%f", &detail.Longitude)

	if err := cache.SetJSON(ctx, cacheKey, detail, c.CacheTTL); err != nil {
		log.Printf("cache write failed for %s: %v", cacheKey, err)
	}
	return detail, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
