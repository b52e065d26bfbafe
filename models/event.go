package models

// Event is one row of the search result list.
type Event struct {
	ID    string `json:"id"`
	Date  string `json:"date"`
	Time  string `json:"time,omitempty"`
	Icon  string `json:"icon"`
	Event string `json:"event"`
	Genre string `json:"genre"`
	Venue string `json:"venue"`
}

// EventDetail is the expanded card for a single event.
type EventDetail struct {
	Title        string `json:"title"`
	Date         string `json:"date"`
	Time         string `json:"time,omitempty"`
	ArtistTeam   string `json:"artist_team,omitempty"`
	URL          string `json:"url"`
	Venue        string `json:"venue"`
	Genre        string `json:"genre"`
	PriceRanges  string `json:"price_ranges,omitempty"`
	TicketStatus string `json:"ticket_status"`
	BuyTicketAt  string `json:"buy_ticket_at"`
	SeatMap      string `json:"seat_map,omitempty"`
}

// VenueDetail is the venue card looked up by keyword.
type VenueDetail struct {
	Venue      string  `json:"venue"`
	Logo       string  `json:"logo"`
	Address    string  `json:"address,omitempty"`
	City       string  `json:"city,omitempty"`
	StateCode  string  `json:"stateCode,omitempty"`
	PostalCode string  `json:"postal_code,omitempty"`
	URL        string  `json:"url,omitempty"`
	Map        string  `json:"map"`
	Latitude   float64 `json:"latitude,omitempty"`
	Longitude  float64 `json:"longitude,omitempty"`
}
