package domain

import "time"

// Flight is a single direct-flight row from the fares database.
// Price and Taxes are in USD; Miles is the redemption cost of the seat.
type Flight struct {
	ID            int64     `json:"id"`
	Airline       string    `json:"airline"`
	FlightNumber  string    `json:"flight_number"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	Date          string    `json:"date"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	Price         float64   `json:"price"`
	Taxes         float64   `json:"taxes"`
	Miles         int64     `json:"miles"`
}

// Airport is a map pin resolved from the airports CSV.
type Airport struct {
	IATA string  `json:"iata"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}
