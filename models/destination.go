package models

// Destination is the bookable trip a flow is opened for.
type Destination struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"` // per traveler
	Currency string  `json:"currency"`
}
