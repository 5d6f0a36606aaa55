package marketprice

import "time"

// MarketPrice is an informational, order-independent price record used for
// trend display. PreviousPrice holds the value the last update replaced.
type MarketPrice struct {
	ID            int64     `json:"id" db:"id"`
	ProductName   string    `json:"product_name" db:"product_name"`
	Category      string    `json:"category" db:"category"`
	Price         float64   `json:"price" db:"price"`
	PreviousPrice *float64  `json:"previous_price" db:"previous_price"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
