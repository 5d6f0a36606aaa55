package product

import "time"

type Product struct {
	ID          int64     `json:"id" db:"id"`
	FarmerID    int64     `json:"farmer_id" db:"farmer_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	Price       float64   `json:"price" db:"price"`
	Unit        string    `json:"unit" db:"unit"`
	Quantity    int       `json:"quantity" db:"quantity"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	Organic     bool      `json:"organic" db:"organic"`
	SKU         string    `json:"sku" db:"sku"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
