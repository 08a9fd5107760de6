package domain

import "time"

// Product is the structured catalog entry that cart additions are built
// from. Price and name come from here, never from presentation markup.
type Product struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	ImageURL     string    `json:"image_url"`
	Colors       []string  `json:"colors"`
	DefaultColor string    `json:"default_color"`
	CreatedAt    time.Time `json:"created_at"`
}
