package domain

import (
	"time"

	"github.com/google/uuid"
)

// Gender is the gender affinity of a product listing.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderUnisex Gender = "unisex"
)

// Product represents a catalog listing. Discount is a fraction in [0, 1);
// zero means the product sells at list price.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Content     string    `json:"content" db:"content"`
	Price       float64   `json:"price" db:"price"`
	Discount    float64   `json:"discount" db:"discount"`
	Category    string    `json:"category" db:"category"`
	Gender      Gender    `json:"gender" db:"gender"`
	Colors      []string  `json:"colors" db:"colors"`
	Sizes       []string  `json:"sizes" db:"sizes"`
	Rating      float64   `json:"rating" db:"rating"`
	ImageURLs   []string  `json:"image_urls" db:"image_urls"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Clone returns a deep copy. Carts and orders keep copies so later catalog
// edits never reach through to a line item already priced.
func (p Product) Clone() Product {
	out := p
	out.Colors = append([]string(nil), p.Colors...)
	out.Sizes = append([]string(nil), p.Sizes...)
	out.ImageURLs = append([]string(nil), p.ImageURLs...)
	return out
}

// HasColor reports whether the product carries the given color variant.
func (p Product) HasColor(color string) bool {
	for _, c := range p.Colors {
		if c == color {
			return true
		}
	}
	return false
}
