package models

import (
	"time"
)

// Product is a shop item with an ordered image gallery
type Product struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   *string        `json:"description"`
	Category      *string        `json:"category"`
	Price         *float64       `json:"price"`
	ImageURL      *string        `json:"imageUrl"` // copy of Images[0].URL
	AffiliateLink *string        `json:"affiliateLink"`
	Status        Status         `json:"status"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	Images        []ProductImage `json:"images,omitempty"`
}

// ProductImage is one entry of a product gallery. Position is dense and
// zero-based per product.
type ProductImage struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	URL       string `json:"url"`
	Position  int    `json:"position"`
}

// ProductImageInput is a gallery entry as sent by the admin editor
type ProductImageInput struct {
	URL      string `json:"url"`
	Position int    `json:"position"`
}

// ProductInput is the create/update payload. A nil Images leaves the stored
// gallery untouched; a non-nil empty slice clears it.
type ProductInput struct {
	Title         *string              `json:"title"`
	Description   *string              `json:"description"`
	Category      *string              `json:"category"`
	Price         *float64             `json:"price"`
	ImageURL      *string              `json:"imageUrl"`
	AffiliateLink *string              `json:"affiliateLink"`
	Status        *Status              `json:"status"`
	Images        *[]ProductImageInput `json:"images"`
}
