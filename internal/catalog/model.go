package catalog

import (
	"time"

	"github.com/ecologic-brindes/ecologic-backend/internal/sales/pricing"
)

// Product is a catalog record from ecologic_products_site. The three generic
// image slots and the per-variation images coexist; which one a quote line
// shows is decided by the imaging package.
type Product struct {
	ID          int64               `json:"id"`
	Code        string              `json:"code"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Price       float64             `json:"price"`
	Cost        float64             `json:"cost"`
	Image0      string              `json:"image0,omitempty"`
	Image1      string              `json:"image1,omitempty"`
	Image2      string              `json:"image2,omitempty"`
	Variations  []pricing.Variation `json:"variations,omitempty"`
	IsActive    bool                `json:"is_active"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ListFilters narrows catalog listings.
type ListFilters struct {
	Search   string
	IsActive *bool
	Page     int
	Limit    int
}
