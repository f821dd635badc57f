package quotes

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/ecologic-brindes/ecologic-backend/internal/money"
	"github.com/ecologic-brindes/ecologic-backend/internal/sales/pricing"
)

// FlexAmount decodes a JSON number or a currency-formatted string. Malformed
// input coerces to 0 instead of failing the whole payload, so one bad field
// cannot abort processing of an entire product list.
type FlexAmount float64

func (a *FlexAmount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*a = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*a = 0
			return nil
		}
		*a = FlexAmount(money.ParseAmount(s))
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil || v < 0 {
		*a = 0
		return nil
	}
	*a = FlexAmount(v)
	return nil
}

// SelectionItem is one raw cart entry as the SPA sends it.
type SelectionItem struct {
	ProductID int64      `json:"product_id" validate:"required,gt=0"`
	Color     string     `json:"color"`
	Quantity1 FlexAmount `json:"quantity"`
	Price1    FlexAmount `json:"price"`
	Quantity2 FlexAmount `json:"quantity2"`
	Price2    FlexAmount `json:"price2"`
	Quantity3 FlexAmount `json:"quantity3"`
	Price3    FlexAmount `json:"price3"`

	SelectedVariationImage string `json:"selected_variation_image"`

	Personalization string     `json:"personalization"`
	Engraving       string     `json:"engraving"`
	Customizations  string     `json:"customizations"`
	Info            string     `json:"info"`
	Notes           string     `json:"notes"`
	Factor          FlexAmount `json:"factor"`
}

// SubmitQuoteRequest is the public storefront submission payload.
type SubmitQuoteRequest struct {
	Name    string          `json:"name" validate:"required,max=120"`
	Email   string          `json:"email" validate:"required,email"`
	Phone   string          `json:"phone" validate:"max=30"`
	Company string          `json:"company" validate:"max=120"`
	Notes   string          `json:"notes" validate:"max=2000"`
	Items   []SelectionItem `json:"items" validate:"required,min=1,dive"`
}

// SaveLinesRequest replaces a quote's line items from the editor.
type SaveLinesRequest struct {
	Items []SelectionItem `json:"items" validate:"required,min=1,dive"`
}

func (i SelectionItem) toSelection() pricing.Selection {
	return pricing.Selection{
		ProductID:              i.ProductID,
		Color:                  i.Color,
		Quantity1:              float64(i.Quantity1),
		Price1:                 float64(i.Price1),
		Quantity2:              float64(i.Quantity2),
		Price2:                 float64(i.Price2),
		Quantity3:              float64(i.Quantity3),
		Price3:                 float64(i.Price3),
		SelectedVariationImage: i.SelectedVariationImage,
		Personalization:        i.Personalization,
		Engraving:              i.Engraving,
		Customizations:         i.Customizations,
		Info:                   i.Info,
		Notes:                  i.Notes,
		Factor:                 float64(i.Factor),
	}
}

func toSelections(items []SelectionItem) []pricing.Selection {
	out := make([]pricing.Selection, len(items))
	for i, item := range items {
		out[i] = item.toSelection()
	}
	return out
}
