package domain

// Quantity bounds enforced on every cart line before it is sent to the
// payment provider.
const (
	MinQuantity = 1
	MaxQuantity = 99
)

// MetadataValueLimit is the maximum length of a provider metadata value.
// Longer values are truncated to avoid provider-side field-length errors.
const MetadataValueLimit = 500

// CartItem is one product line within a cart or checkout session.
type CartItem struct {
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	ImageURL       string `json:"image_url,omitempty"`
}

// ClampQuantity restricts a requested quantity to the allowed range.
func ClampQuantity(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}

// PriceToCents converts a unit price in euros to integer cents, flooring
// negative values to zero.
func PriceToCents(price float64) int64 {
	if price < 0 {
		return 0
	}
	return int64(price*100 + 0.5)
}

// TruncateMetadataValue cuts a metadata value down to the provider limit.
func TruncateMetadataValue(v string) string {
	if len(v) > MetadataValueLimit {
		return v[:MetadataValueLimit]
	}
	return v
}

// Total returns the cart total in cents.
func CartTotal(items []CartItem) int64 {
	var total int64
	for _, it := range items {
		total += int64(it.Quantity) * it.UnitPriceCents
	}
	return total
}
