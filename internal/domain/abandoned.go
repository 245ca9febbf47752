package domain

import "time"

// Abandoned checkout capture sources.
const (
	AbandonedSourceStep1  = "checkout_step_1"
	AbandonedSourceStep2  = "checkout_step_2"
	AbandonedSourceCancel = "checkout_cancel"
	AbandonedSourceManual = "manual"
)

// AbandonedUpdateWindow is how far back a step-2 or cancel event may reach to
// update an existing capture for the same session. Rows older than this are
// left untouched and a new row is inserted instead.
const AbandonedUpdateWindow = 30 * time.Minute

// AbandonedCheckout records a checkout the customer walked away from, so the
// shop can follow up.
type AbandonedCheckout struct {
	ID             string     `json:"id"`
	SessionID      string     `json:"session_id"`
	Email          string     `json:"email,omitempty"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	CartItems      []CartItem `json:"cart_items"`
	CartTotalCents int64      `json:"cart_total_cents"`
	Source         string     `json:"source"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ValidAbandonedSources returns the accepted capture sources.
func ValidAbandonedSources() []string {
	return []string{
		AbandonedSourceStep1,
		AbandonedSourceStep2,
		AbandonedSourceCancel,
		AbandonedSourceManual,
	}
}

// IsValidAbandonedSource checks if a source string is accepted.
func IsValidAbandonedSource(source string) bool {
	for _, s := range ValidAbandonedSources() {
		if s == source {
			return true
		}
	}
	return false
}
