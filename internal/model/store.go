// Package model defines the aggregated store records and payment-method
// vocabulary shared across the pipeline.
package model

// StoreCategory is the closed set of store categories the classifier emits.
type StoreCategory string

// Store categories.
const (
	CategoryConvenience StoreCategory = "convenience"
	CategoryRestaurant  StoreCategory = "restaurant"
	CategorySupermarket StoreCategory = "supermarket"
	CategoryRetail      StoreCategory = "retail"
	CategoryOther       StoreCategory = "other"
)

// TrustScore is a heuristic confidence label for a store's payment data.
type TrustScore string

// Trust levels. Medium is used whenever the default resolver fills in
// payment methods, since those are not provider-verified.
const (
	TrustHigh   TrustScore = "high"
	TrustMedium TrustScore = "medium"
	TrustLow    TrustScore = "low"
)

// Photo references a directory-provider photo.
type Photo struct {
	Reference    string   `json:"photoReference"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	Attributions []string `json:"htmlAttributions,omitempty"`
}

// Store is the aggregated, UI-facing record combining the directory and
// tag-store providers. It is constructed fresh per query and never persisted.
type Store struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Address        string          `json:"address"`
	Latitude       float64         `json:"latitude"`
	Longitude      float64         `json:"longitude"`
	Category       StoreCategory   `json:"category"`
	PaymentMethods []PaymentMethod `json:"paymentMethods"`
	LastVerified   string          `json:"lastVerified"`
	TrustScore     TrustScore      `json:"trustScore"`
	Description    string          `json:"description,omitempty"`
	PhoneNumber    string          `json:"phoneNumber,omitempty"`
	BusinessHours  string          `json:"businessHours,omitempty"`
	Rating         float64         `json:"rating,omitempty"`
	Photos         []Photo         `json:"photos,omitempty"`
}
