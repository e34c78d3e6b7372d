package model

import "time"

// PaymentCategory groups payment methods by how they are presented at the register.
type PaymentCategory string

// Payment method categories.
const (
	PaymentQR   PaymentCategory = "qr"
	PaymentNFC  PaymentCategory = "nfc"
	PaymentCard PaymentCategory = "card"
	PaymentIC   PaymentCategory = "ic"
	PaymentCash PaymentCategory = "cash"
)

// PaymentMethod is a single payment option a store accepts. ID is the
// canonical lowercase token (e.g. "paypay") and is the sole key used for
// deduplication and selection.
type PaymentMethod struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Icon        string          `json:"icon"`
	IsSupported bool            `json:"isSupported"`
	VerifiedAt  time.Time       `json:"verifiedAt"`
	Category    PaymentCategory `json:"category"`

	// Source store metadata carried from the tag provider, used for
	// record matching. Empty for resolver defaults.
	StoreName    string `json:"storeName,omitempty"`
	StoreAddress string `json:"storeAddress,omitempty"`
}

// DedupePaymentMethods removes duplicate methods by ID, first occurrence wins.
func DedupePaymentMethods(methods []PaymentMethod) []PaymentMethod {
	seen := make(map[string]struct{}, len(methods))
	out := methods[:0:0]
	for _, m := range methods {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}

// SortSupportedFirst orders methods so supported ones render before
// unsupported ones, preserving relative order within each group.
func SortSupportedFirst(methods []PaymentMethod) []PaymentMethod {
	out := make([]PaymentMethod, 0, len(methods))
	for _, m := range methods {
		if m.IsSupported {
			out = append(out, m)
		}
	}
	for _, m := range methods {
		if !m.IsSupported {
			out = append(out, m)
		}
	}
	return out
}
