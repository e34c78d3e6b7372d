package payment

import (
	"time"

	"github.com/paymap-jp/paymap-cli/internal/model"
)

// Default payment-method sets by store category. These are a product
// heuristic, not measured data; stores built from them carry medium trust.
var (
	baseDefaults   = []string{"cash", "visa", "mastercard", "jcb"}
	emoneyDefaults = []string{"edy", "nanaco", "waon", "suica", "pasmo"}
	qrDefaults     = []string{"paypay", "rakutenpay", "linepay"}
)

// Defaults returns the fallback payment-method set for a category. Always
// non-empty: every category gets at least cash and the major card networks.
func Defaults(category model.StoreCategory, now time.Time) []model.PaymentMethod {
	ids := make([]string, 0, len(baseDefaults)+len(emoneyDefaults)+len(qrDefaults))
	ids = append(ids, baseDefaults...)

	// Convenience stores and supermarkets commonly take e-money and
	// transit IC; convenience stores additionally take QR wallets.
	if category == model.CategoryConvenience || category == model.CategorySupermarket {
		ids = append(ids, emoneyDefaults...)
	}
	if category == model.CategoryConvenience {
		ids = append(ids, qrDefaults...)
	}

	methods := make([]model.PaymentMethod, 0, len(ids))
	for _, id := range ids {
		methods = append(methods, model.PaymentMethod{
			ID:          id,
			Name:        NameOf(id),
			Icon:        IconOf(id),
			IsSupported: true,
			VerifiedAt:  now,
			Category:    CategoryOf(id),
		})
	}
	return methods
}
