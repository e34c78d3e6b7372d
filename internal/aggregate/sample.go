package aggregate

import (
	"time"

	"github.com/paymap-jp/paymap-cli/internal/model"
	"github.com/paymap-jp/paymap-cli/internal/payment"
)

// sampleVerified is the verification date stamped on the sample set.
var sampleVerified = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

// SampleStores returns the fixed offline sample set (Kokura station area),
// used for development and as the fallback when the directory provider is
// completely unavailable. The data is hand-entered, so it carries medium
// trust. Returns a fresh slice on each call.
func SampleStores() []model.Store {
	return []model.Store{
		{
			ID:             "sample-1",
			Name:           "セブン-イレブン 小倉駅前店",
			Address:        "北九州市小倉北区浅野1-1-1",
			Latitude:       33.8867,
			Longitude:      130.8828,
			Category:       model.CategoryConvenience,
			PaymentMethods: sampleMethods("paypay", "visa", "nimoca", "cash"),
			LastVerified:   "2024-01-15",
			TrustScore:     model.TrustMedium,
			Description:    "小倉駅前のコンビニエンスストア",
			BusinessHours:  "24時間営業",
		},
		{
			ID:             "sample-2",
			Name:           "マクドナルド 小倉駅前店",
			Address:        "北九州市小倉北区浅野1-1-2",
			Latitude:       33.8870,
			Longitude:      130.8830,
			Category:       model.CategoryRestaurant,
			PaymentMethods: sampleMethods("paypay", "rakutenpay", "visa", "cash"),
			LastVerified:   "2024-01-10",
			TrustScore:     model.TrustMedium,
			Description:    "小倉駅前のファストフード店",
			BusinessHours:  "6:00-24:00",
		},
		{
			ID:             "sample-3",
			Name:           "ゆめマート 小倉店",
			Address:        "北九州市小倉北区京町3-1-1",
			Latitude:       33.8855,
			Longitude:      130.8812,
			Category:       model.CategorySupermarket,
			PaymentMethods: sampleMethods("visa", "mastercard", "waon", "suica", "cash"),
			LastVerified:   "2024-01-12",
			TrustScore:     model.TrustMedium,
			Description:    "小倉駅近くのスーパーマーケット",
			BusinessHours:  "9:00-22:00",
		},
		{
			ID:             "sample-4",
			Name:           "セリア 小倉駅ビル店",
			Address:        "北九州市小倉北区浅野1-1-1",
			Latitude:       33.8869,
			Longitude:      130.8825,
			Category:       model.CategoryRetail,
			PaymentMethods: sampleMethods("visa", "cash"),
			LastVerified:   "2024-01-08",
			TrustScore:     model.TrustMedium,
			Description:    "小倉駅ビル内の100円ショップ",
			BusinessHours:  "10:00-21:00",
		},
	}
}

func sampleMethods(ids ...string) []model.PaymentMethod {
	methods := make([]model.PaymentMethod, 0, len(ids))
	for _, id := range ids {
		methods = append(methods, model.PaymentMethod{
			ID:          id,
			Name:        payment.NameOf(id),
			Icon:        payment.IconOf(id),
			IsSupported: true,
			VerifiedAt:  sampleVerified,
			Category:    payment.CategoryOf(id),
		})
	}
	return methods
}
