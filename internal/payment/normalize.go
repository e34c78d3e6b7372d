package payment

import (
	"sort"
	"strings"
	"time"

	"github.com/paymap-jp/paymap-cli/internal/model"
	"github.com/paymap-jp/paymap-cli/pkg/overpass"
)

const tagPrefix = "payment:"

// Normalize converts a tag-store element's payment:* assertions into
// canonical payment methods. The tag store records only positive assertions,
// so every produced method is supported and stamped with the query time.
// Values other than "yes"/"only" are ignored. Tags are visited in sorted key
// order so the method list is deterministic.
func Normalize(el overpass.Element, now time.Time) []model.PaymentMethod {
	name := el.Tags["name"]
	address := el.Tags["addr:full"]
	if address == "" {
		address = el.Tags["addr:street"]
	}

	tags := make([]string, 0, len(el.Tags))
	for tag := range el.Tags {
		if strings.HasPrefix(tag, tagPrefix) {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)

	var methods []model.PaymentMethod
	for _, tag := range tags {
		if value := el.Tags[tag]; value != "yes" && value != "only" {
			continue
		}
		id := strings.TrimPrefix(tag, tagPrefix)
		methods = append(methods, model.PaymentMethod{
			ID:           id,
			Name:         NameOf(id),
			Icon:         IconOf(id),
			IsSupported:  true,
			VerifiedAt:   now,
			Category:     CategoryOf(id),
			StoreName:    name,
			StoreAddress: address,
		})
	}
	return model.DedupePaymentMethods(methods)
}
