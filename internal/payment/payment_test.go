package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paymap-jp/paymap-cli/internal/model"
	"github.com/paymap-jp/paymap-cli/pkg/overpass"
)

var now = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func TestNormalize_YesTagsOnly(t *testing.T) {
	el := overpass.Element{
		ID:   1,
		Kind: overpass.KindNode,
		Tags: map[string]string{
			"name":               "セブンイレブン",
			"addr:street":        "浅野",
			"shop":               "convenience",
			"payment:paypay":     "yes",
			"payment:visa":       "yes",
			"payment:mastercard": "no",
			"payment:amex":       "unknown",
		},
	}

	methods := Normalize(el, now)

	ids := make(map[string]model.PaymentMethod, len(methods))
	for _, m := range methods {
		ids[m.ID] = m
	}
	require.Len(t, methods, 2)

	pp, ok := ids["paypay"]
	require.True(t, ok)
	assert.Equal(t, "PayPay", pp.Name)
	assert.Equal(t, model.PaymentQR, pp.Category)
	assert.True(t, pp.IsSupported)
	assert.Equal(t, now, pp.VerifiedAt)
	assert.Equal(t, "セブンイレブン", pp.StoreName)
	assert.Equal(t, "浅野", pp.StoreAddress)

	_, ok = ids["visa"]
	assert.True(t, ok)
}

func TestNormalize_OnlyValueCountsAsSupported(t *testing.T) {
	el := overpass.Element{
		ID:   2,
		Kind: overpass.KindNode,
		Tags: map[string]string{"payment:cash": "only"},
	}
	methods := Normalize(el, now)
	require.Len(t, methods, 1)
	assert.Equal(t, "cash", methods[0].ID)
}

func TestNormalize_UnknownMethodFallsBack(t *testing.T) {
	el := overpass.Element{
		ID:   3,
		Kind: overpass.KindNode,
		Tags: map[string]string{"payment:mysterycoin": "yes"},
	}
	methods := Normalize(el, now)
	require.Len(t, methods, 1)
	assert.Equal(t, "mysterycoin", methods[0].ID)
	assert.Equal(t, "mysterycoin", methods[0].Name)
	assert.Equal(t, "💳", methods[0].Icon)
	assert.Equal(t, model.PaymentCash, methods[0].Category)
}

func TestNormalize_DeterministicOrder(t *testing.T) {
	el := overpass.Element{
		ID:   6,
		Kind: overpass.KindNode,
		Tags: map[string]string{
			"payment:visa":       "yes",
			"payment:cash":       "yes",
			"payment:paypay":     "yes",
			"payment:suica":      "yes",
			"payment:jcb":        "yes",
			"payment:nanaco":     "yes",
			"payment:mastercard": "yes",
		},
	}

	want := []string{"cash", "jcb", "mastercard", "nanaco", "paypay", "suica", "visa"}
	for i := 0; i < 50; i++ {
		methods := Normalize(el, now)
		ids := make([]string, 0, len(methods))
		for _, m := range methods {
			ids = append(ids, m.ID)
		}
		require.Equal(t, want, ids)
	}
}

func TestNormalize_NoPaymentTags(t *testing.T) {
	el := overpass.Element{
		ID:   4,
		Kind: overpass.KindNode,
		Tags: map[string]string{"name": "店", "shop": "convenience"},
	}
	assert.Empty(t, Normalize(el, now))
}

func TestNormalize_AddrFullPreferredOverStreet(t *testing.T) {
	el := overpass.Element{
		ID:   5,
		Kind: overpass.KindNode,
		Tags: map[string]string{
			"addr:full":   "北九州市小倉北区浅野1-1-1",
			"addr:street": "浅野",
			"payment:jcb": "yes",
		},
	}
	methods := Normalize(el, now)
	require.Len(t, methods, 1)
	assert.Equal(t, "北九州市小倉北区浅野1-1-1", methods[0].StoreAddress)
}

func TestDefaults_FloorForEveryCategory(t *testing.T) {
	for _, cat := range []model.StoreCategory{
		model.CategoryConvenience,
		model.CategoryRestaurant,
		model.CategorySupermarket,
		model.CategoryRetail,
		model.CategoryOther,
	} {
		methods := Defaults(cat, now)
		require.NotEmpty(t, methods, "category %s", cat)

		ids := make([]string, 0, len(methods))
		for _, m := range methods {
			ids = append(ids, m.ID)
			assert.True(t, m.IsSupported)
			assert.Equal(t, now, m.VerifiedAt)
		}
		assert.Contains(t, ids, "cash")
		assert.Contains(t, ids, "visa")
		assert.Contains(t, ids, "mastercard")
		assert.Contains(t, ids, "jcb")
	}
}

func TestDefaults_ConvenienceSet(t *testing.T) {
	methods := Defaults(model.CategoryConvenience, now)
	ids := make([]string, 0, len(methods))
	for _, m := range methods {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{
		"cash", "visa", "mastercard", "jcb",
		"edy", "nanaco", "waon", "suica", "pasmo",
		"paypay", "rakutenpay", "linepay",
	}, ids)
}

func TestDefaults_SupermarketGetsEmoneyButNoQR(t *testing.T) {
	methods := Defaults(model.CategorySupermarket, now)
	ids := make([]string, 0, len(methods))
	for _, m := range methods {
		ids = append(ids, m.ID)
	}
	assert.Contains(t, ids, "suica")
	assert.Contains(t, ids, "waon")
	assert.NotContains(t, ids, "paypay")
}

func TestDefaults_RestaurantBaseOnly(t *testing.T) {
	methods := Defaults(model.CategoryRestaurant, now)
	assert.Len(t, methods, 4)
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, model.PaymentQR, CategoryOf("paypay"))
	assert.Equal(t, model.PaymentIC, CategoryOf("suica"))
	assert.Equal(t, model.PaymentCard, CategoryOf("visa"))
	assert.Equal(t, model.PaymentNFC, CategoryOf("edy"))
	assert.Equal(t, model.PaymentCash, CategoryOf("cash"))
	assert.Equal(t, model.PaymentCash, CategoryOf("nonexistent"))
}
