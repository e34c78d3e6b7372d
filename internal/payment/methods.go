// Package payment normalizes tag-store payment assertions into canonical
// payment methods and provides the category-conditioned fallback set.
package payment

import "github.com/paymap-jp/paymap-cli/internal/model"

// genericCardIcon is used for methods without a dedicated icon.
const genericCardIcon = "💳"

// methodNames maps canonical method IDs to display names.
var methodNames = map[string]string{
	"paypay":      "PayPay",
	"rakutenpay":  "楽天ペイ",
	"linepay":     "LINE Pay",
	"merpay":      "メルペイ",
	"dpay":        "d払い",
	"origami":     "Origami Pay",
	"alipay":      "Alipay",
	"wechat":      "WeChat Pay",
	"suica":       "Suica",
	"pasmo":       "PASMO",
	"icoca":       "ICOCA",
	"kitaca":      "Kitaca",
	"toica":       "TOICA",
	"manaca":      "manaca",
	"pitapa":      "PiTaPa",
	"nimoca":      "nimoca",
	"hayakaken":   "はやかけん",
	"sugoca":      "SUGOCA",
	"visa":        "Visa",
	"mastercard":  "Mastercard",
	"jcb":         "JCB",
	"amex":        "American Express",
	"diners":      "Diners Club",
	"discover":    "Discover",
	"debit":       "デビットカード",
	"edy":         "Edy",
	"nanaco":      "nanaco",
	"waon":        "WAON",
	"cash":        "現金",
	"coins":       "硬貨",
	"notes":       "紙幣",
	"cheque":      "小切手",
	"contactless": "非接触決済",
	"applepay":    "Apple Pay",
	"googlepay":   "Google Pay",
	"samsungpay":  "Samsung Pay",
}

// methodIcons maps canonical method IDs to icons.
var methodIcons = map[string]string{
	"paypay":      "💰",
	"rakutenpay":  "🎁",
	"linepay":     "💬",
	"merpay":      "🦄",
	"dpay":        "📱",
	"origami":     "🦋",
	"alipay":      "🅰️",
	"wechat":      "💚",
	"suica":       "🍎",
	"pasmo":       "🟦",
	"icoca":       "🟪",
	"kitaca":      "🟨",
	"toica":       "🟧",
	"manaca":      "🟩",
	"pitapa":      "🟫",
	"nimoca":      "🟥",
	"hayakaken":   "🟪",
	"sugoca":      "🟦",
	"cash":        "💴",
	"coins":       "🪙",
	"notes":       "💵",
	"cheque":      "💰",
	"contactless": "📱",
	"applepay":    "🍎",
	"googlepay":   "📱",
	"samsungpay":  "📱",
}

// methodCategories maps canonical method IDs to payment categories.
var methodCategories = map[string]model.PaymentCategory{
	"paypay":      model.PaymentQR,
	"rakutenpay":  model.PaymentQR,
	"linepay":     model.PaymentQR,
	"merpay":      model.PaymentQR,
	"dpay":        model.PaymentQR,
	"origami":     model.PaymentQR,
	"alipay":      model.PaymentQR,
	"wechat":      model.PaymentQR,
	"suica":       model.PaymentIC,
	"pasmo":       model.PaymentIC,
	"icoca":       model.PaymentIC,
	"kitaca":      model.PaymentIC,
	"toica":       model.PaymentIC,
	"manaca":      model.PaymentIC,
	"pitapa":      model.PaymentIC,
	"nimoca":      model.PaymentIC,
	"hayakaken":   model.PaymentIC,
	"sugoca":      model.PaymentIC,
	"visa":        model.PaymentCard,
	"mastercard":  model.PaymentCard,
	"jcb":         model.PaymentCard,
	"amex":        model.PaymentCard,
	"diners":      model.PaymentCard,
	"discover":    model.PaymentCard,
	"debit":       model.PaymentCard,
	"edy":         model.PaymentNFC,
	"nanaco":      model.PaymentNFC,
	"waon":        model.PaymentNFC,
	"cash":        model.PaymentCash,
	"coins":       model.PaymentCash,
	"notes":       model.PaymentCash,
	"cheque":      model.PaymentCash,
	"contactless": model.PaymentNFC,
	"applepay":    model.PaymentNFC,
	"googlepay":   model.PaymentNFC,
	"samsungpay":  model.PaymentNFC,
}

// NameOf returns the display name for a method ID. Unknown IDs pass through.
func NameOf(id string) string {
	if name, ok := methodNames[id]; ok {
		return name
	}
	return id
}

// IconOf returns the icon for a method ID, defaulting to a generic card.
func IconOf(id string) string {
	if icon, ok := methodIcons[id]; ok {
		return icon
	}
	return genericCardIcon
}

// CategoryOf returns the payment category for a method ID. The mapping is
// total: unknown IDs fall back to cash.
func CategoryOf(id string) model.PaymentCategory {
	if cat, ok := methodCategories[id]; ok {
		return cat
	}
	return model.PaymentCash
}
