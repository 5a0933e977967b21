// Package pricing holds the reseller markup and commission rules. Every
// function is pure; amounts are whole rupiah.
package pricing

// Price bounds for a reseller selling price.
const (
	MinPrice int64 = 1_000
	MaxPrice int64 = 100_000_000
)

// ComputeMarkup is sellingPrice - basePrice. Negative markup is representable.
func ComputeMarkup(basePrice, sellingPrice int64) int64 {
	return sellingPrice - basePrice
}

// ComputeCommission returns floor(markup * rate / 100). The platform's share
// is never rounded up, including for negative markup. Rates below zero count as zero.
func ComputeCommission(basePrice, sellingPrice int64, ratePercent int) int64 {
	if ratePercent <= 0 {
		return 0
	}
	n := ComputeMarkup(basePrice, sellingPrice) * int64(ratePercent)
	q := n / 100
	if n%100 != 0 && n < 0 {
		q--
	}
	return q
}

// ComputeMarkupPercentage is markup relative to base price, in percent. 0 when basePrice is 0.
func ComputeMarkupPercentage(basePrice, sellingPrice int64) float64 {
	if basePrice == 0 {
		return 0
	}
	return float64(ComputeMarkup(basePrice, sellingPrice)) / float64(basePrice) * 100
}

// ComputeEarnings is what the reseller keeps per unit: markup minus commission.
func ComputeEarnings(basePrice, sellingPrice int64, ratePercent int) int64 {
	return ComputeMarkup(basePrice, sellingPrice) - ComputeCommission(basePrice, sellingPrice, ratePercent)
}

type Breakdown struct {
	BasePrice        int64   `json:"base_price"`
	SellingPrice     int64   `json:"selling_price"`
	CommissionRate   int     `json:"commission_rate"`
	Markup           int64   `json:"markup"`
	MarkupPercentage float64 `json:"markup_percentage"`
	Commission       int64   `json:"commission"`
	Earnings         int64   `json:"earnings"`
}

// Quote computes every derived figure for one unit at once.
func Quote(basePrice, sellingPrice int64, ratePercent int) Breakdown {
	return Breakdown{
		BasePrice:        basePrice,
		SellingPrice:     sellingPrice,
		CommissionRate:   ratePercent,
		Markup:           ComputeMarkup(basePrice, sellingPrice),
		MarkupPercentage: ComputeMarkupPercentage(basePrice, sellingPrice),
		Commission:       ComputeCommission(basePrice, sellingPrice, ratePercent),
		Earnings:         ComputeEarnings(basePrice, sellingPrice, ratePercent),
	}
}
