// Package fees computes the effective fee of a fiat to crypto conversion route
package fees

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"github.com/TarasTrach/NexusBot/storage/types"
)

// ErrNotComputable is returned when the inputs don't admit a fee
var ErrNotComputable = errors.New("fee not computable")

var hundred = decimal.NewFromInt(100)

// Result is a single fee computation
type Result struct {
	Order *types.Order

	LocalAmount      decimal.Decimal // the USD amount in local currency, floored to tens
	DiscountedUSD    decimal.Decimal // the USD amount, less the discount
	DiscountValueUSD decimal.Decimal // the discount itself, in USD
	ReceivedAsset    decimal.Decimal // the asset left over after covering the discounted amount
	ExtraCost        decimal.Decimal
	FullFee          decimal.Decimal
	FeePercent       decimal.Decimal // rounded to 1 decimal place
}

// FeePercentFloat returns the fee percent as a float
func (r *Result) FeePercentFloat() float64 {
	return r.FeePercent.InexactFloat64()
}

// LocalAmount converts the USD amount into local currency at the rate,
// floored to the nearest 10 units.
// The floor runs on the float64 product, so 700 * 41.3 floors to 28900
func LocalAmount(usdAmount, referenceRate float64) decimal.Decimal {
	return decimal.NewFromFloat(math.Floor(usdAmount*referenceRate/10) * 10)
}

// ReceivedAsset is the asset amount bought for the local amount at the price,
// less the discounted USD amount
func ReceivedAsset(localAmount decimal.Decimal, price float64, discountedUSD decimal.Decimal) decimal.Decimal {
	return localAmount.
		Div(decimal.NewFromFloat(price)).
		Sub(discountedUSD)
}

// Discounted splits the USD amount into the discounted amount, and the discount value
func Discounted(usdAmount, discountPercent float64) (decimal.Decimal, decimal.Decimal) {
	var (
		usd      = decimal.NewFromFloat(usdAmount)
		fraction = decimal.NewFromFloat(discountPercent).Div(hundred)
	)

	return usd.Mul(decimal.NewFromInt(1).Sub(fraction)), usd.Mul(fraction)
}

// ComputeFee computes the fee of buying the asset through the order
func ComputeFee(
	order *types.Order,
	referenceRate,
	usdAmount,
	discountPercent float64,
) (*Result, error) {
	if order == nil || !finitePositive(order.Price) {
		return nil, ErrNotComputable
	}

	if !finitePositive(referenceRate) || !finitePositive(usdAmount) {
		return nil, ErrNotComputable
	}

	if math.IsNaN(discountPercent) || math.IsInf(discountPercent, 0) {
		return nil, ErrNotComputable
	}

	localAmount := LocalAmount(usdAmount, referenceRate)
	discountedUSD, discountValueUSD := Discounted(usdAmount, discountPercent)

	var (
		usd           = decimal.NewFromFloat(usdAmount)
		receivedAsset = ReceivedAsset(localAmount, order.Price, discountedUSD)
		extraCost     = discountValueUSD.Sub(receivedAsset)
		fullFee       = discountValueUSD.Add(extraCost)
	)

	return &Result{
		Order:            order,
		LocalAmount:      localAmount,
		DiscountedUSD:    discountedUSD,
		DiscountValueUSD: discountValueUSD,
		ReceivedAsset:    receivedAsset,
		ExtraCost:        extraCost,
		FullFee:          fullFee,
		FeePercent:       fullFee.Div(usd).Mul(hundred).Round(1),
	}, nil
}

// SelectOrder picks the order at the rank index out of the sorted eligible orders.
// The index is clamped to the available orders
func SelectOrder(eligible []*types.Order, rankIndex int) (*types.Order, error) {
	// A single order is not a reliable signal
	if len(eligible) < 2 {
		return nil, ErrNotComputable
	}

	if rankIndex < 0 {
		rankIndex = 0
	}

	if rankIndex > len(eligible)-1 {
		rankIndex = len(eligible) - 1
	}

	return eligible[rankIndex], nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
