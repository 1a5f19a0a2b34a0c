package arbitrage

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/TarasTrach/NexusBot/fees"
	"github.com/TarasTrach/NexusBot/storage/types"
)

const (
	noOrdersText         = "No orders found 😔"
	noSuitableOrdersText = "No suitable orders found 😔"
	feeNotComputableText = "Unable to compute the fee right now, try again later."

	noCounterparty = "—"
	highlightMark  = " 🟢"
)

func exchangeHeading(
	params ExchangeParams,
	localAmount,
	discountedUSD,
	discountValueUSD decimal.Decimal,
) string {
	return strings.Join([]string{
		fmt.Sprintf(
			"USD amount: %.2f $  ->  %s(%s)USDT",
			params.Amount,
			discountedUSD.StringFixed(2),
			discountValueUSD.StringFixed(2),
		),
		fmt.Sprintf("UAH amount: %s ₴", localAmount.String()),
		fmt.Sprintf("Reference rate: %.2f ₴", params.Rate),
		fmt.Sprintf("Bank: %s", params.Bank),
	}, "\n")
}

func renderExchange(
	heading string,
	top []*types.Order,
	localAmount,
	discountedUSD decimal.Decimal,
	rate float64,
) string {
	blocks := make([]string, 0, len(top)+1)
	blocks = append(blocks, heading)

	for _, order := range top {
		received := fees.ReceivedAsset(localAmount, order.Price, discountedUSD)

		mark := ""
		if order.Price < rate {
			mark = highlightMark
		}

		blocks = append(blocks, strings.Join([]string{
			fmt.Sprintf("🏷 %s", order.Source),
			fmt.Sprintf("💰 %.2f ₴ | %s USDT%s", order.Price, received.StringFixed(2), mark),
			fmt.Sprintf("🔢 %s–%s ₴", formatNumber(order.MinLimit), formatNumber(order.MaxLimit)),
			fmt.Sprintf("🤝 %s", counterparty(order)),
		}, "\n"))
	}

	return strings.Join(blocks, "\n\n")
}

func exchangeAlert(price, rate float64) string {
	return fmt.Sprintf("Found %.2f ₴ < %.2f ₴", price, rate)
}

func renderMarket(cfg MarketConfig, top []*types.Order) string {
	heading := fmt.Sprintf(
		"🔴 SELL %s to %s (🔃 %d sec interval)",
		cfg.Asset,
		cfg.Fiat,
		int(cfg.Interval.Seconds()),
	)

	// Limits are in the currency the requester pays
	limitCurrency := cfg.Fiat

	if cfg.Side == types.SideBUY {
		heading = fmt.Sprintf(
			"🟢 BUY %s for %s (🔃 %d sec interval)",
			cfg.Asset,
			cfg.Fiat,
			int(cfg.Interval.Seconds()),
		)

		limitCurrency = cfg.Asset
	}

	blocks := make([]string, 0, len(top)+1)
	blocks = append(blocks, heading)

	for i, order := range top {
		mark := ""
		if cfg.Highlight > 0 && order.Price >= cfg.Highlight {
			mark = highlightMark
		}

		blocks = append(blocks, strings.Join([]string{
			fmt.Sprintf("#%d  🏷 %s", i+1, order.Source),
			fmt.Sprintf("💰 %s %s%s", formatNumber(order.Price), cfg.Fiat, mark),
			fmt.Sprintf(
				"🔢 %s – %s %s",
				formatNumber(order.MinLimit),
				formatNumber(order.MaxLimit),
				limitCurrency,
			),
			fmt.Sprintf("🤝 %s", counterparty(order)),
		}, "\n"))
	}

	return strings.Join(blocks, "\n\n")
}

func renderFee(params types.FeeParams, result *fees.Result) string {
	return strings.Join([]string{
		fmt.Sprintf("💸 PayPal/Payoneer -> USDT fee: %s%%", result.FeePercent.StringFixed(1)),
		"",
		fmt.Sprintf("💰 Order price: %.2f ₴ (%s)", result.Order.Price, result.Order.Source),
		fmt.Sprintf("🔢 %s $ at %.2f ₴ = %s ₴", formatNumber(params.Amount), params.Rate, result.LocalAmount.String()),
		fmt.Sprintf("🏷 Discount: %s%%", formatNumber(params.Discount)),
	}, "\n")
}

// formatNumber renders the shortest exact form of the value
func formatNumber(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func counterparty(order *types.Order) string {
	if order.Counterparty == "" {
		return noCounterparty
	}

	return order.Counterparty
}
