// Package arbitrage composes the aggregated order books, the ranking
// and the fee calculator into rendered views and fee quotes
package arbitrage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/TarasTrach/NexusBot/fees"
	"github.com/TarasTrach/NexusBot/live"
	"github.com/TarasTrach/NexusBot/rank"
	"github.com/TarasTrach/NexusBot/storage/types"
)

// Searcher aggregates the orders matching a query
type Searcher interface {
	// SearchAll returns the orders of all sources that answered
	SearchAll(context.Context, *types.Query) []*types.Order
}

// ExchangeParams are the frozen parameters of an exchange view
type ExchangeParams struct {
	Bank     string
	Amount   float64 // USD
	Rate     float64 // reference rate
	Discount float64 // percent
}

// Service renders the arbitrage views
type Service struct {
	searcher Searcher
	logger   *slog.Logger

	cfg Config
}

// New creates a new arbitrage service
func New(searcher Searcher, cfg Config, opts ...Option) *Service {
	s := &Service{
		searcher: searcher,
		cfg:      cfg,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	// Apply the options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Orders returns the ranked orders matching the query
func (s *Service) Orders(
	ctx context.Context,
	query *types.Query,
	filters rank.Filters,
) []*types.Order {
	return rank.Rank(s.searcher.SearchAll(ctx, query), query.Side, filters)
}

// ExchangeView returns the live view of buying the asset for the local amount.
// The view alerts when the best order is priced below the reference rate
func (s *Service) ExchangeView(params ExchangeParams) (live.RenderFunc, live.ViewOptions) {
	var (
		cfg = s.cfg.Exchange

		localAmount                     = fees.LocalAmount(params.Amount, params.Rate)
		discountedUSD, discountValueUSD = fees.Discounted(params.Amount, params.Discount)
		target                          = localAmount.InexactFloat64()

		heading = exchangeHeading(params, localAmount, discountedUSD, discountValueUSD)
	)

	query := &types.Query{
		TargetAmount:   &target,
		Asset:          cfg.Asset,
		Fiat:           cfg.Fiat,
		Side:           types.SideBUY,
		PaymentMethods: []string{params.Bank},
		Page:           1,
		PageSize:       cfg.PageSize,
	}

	filters := rank.Filters{
		TargetAmount:       &target,
		LiquidityThreshold: cfg.LiquidityThreshold,
		Limit:              cfg.TopN,
	}

	render := func(ctx context.Context) live.Frame {
		orders := s.searcher.SearchAll(ctx, query)
		if len(orders) == 0 {
			return live.Frame{Text: heading + "\n\n" + noOrdersText}
		}

		top := rank.Rank(orders, types.SideBUY, filters)
		if len(top) == 0 {
			return live.Frame{Text: heading + "\n\n" + noSuitableOrdersText}
		}

		s.logger.Debug(
			"rendered exchange view",
			"orders", len(orders),
			"eligible", len(top),
			"best", top[0].Price,
		)

		best := top[0].Price

		return live.Frame{
			Best: &best,
			Text: renderExchange(heading, top, localAmount, discountedUSD, params.Rate),
		}
	}

	return render, live.ViewOptions{
		AlertText: func(price float64) string {
			return exchangeAlert(price, params.Rate)
		},
		Interval:   cfg.Interval,
		AlertBelow: params.Rate,
	}
}

// MarketView returns the live view of the configured market
func (s *Service) MarketView() (live.RenderFunc, live.ViewOptions) {
	cfg := s.cfg.Market

	query := &types.Query{
		Asset:          cfg.Asset,
		Fiat:           cfg.Fiat,
		Side:           cfg.Side,
		PaymentMethods: cfg.PaymentMethods,
		Page:           1,
		PageSize:       cfg.PageSize,
	}

	filters := rank.Filters{
		Exclude: rank.Blocklist(cfg.Blocklist...),
		Limit:   cfg.TopN,
	}

	render := func(ctx context.Context) live.Frame {
		orders := s.searcher.SearchAll(ctx, query)
		if len(orders) == 0 {
			return live.Frame{Text: noOrdersText}
		}

		return live.Frame{
			Text: renderMarket(cfg, rank.Rank(orders, cfg.Side, filters)),
		}
	}

	return render, live.ViewOptions{
		Interval: cfg.Interval,
	}
}

// FeeQuote computes the fee percent of the conversion route, and renders it.
// A nil fee percent means the fee is not computable for the params
func (s *Service) FeeQuote(ctx context.Context, params types.FeeParams) (*float64, string, error) {
	if params.Rate <= 0 || params.Amount <= 0 {
		return nil, feeNotComputableText, nil
	}

	var (
		cfg    = s.cfg.Exchange
		target = fees.LocalAmount(params.Amount, params.Rate).InexactFloat64()
	)

	query := &types.Query{
		TargetAmount:   &target,
		Asset:          cfg.Asset,
		Fiat:           cfg.Fiat,
		Side:           types.SideBUY,
		PaymentMethods: s.cfg.Fee.PaymentMethods,
		Page:           1,
		PageSize:       cfg.PageSize,
	}

	orders := s.searcher.SearchAll(ctx, query)

	// An interrupted search is not a quote
	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("unable to quote fee: %w", err)
	}

	eligible := rank.Rank(orders, types.SideBUY, rank.Filters{
		TargetAmount:       &target,
		LiquidityThreshold: cfg.LiquidityThreshold,
	})

	order, err := fees.SelectOrder(eligible, params.RankIndex)
	if err != nil {
		return s.notComputable(params, len(eligible), err)
	}

	result, err := fees.ComputeFee(order, params.Rate, params.Amount, params.Discount)
	if err != nil {
		return s.notComputable(params, len(eligible), err)
	}

	feePercent := result.FeePercentFloat()

	return &feePercent, renderFee(params, result), nil
}

func (s *Service) notComputable(
	params types.FeeParams,
	eligible int,
	err error,
) (*float64, string, error) {
	if !errors.Is(err, fees.ErrNotComputable) {
		return nil, "", fmt.Errorf("unable to compute fee: %w", err)
	}

	s.logger.Info(
		"fee not computable",
		"rate", params.Rate,
		"amount", params.Amount,
		"eligible", eligible,
	)

	return nil, feeNotComputableText, nil
}
