package arbitrage

import (
	"time"

	"github.com/TarasTrach/NexusBot/provider/currencies"
	"github.com/TarasTrach/NexusBot/rank"
	"github.com/TarasTrach/NexusBot/storage/types"
)

// ExchangeConfig is the exchange live view configuration
type ExchangeConfig struct {
	Asset    types.Currency
	Fiat     types.Currency
	Interval time.Duration

	PageSize           int
	TopN               int
	LiquidityThreshold int
}

// MarketConfig is the market live view configuration
type MarketConfig struct {
	Asset types.Currency
	Fiat  types.Currency
	Side  types.Side

	PaymentMethods []string
	Blocklist      []string

	Interval time.Duration

	// Highlight marks orders priced at or above it. Disabled if 0
	Highlight float64

	PageSize int
	TopN     int
}

// FeeConfig is the fee quote configuration
type FeeConfig struct {
	// PaymentMethods narrow the orders a fee is quoted against
	PaymentMethods []string
}

// Config is the arbitrage service configuration
type Config struct {
	Exchange ExchangeConfig
	Market   MarketConfig
	Fee      FeeConfig
}

// DefaultConfig returns the default arbitrage configuration
func DefaultConfig() Config {
	return Config{
		Exchange: ExchangeConfig{
			Asset:              currencies.USDT,
			Fiat:               currencies.UAH,
			Interval:           20 * time.Second,
			PageSize:           20,
			TopN:               3,
			LiquidityThreshold: rank.DefaultLiquidityThreshold,
		},
		Market: MarketConfig{
			Asset:          currencies.USDT,
			Fiat:           currencies.EUR,
			Side:           types.SideSELL,
			PaymentMethods: []string{"Bank Transfer", "Bank", "Bank_Transfer"},
			Blocklist: []string{
				"FatumaHassan9009",
				"double⏩",
				"Fastious",
				"basso💵",
			},
			Interval:  30 * time.Second,
			Highlight: 0.95,
			PageSize:  20,
			TopN:      5,
		},
		Fee: FeeConfig{
			PaymentMethods: []string{"Monobank"},
		},
	}
}
