// Package config defines the NexusBot TOML configuration
package config

import (
	"errors"
	"os"
	"regexp"

	"github.com/pelletier/go-toml"
)

const (
	DefaultListenAddress = "0.0.0.0:8545"

	DefaultCommandCooldownSec = 5

	DefaultExchangeIntervalSec = 20
	DefaultMarketIntervalSec   = 30
	DefaultAdapterTimeoutSec   = 10
	DefaultPageSize            = 20
	DefaultExchangeTopN        = 3
	DefaultMarketTopN          = 5
	DefaultLiquidityThreshold  = 5
	DefaultMarketHighlight     = 0.95

	DefaultFeeTTLMin = 180
)

var (
	ErrInvalidListenAddress = errors.New("invalid listen address")
	ErrInvalidCooldown      = errors.New("invalid command cooldown")
	ErrInvalidInterval      = errors.New("invalid refresh interval")
	ErrInvalidTimeout       = errors.New("invalid adapter timeout")
	ErrInvalidPageSize      = errors.New("invalid page size")
	ErrInvalidTopN          = errors.New("invalid top N")
	ErrInvalidThreshold     = errors.New("invalid liquidity threshold")
	ErrInvalidHighlight     = errors.New("invalid highlight price")
	ErrInvalidFeeTTL        = errors.New("invalid fee TTL")
	ErrMissingSelector      = errors.New("missing reference rate selector")
)

var listenAddressRegex = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}:\d+$`)

// Config defines the base-level NexusBot configuration
type Config struct {
	Server    *Server    `toml:"server"`
	Bot       *Bot       `toml:"bot"`
	Market    *Market    `toml:"market"`
	Fees      *Fees      `toml:"fees"`
	Reference *Reference `toml:"reference"`
}

// Server is the HTTP API configuration
type Server struct {
	// The associated CORS config, if any
	CORSConfig *CORS `toml:"cors_config"`

	// The address at which the server will be served.
	// Format should be: <IP>:<PORT>
	ListenAddress string `toml:"listen_address"`
}

// Bot is the chat bot configuration
type Bot struct {
	// The chat allowed to use the admin commands.
	// Admin commands are disabled if 0
	AdminChatID int64 `toml:"admin_chat_id"`

	// The per-chat cooldown between public commands
	CommandCooldownSec int `toml:"command_cooldown_sec"`
}

// Market is the order aggregation configuration
type Market struct {
	// Blocked counterparties, excluded from the market view
	Blocklist []string `toml:"blocklist"`

	// Payment methods of the market view
	PaymentMethods []string `toml:"payment_methods"`

	// Highlight marks market orders priced at or above it
	Highlight float64 `toml:"highlight"`

	ExchangeIntervalSec int `toml:"exchange_interval_sec"`
	MarketIntervalSec   int `toml:"market_interval_sec"`
	AdapterTimeoutSec   int `toml:"adapter_timeout_sec"`
	PageSize            int `toml:"page_size"`
	ExchangeTopN        int `toml:"exchange_top_n"`
	MarketTopN          int `toml:"market_top_n"`

	// Orders outside the amount limits are kept
	// if their recent order count exceeds the threshold
	LiquidityThreshold int `toml:"liquidity_threshold"`

	// Kucoin is disabled by default
	Kucoin bool `toml:"kucoin"`
}

// Fees is the fee quote configuration
type Fees struct {
	// Payment methods the fee is quoted against
	PaymentMethods []string `toml:"payment_methods"`

	TTLMin int `toml:"ttl_min"`
}

// Reference is the reference rate page configuration.
// Scraping is disabled if the URL is empty
type Reference struct {
	URL      string `toml:"url"`
	Selector string `toml:"selector"`
}

// DefaultConfig returns the default NexusBot configuration
func DefaultConfig() *Config {
	return &Config{
		Server: &Server{
			ListenAddress: DefaultListenAddress,
			CORSConfig:    DefaultCORSConfig(),
		},
		Bot: &Bot{
			CommandCooldownSec: DefaultCommandCooldownSec,
		},
		Market: &Market{
			Blocklist: []string{
				"FatumaHassan9009",
				"double⏩",
				"Fastious",
				"basso💵",
			},
			PaymentMethods:      []string{"Bank Transfer", "Bank", "Bank_Transfer"},
			Highlight:           DefaultMarketHighlight,
			ExchangeIntervalSec: DefaultExchangeIntervalSec,
			MarketIntervalSec:   DefaultMarketIntervalSec,
			AdapterTimeoutSec:   DefaultAdapterTimeoutSec,
			PageSize:            DefaultPageSize,
			ExchangeTopN:        DefaultExchangeTopN,
			MarketTopN:          DefaultMarketTopN,
			LiquidityThreshold:  DefaultLiquidityThreshold,
		},
		Fees: &Fees{
			PaymentMethods: []string{"Monobank"},
			TTLMin:         DefaultFeeTTLMin,
		},
		Reference: &Reference{},
	}
}

// ValidateConfig validates the NexusBot configuration
func ValidateConfig(config *Config) error {
	if err := ValidateServer(config.Server); err != nil {
		return err
	}

	if config.Bot.CommandCooldownSec < 0 {
		return ErrInvalidCooldown
	}

	// Validate the market settings
	market := config.Market

	if market.ExchangeIntervalSec <= 0 || market.MarketIntervalSec <= 0 {
		return ErrInvalidInterval
	}

	if market.AdapterTimeoutSec < 0 {
		return ErrInvalidTimeout
	}

	if market.PageSize <= 0 {
		return ErrInvalidPageSize
	}

	if market.ExchangeTopN <= 0 || market.MarketTopN <= 0 {
		return ErrInvalidTopN
	}

	if market.LiquidityThreshold < 0 {
		return ErrInvalidThreshold
	}

	if market.Highlight < 0 {
		return ErrInvalidHighlight
	}

	if config.Fees.TTLMin <= 0 {
		return ErrInvalidFeeTTL
	}

	if config.Reference.URL != "" && config.Reference.Selector == "" {
		return ErrMissingSelector
	}

	return nil
}

// ValidateServer validates the HTTP API configuration
func ValidateServer(config *Server) error {
	// Validate the listen address
	if !listenAddressRegex.MatchString(config.ListenAddress) {
		return ErrInvalidListenAddress
	}

	return nil
}

// Read reads the configuration from the given path.
// Sections missing from the file keep their defaults
func Read(path string) (*Config, error) {
	// Read the config file
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Parse it
	var cfg Config

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return nil, err
	}

	defaults := DefaultConfig()

	if cfg.Server == nil {
		cfg.Server = defaults.Server
	}

	if cfg.Bot == nil {
		cfg.Bot = defaults.Bot
	}

	if cfg.Market == nil {
		cfg.Market = defaults.Market
	}

	if cfg.Fees == nil {
		cfg.Fees = defaults.Fees
	}

	if cfg.Reference == nil {
		cfg.Reference = defaults.Reference
	}

	return &cfg, nil
}
