package types

import "time"

type Currency string

func (c Currency) String() string {
	return string(c)
}

// Side is the requester's trade direction
type Side string

const (
	SideBUY  Side = "BUY"  // acquire the asset, pay fiat
	SideSELL Side = "SELL" // dispose of the asset, receive fiat
)

func (s Side) String() string {
	return string(s)
}

// Valid returns true if the side is one of the known directions
func (s Side) Valid() bool {
	return s == SideBUY || s == SideSELL
}

// Source is the exchange an order was aggregated from
type Source string

const (
	SourceBinance Source = "Binance"
	SourceOKX     Source = "OKX"
	SourceBybit   Source = "Bybit"
	SourceKucoin  Source = "Kucoin"
)

func (s Source) String() string {
	return string(s)
}

// Order is a single P2P advertisement, normalized across exchanges
type Order struct {
	RecentOrderCount *int     `json:"recent_order_count,omitempty"`
	ID               string   `json:"id"`
	Counterparty     string   `json:"counterparty,omitempty"` // empty if the exchange didn't report one
	Source           Source   `json:"source"`
	PaymentMethods   []string `json:"payment_methods,omitempty"`
	Price            float64  `json:"price"`
	Quantity         float64  `json:"quantity"`
	MinLimit         float64  `json:"min_limit"`
	MaxLimit         float64  `json:"max_limit"`
}

// Valid checks the order invariants (positive price, ordered limits)
func (o *Order) Valid() bool {
	return o.Price > 0 && o.MinLimit <= o.MaxLimit
}

// Query is a single aggregation request. It is not modified once issued
type Query struct {
	TargetAmount   *float64 `json:"target_amount,omitempty"`
	Asset          Currency `json:"asset"`
	Fiat           Currency `json:"fiat"`
	Side           Side     `json:"side"`
	PaymentMethods []string `json:"payment_methods,omitempty"`
	Page           int      `json:"page"`
	PageSize       int      `json:"page_size"`
}

// PageOrDefault returns the query page, starting at 1
func (q *Query) PageOrDefault() int {
	if q.Page <= 0 {
		return 1
	}

	return q.Page
}

// PageSizeOrDefault returns the query page size, 20 if unset
func (q *Query) PageSizeOrDefault() int {
	if q.PageSize <= 0 {
		return 20
	}

	return q.PageSize
}

// FeeParams is the full parameter tuple of a fee computation.
// Two computations are interchangeable only if their params are equal
type FeeParams struct {
	Rate      float64 `json:"rate"`
	Amount    float64 `json:"amount"`
	Discount  float64 `json:"discount"`
	RankIndex int     `json:"rank_index"`
}

// FeeEntry is a memoized fee computation
type FeeEntry struct {
	ComputedAt time.Time `json:"computed_at"`
	FeePercent *float64  `json:"fee_percent"` // nil if the fee could not be computed
	Text       string    `json:"text"`
	Params     FeeParams `json:"params"`
}
