//nolint:tagliatelle // Bybit API uses snake case
package p2p

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/TarasTrach/NexusBot/storage/types"
)

const BybitURL = "https://api2.bybit.com/fiat/otc/item/online"

// bybitPayments are the Bybit payment ids of the shared payment methods
var bybitPayments = paymentNames{
	"Monobank": "43",
	"ABank":    "1",
}

type bybitRequest struct {
	UserID             string         `json:"userId"`
	TokenID            types.Currency `json:"tokenId"`
	CurrencyID         types.Currency `json:"currencyId"`
	Payment            []string       `json:"payment"`
	Side               string         `json:"side"`
	Size               string         `json:"size"`
	Page               string         `json:"page"`
	Amount             string         `json:"amount"`
	SortType           string         `json:"sortType"`
	PaymentPeriod      []string       `json:"paymentPeriod"`
	VerificationFilter int            `json:"verificationFilter"`
	ItemRegion         int            `json:"itemRegion"`
	VaMaker            bool           `json:"vaMaker"`
	BulkMaker          bool           `json:"bulkMaker"`
	CanTrade           bool           `json:"canTrade"`
}

type bybitResponse struct {
	RetMsg  string          `json:"ret_msg"`
	RetCode int             `json:"ret_code"`
	Result  json.RawMessage `json:"result"`
}

type bybitResult struct {
	Items json.RawMessage `json:"items"`
}

type bybitItem struct {
	ID             flexString `json:"id"`
	Price          flexFloat  `json:"price"`
	Quantity       flexFloat  `json:"quantity"`
	MinAmount      flexFloat  `json:"minAmount"`
	MaxAmount      flexFloat  `json:"maxAmount"`
	RecentOrderNum *flexFloat `json:"recentOrderNum"`
	NickName       string     `json:"nickName"`
	Payments       []string   `json:"payments"`
}

// BybitProvider fetches P2P advertisements from Bybit
type BybitProvider struct {
	client *http.Client
	url    string
}

// NewBybitProvider creates a new instance of the Bybit P2P provider
func NewBybitProvider(url string, timeout time.Duration) *BybitProvider {
	return &BybitProvider{
		client: newClient(timeout),
		url:    url,
	}
}

func (p *BybitProvider) Source() types.Source {
	return types.SourceBybit
}

// bybitSide returns the Bybit side code ("1" buy, "0" sell)
func bybitSide(side types.Side) string {
	if side == types.SideBUY {
		return "1"
	}

	return "0"
}

func (p *BybitProvider) Fetch(ctx context.Context, q *types.Query) ([]*types.Order, error) {
	payment := bybitPayments.toExchange(q.PaymentMethods)
	if payment == nil {
		payment = []string{}
	}

	reqBody := bybitRequest{
		TokenID:       q.Asset,
		CurrencyID:    q.Fiat,
		Payment:       payment,
		Side:          bybitSide(q.Side),
		Size:          strconv.Itoa(q.PageSizeOrDefault()),
		Page:          strconv.Itoa(q.PageOrDefault()),
		Amount:        formatAmount(q.TargetAmount),
		SortType:      "TRADE_PRICE",
		PaymentPeriod: []string{},
		ItemRegion:    1,
	}

	req, err := newJSONRequest(ctx, http.MethodPost, p.url, reqBody)
	if err != nil {
		return nil, err
	}

	var resp bybitResponse
	if err = doJSON(p.client, req, &resp); err != nil {
		return nil, fmt.Errorf("bybit: %w", err)
	}

	if resp.RetCode != 0 {
		return nil, fmt.Errorf("bybit: request rejected (%d): %s", resp.RetCode, resp.RetMsg)
	}

	var result bybitResult
	if err = json.Unmarshal(resp.Result, &result); err != nil {
		return nil, nil //nolint:nilnil // no result in the response
	}

	items := decodeList[bybitItem](result.Items)
	orders := make([]*types.Order, 0, len(items))

	for _, item := range items {
		order := &types.Order{
			ID:             string(item.ID),
			Price:          float64(item.Price),
			Quantity:       float64(item.Quantity),
			MinLimit:       float64(item.MinAmount),
			MaxLimit:       float64(item.MaxAmount),
			Counterparty:   item.NickName,
			PaymentMethods: bybitPayments.toShared(item.Payments),
			Source:         types.SourceBybit,
		}

		if item.RecentOrderNum != nil {
			count := int(*item.RecentOrderNum)
			order.RecentOrderCount = &count
		}

		if !order.Valid() {
			continue
		}

		orders = append(orders, order)
	}

	return orders, nil
}
