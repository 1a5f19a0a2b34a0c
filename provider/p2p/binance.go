package p2p

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/TarasTrach/NexusBot/storage/types"
)

const BinanceURL = "https://p2p.binance.com/bapi/c2c/v2/friendly/c2c/adv/search"

type binanceRequest struct {
	PayTypes      []string       `json:"payTypes,omitempty"`
	PublisherType *string        `json:"publisherType"`
	Asset         types.Currency `json:"asset"`
	Fiat          types.Currency `json:"fiat"`
	TradeType     types.Side     `json:"tradeType"`
	TransAmount   string         `json:"transAmount,omitempty"`
	Page          int            `json:"page"`
	Rows          int            `json:"rows"`
}

type binanceResponse struct {
	Data json.RawMessage `json:"data"`
}

type binanceOffer struct {
	Adv struct {
		AdvNo                flexString `json:"advNo"`
		Price                flexFloat  `json:"price"`
		TradableQuantity     flexFloat  `json:"tradableQuantity"`
		SurplusAmount        flexFloat  `json:"surplusAmount"`
		MinSingleTransAmount flexFloat  `json:"minSingleTransAmount"`
		MaxSingleTransAmount flexFloat  `json:"maxSingleTransAmount"`
		TradeMethods         []struct {
			PayType string `json:"payType"`
		} `json:"tradeMethods"`
	} `json:"adv"`
	Advertiser struct {
		NickName string `json:"nickName"`
	} `json:"advertiser"`
}

// BinanceProvider fetches P2P advertisements from Binance
type BinanceProvider struct {
	client *http.Client
	url    string
}

// NewBinanceProvider creates a new instance of the Binance P2P provider
func NewBinanceProvider(url string, timeout time.Duration) *BinanceProvider {
	return &BinanceProvider{
		client: newClient(timeout),
		url:    url,
	}
}

func (p *BinanceProvider) Source() types.Source {
	return types.SourceBinance
}

func (p *BinanceProvider) Fetch(ctx context.Context, q *types.Query) ([]*types.Order, error) {
	reqBody := binanceRequest{
		PayTypes:    q.PaymentMethods,
		Asset:       q.Asset,
		Fiat:        q.Fiat,
		TradeType:   q.Side, // Binance uses the requester's side
		TransAmount: formatAmount(q.TargetAmount),
		Page:        q.PageOrDefault(),
		Rows:        q.PageSizeOrDefault(),
	}

	req, err := newJSONRequest(ctx, http.MethodPost, p.url, reqBody)
	if err != nil {
		return nil, err
	}

	var resp binanceResponse
	if err = doJSON(p.client, req, &resp); err != nil {
		return nil, fmt.Errorf("binance: %w", err)
	}

	offers := decodeList[binanceOffer](resp.Data)
	orders := make([]*types.Order, 0, len(offers))

	for _, offer := range offers {
		quantity := float64(offer.Adv.TradableQuantity)
		if quantity == 0 {
			quantity = float64(offer.Adv.SurplusAmount)
		}

		methods := make([]string, 0, len(offer.Adv.TradeMethods))
		for _, method := range offer.Adv.TradeMethods {
			methods = append(methods, method.PayType)
		}

		order := &types.Order{
			ID:             string(offer.Adv.AdvNo),
			Price:          float64(offer.Adv.Price),
			Quantity:       quantity,
			MinLimit:       float64(offer.Adv.MinSingleTransAmount),
			MaxLimit:       float64(offer.Adv.MaxSingleTransAmount),
			Counterparty:   offer.Advertiser.NickName,
			PaymentMethods: methods,
			Source:         types.SourceBinance,
		}

		if !order.Valid() {
			continue
		}

		orders = append(orders, order)
	}

	return orders, nil
}
