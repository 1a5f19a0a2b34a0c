package p2p

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/TarasTrach/NexusBot/storage/types"
)

const KucoinURL = "https://www.kucoin.com/_api/otc/ad/list"

// kucoinPayments are the Kucoin pay type codes of the shared payment methods
var kucoinPayments = paymentNames{
	"Bank Transfer": "BANK_TRANSFER",
	"Monobank":      "MONOBANK",
	"PrivatBank":    "PRIVATBANK",
}

type kucoinResponse struct {
	Items   json.RawMessage `json:"items"`
	Success bool            `json:"success"`
}

type kucoinItem struct {
	ID               flexString `json:"id"`
	FloatPrice       flexFloat  `json:"floatPrice"`
	CurrencyQuantity flexFloat  `json:"currencyQuantity"`
	LimitMinQuote    flexFloat  `json:"limitMinQuote"`
	LimitMaxQuote    flexFloat  `json:"limitMaxQuote"`
	NickName         string     `json:"nickName"`
	AdPayTypes       []struct {
		PayTypeCode string `json:"payTypeCode"`
	} `json:"adPayTypes"`
}

// KucoinProvider fetches P2P advertisements from Kucoin
type KucoinProvider struct {
	client *http.Client
	url    string
}

// NewKucoinProvider creates a new instance of the Kucoin P2P provider
func NewKucoinProvider(url string, timeout time.Duration) *KucoinProvider {
	return &KucoinProvider{
		client: newClient(timeout),
		url:    url,
	}
}

func (p *KucoinProvider) Source() types.Source {
	return types.SourceKucoin
}

// kucoinSide returns the advertiser side serving the requester
func kucoinSide(side types.Side) string {
	if side == types.SideBUY {
		return "SELL"
	}

	return "BUY"
}

func (p *KucoinProvider) Fetch(ctx context.Context, q *types.Query) ([]*types.Order, error) {
	params := url.Values{}
	params.Set("status", "PUTUP")
	params.Set("currency", q.Asset.String())
	params.Set("legal", q.Fiat.String())
	params.Set("side", kucoinSide(q.Side))
	params.Set("page", strconv.Itoa(q.PageOrDefault()))
	params.Set("pageSize", strconv.Itoa(q.PageSizeOrDefault()))
	params.Set("sortCode", "PRICE")
	params.Set("highQualityMerchant", "0")
	params.Set("canDealOrder", "false")
	params.Set("lang", "en_US")

	if methods := kucoinPayments.toExchange(q.PaymentMethods); len(methods) > 0 {
		params.Set("payTypeCodes", strings.Join(methods, ","))
	}

	if amount := formatAmount(q.TargetAmount); amount != "" {
		params.Set("amount", amount)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("unable to create GET request: %w", err)
	}

	var resp kucoinResponse
	if err = doJSON(p.client, req, &resp); err != nil {
		return nil, fmt.Errorf("kucoin: %w", err)
	}

	if !resp.Success {
		return nil, nil //nolint:nilnil // unsuccessful responses carry no orders
	}

	items := decodeList[kucoinItem](resp.Items)
	orders := make([]*types.Order, 0, len(items))

	for _, item := range items {
		methods := make([]string, 0, len(item.AdPayTypes))
		for _, payType := range item.AdPayTypes {
			methods = append(methods, payType.PayTypeCode)
		}

		order := &types.Order{
			ID:             string(item.ID),
			Price:          float64(item.FloatPrice),
			Quantity:       float64(item.CurrencyQuantity),
			MinLimit:       float64(item.LimitMinQuote),
			MaxLimit:       float64(item.LimitMaxQuote),
			Counterparty:   item.NickName,
			PaymentMethods: kucoinPayments.toShared(methods),
			Source:         types.SourceKucoin,
		}

		if !order.Valid() {
			continue
		}

		orders = append(orders, order)
	}

	return orders, nil
}
