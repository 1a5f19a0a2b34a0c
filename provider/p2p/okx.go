package p2p

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/TarasTrach/NexusBot/storage/types"
)

const OKXURL = "https://www.okx.com/v3/c2c/tradingOrders/books"

// okxBank is the OKX method covering every bank transfer, local banks included
const okxBank = "bank"

// okxPayments are the OKX names of the shared payment methods
var okxPayments = paymentNames{
	"Bank Transfer": okxBank,
}

type okxResponse struct {
	Data json.RawMessage `json:"data"`
}

type okxOrder struct {
	ID                     flexString `json:"id"`
	Price                  flexFloat  `json:"price"`
	AvailableAmount        flexFloat  `json:"availableAmount"`
	QuoteMinAmountPerOrder flexFloat  `json:"quoteMinAmountPerOrder"`
	QuoteMaxAmountPerOrder flexFloat  `json:"quoteMaxAmountPerOrder"`
	NickName               string     `json:"nickName"`
	PaymentMethods         []string   `json:"paymentMethods"`
}

// OKXProvider fetches P2P advertisements from the OKX order books
type OKXProvider struct {
	client *http.Client
	url    string
}

// NewOKXProvider creates a new instance of the OKX P2P provider
func NewOKXProvider(url string, timeout time.Duration) *OKXProvider {
	return &OKXProvider{
		client: newClient(timeout),
		url:    url,
	}
}

func (p *OKXProvider) Source() types.Source {
	return types.SourceOKX
}

// okxBook returns the OKX book that serves the requester's side.
// A buyer takes from the sellers' book, and vice versa
func okxBook(side types.Side) (string, string) {
	if side == types.SideSELL {
		return "buy", "price_desc"
	}

	return "sell", "price_asc"
}

// okxPaymentMethods translates the shared payment methods into OKX ones.
// Names OKX doesn't list (bank aliases, local bank names) fall into its bank method
func okxPaymentMethods(methods []string) []string {
	if len(methods) == 0 {
		return nil
	}

	translated := make([]string, 0, len(methods))
	for _, method := range methods {
		name, ok := okxPayments[method]
		if !ok {
			name = okxBank
		}

		if !slices.Contains(translated, name) {
			translated = append(translated, name)
		}
	}

	return translated
}

func (p *OKXProvider) Fetch(ctx context.Context, q *types.Query) ([]*types.Order, error) {
	book, sortType := okxBook(q.Side)

	paymentMethod := "all"
	if methods := okxPaymentMethods(q.PaymentMethods); len(methods) > 0 {
		paymentMethod = strings.Join(methods, ",")
	}

	params := url.Values{}
	params.Set("quoteCurrency", strings.ToLower(q.Fiat.String()))
	params.Set("baseCurrency", strings.ToLower(q.Asset.String()))
	params.Set("side", book)
	params.Set("userType", "all")
	params.Set("sortType", sortType)
	params.Set("paymentMethod", paymentMethod)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("unable to create GET request: %w", err)
	}

	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Referer", "https://www.okx.com/c2c")

	var resp okxResponse
	if err = doJSON(p.client, req, &resp); err != nil {
		return nil, fmt.Errorf("okx: %w", err)
	}

	var books map[string]json.RawMessage
	if err = json.Unmarshal(resp.Data, &books); err != nil {
		return nil, nil //nolint:nilnil // no books in the response
	}

	items := decodeList[okxOrder](books[book])

	// OKX returns the whole book, paginate locally
	start, end := pageWindow(len(items), q.PageOrDefault(), q.PageSizeOrDefault())
	orders := make([]*types.Order, 0, end-start)

	for _, item := range items[start:end] {
		order := &types.Order{
			ID:             string(item.ID),
			Price:          float64(item.Price),
			Quantity:       float64(item.AvailableAmount),
			MinLimit:       float64(item.QuoteMinAmountPerOrder),
			MaxLimit:       float64(item.QuoteMaxAmountPerOrder),
			Counterparty:   item.NickName,
			PaymentMethods: okxPayments.toShared(item.PaymentMethods),
			Source:         types.SourceOKX,
		}

		if !order.Valid() {
			continue
		}

		orders = append(orders, order)
	}

	return orders, nil
}
