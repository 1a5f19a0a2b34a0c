package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/TarasTrach/NexusBot/rank"
	"github.com/TarasTrach/NexusBot/settings"
	"github.com/TarasTrach/NexusBot/storage/types"
)

const (
	defaultLimit = 10
	maxLimit     = 50
)

var (
	errUnableToQuoteFee = errors.New("unable to quote fee")

	errInvalidSide      = errors.New("invalid side (must be BUY or SELL)")
	errInvalidAmount    = errors.New("invalid amount")
	errInvalidLimit     = errors.New("invalid limit")
	errInvalidThreshold = errors.New("invalid liquidity threshold")
	errInvalidRate      = errors.New("invalid rate")
	errInvalidDiscount  = errors.New("invalid discount")
	errInvalidRankIndex = errors.New("invalid rank index")
)

// RankedOrders serves the ranked orders of all sources for the asset / fiat pair
func (s *Server) RankedOrders(w http.ResponseWriter, r *http.Request) {
	var (
		assetParam = chi.URLParam(r, "asset")
		fiatParam  = chi.URLParam(r, "fiat")

		values = r.URL.Query()

		sideParam      = values.Get("side")
		amountParam    = values.Get("amount")
		limitParam     = values.Get("limit")
		thresholdParam = values.Get("liquidity_threshold")
	)

	// Parse the currencies
	asset, err := parseCurrencySymbol(assetParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	fiat, err := parseCurrencySymbol(fiatParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the side (defaults to BUY)
	side, err := parseSide(sideParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the target amount (optional)
	amount, err := parseAmount(amountParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	limit, err := parseLimit(limitParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	threshold, err := parseThreshold(thresholdParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	q := &types.Query{
		TargetAmount:   amount,
		Asset:          asset,
		Fiat:           fiat,
		Side:           side,
		PaymentMethods: values["payment_method"],
		Page:           1,
	}

	filters := rank.Filters{
		Exclude:            rank.Blocklist(values["exclude"]...),
		TargetAmount:       amount,
		LiquidityThreshold: threshold,
		Limit:              limit,
	}

	// Partial (or empty) results are not an error
	orders := s.orders.Orders(r.Context(), q, filters)

	writeJSON(w, http.StatusOK, &OrdersResponse{
		Results: orders,
	})
}

// FeeQuote serves the fee quote. Missing params fall back to the stored ones
func (s *Server) FeeQuote(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	params, err := s.fees.DefaultParams(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to read fee params",
			"err", err,
		)

		writeError(w, http.StatusInternalServerError, errUnableToQuoteFee)

		return
	}

	if params, err = overrideFeeParams(params, values); err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	entry, err := s.fees.Quote(r.Context(), params)
	if err != nil {
		s.logger.Debug(
			"unable to quote fee",
			"err", err,
		)

		writeError(w, http.StatusInternalServerError, errUnableToQuoteFee)

		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func overrideFeeParams(params types.FeeParams, values map[string][]string) (types.FeeParams, error) {
	get := func(key string) string {
		if v := values[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}

		return ""
	}

	if raw := get("rate"); raw != "" {
		rate, ok := settings.ParseNumber(raw)
		if !ok {
			return params, errInvalidRate
		}

		params.Rate = rate
	}

	if raw := get("amount"); raw != "" {
		amount, ok := settings.ParseNumber(raw)
		if !ok {
			return params, errInvalidAmount
		}

		params.Amount = amount
	}

	if raw := get("discount"); raw != "" {
		discount, ok := settings.ParseNumber(raw)
		if !ok || discount >= 100 {
			return params, errInvalidDiscount
		}

		params.Discount = discount
	}

	if raw := get("rank_index"); raw != "" {
		index, err := strconv.Atoi(raw)
		if err != nil || index < 0 {
			return params, errInvalidRankIndex
		}

		params.RankIndex = index
	}

	return params, nil
}

func parseSide(raw string) (types.Side, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return types.SideBUY, nil // default is buying the asset
	}

	side := types.Side(strings.ToUpper(v))
	if !side.Valid() {
		return "", errInvalidSide
	}

	return side, nil
}

func parseAmount(raw string) (*float64, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil, nil //nolint:nilnil // No amount filter
	}

	amount, ok := settings.ParseNumber(v)
	if !ok {
		return nil, errInvalidAmount
	}

	return &amount, nil
}

func parseLimit(raw string) (int, error) {
	limit := defaultLimit

	if v := strings.TrimSpace(raw); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, errInvalidLimit
		}

		limit = n
	}

	if limit == 0 {
		limit = defaultLimit
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	return limit, nil
}

func parseThreshold(raw string) (int, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return rank.DefaultLiquidityThreshold, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errInvalidThreshold
	}

	return n, nil
}

func parseCurrencySymbol(v string) (types.Currency, error) {
	s := strings.ToUpper(strings.TrimSpace(v))
	if len(s) < 3 || len(s) > 5 {
		return "", errors.New("invalid currency (must be 3-5 letters)")
	}

	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return "", errors.New("invalid currency (must be A-Z)")
		}
	}

	return types.Currency(s), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Fine to ignore
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := &ErrorResponse{
		Error: err.Error(),
	}

	writeJSON(w, status, resp)
}
