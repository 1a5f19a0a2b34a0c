// Package p2p provides P2P order book adapters for crypto exchanges.
//
// Every adapter translates a generic types.Query into the exchange request,
// and normalizes the response into types.Order records tagged with the source.
// Numeric fields are accepted both as JSON numbers and numeric strings.
// Records with a non-positive price, or inverted limits, are dropped.
//
// # Adapters
//
// ## Binance
//
// Source: "Binance"
// API: POST https://p2p.binance.com/bapi/c2c/v2/friendly/c2c/adv/search
//
// The trade type is the requester's side. Payment methods are passed through.
//
// ## OKX
//
// Source: "OKX"
// API: GET https://www.okx.com/v3/c2c/tradingOrders/books
//
// A BUY request reads the "sell" book sorted by price_asc,
// a SELL request reads the "buy" book sorted by price_desc.
// OKX returns the full book, so pages are cut locally.
//
// ## Bybit
//
// Source: "Bybit"
// API: POST https://api2.bybit.com/fiat/otc/item/online
//
// Side "1" is BUY, "0" is SELL. Payment methods are sent as Bybit ids
// (Monobank = 43, ABank = 1) and translated back on the way out.
// This is the only adapter reporting a recent order count.
//
// ## Kucoin
//
// Source: "Kucoin"
// API: GET https://www.kucoin.com/_api/otc/ad/list
//
// The advertiser side is inverted. An unsuccessful response yields no orders.
//
// # Failure handling
//
// Transport failures, non-2xx statuses and undecodable bodies are returned as errors.
// A decodable body whose order list is missing, or is not an array, yields no orders.
package p2p
