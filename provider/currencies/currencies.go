package currencies

import "github.com/TarasTrach/NexusBot/storage/types"

var (
	USDT types.Currency = "USDT"
	USD  types.Currency = "USD"
	EUR  types.Currency = "EUR"
	UAH  types.Currency = "UAH"
)
