package session

// State is the step a session is at
type State int

const (
	StateIdle State = iota
	StateAwaitingAmount
	StateAwaitingBank
	StateAwaitingRateConfirmation
	StateAwaitingRateValue
	StateAwaitingDiscount
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingAmount:
		return "awaiting_amount"
	case StateAwaitingBank:
		return "awaiting_bank"
	case StateAwaitingRateConfirmation:
		return "awaiting_rate_confirmation"
	case StateAwaitingRateValue:
		return "awaiting_rate_value"
	case StateAwaitingDiscount:
		return "awaiting_discount"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Flow is the kind of parameters a session collects
type Flow int

const (
	// FlowExchange collects the amount, the bank and the reference rate
	FlowExchange Flow = iota

	// FlowRate collects a new reference rate
	FlowRate

	// FlowSettings collects the default discount and amount
	FlowSettings
)

func (f Flow) String() string {
	switch f {
	case FlowExchange:
		return "exchange"
	case FlowRate:
		return "rate"
	case FlowSettings:
		return "settings"
	default:
		return "unknown"
	}
}

// Params are the collected values, frozen on completion
type Params struct {
	Bank        string
	Amount      float64 // USD
	Rate        float64 // reference rate
	Discount    float64 // percent
	RateChanged bool    // the rate was entered, rather than confirmed
}

// Selection data of the offered choices
const (
	BankPrivat = "PrivatBank"
	BankMono   = "Monobank"
	BankA      = "ABank"

	RateOK     = "RATE_OK"
	RateChange = "RATE_CHANGE"
)
