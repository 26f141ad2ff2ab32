package domain

// Coin is a denom/amount pair attached to an inbound message as payment.
type Coin struct {
	Denom  string `json:"denom"`
	Amount Amount `json:"amount"`
}
