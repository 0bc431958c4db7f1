package models

import "time"

// OptionType represents the type of an option contract.
type OptionType string

const (
	OptionCall OptionType = "call"
	OptionPut  OptionType = "put"
)

// OptionContract represents a single option contract.
type OptionContract struct {
	Symbol       string
	Strike       float64
	Expiry       time.Time
	Type         OptionType
	Bid          float64
	Ask          float64
	Volume       int64
	OpenInterest int64
	IV           float64
	Delta        float64
}

// Mid returns the bid/ask midpoint price of the contract.
func (c OptionContract) Mid() float64 {
	return (c.Bid + c.Ask) / 2
}

// OptionChain represents the option chain for a symbol at one expiry.
type OptionChain struct {
	Symbol          string
	Expiry          time.Time
	UnderlyingPrice float64
	Calls           []OptionContract
	Puts            []OptionContract
}

// OptionOpportunity is a selected option contract with its computed
// annualized premium yield.
type OptionOpportunity struct {
	Contract OptionContract
	Yield    float64
}
