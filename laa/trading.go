package laa

// OneWayTrading decides once whether to execute an irreversible trade now.
//
//	threshold = (1-trust)*buyPrice + trust*prediction
//
// The trade executes when currentPrice >= threshold. The prediction is not
// clamped since prices are unbounded above. Trust outside [0,1] extrapolates
// the threshold linearly; that is accepted input, not an error.
type OneWayTrading struct {
	buyPrice float64
}

// NewOneWayTrading creates a one-way trading engine.
// Returns ErrInvalidConfiguration if buyPrice is not a positive finite number.
func NewOneWayTrading(buyPrice float64) (*OneWayTrading, error) {
	if err := validatePositive("buy_price", buyPrice); err != nil {
		return nil, err
	}
	return &OneWayTrading{buyPrice: buyPrice}, nil
}

// BuyPrice returns the reference price.
func (o *OneWayTrading) BuyPrice() float64 {
	return o.buyPrice
}

// Threshold returns the blended reservation price.
func (o *OneWayTrading) Threshold(prediction, trust float64) float64 {
	return blend(o.buyPrice, prediction, trust)
}

// Decide reports whether to trade at currentPrice.
func (o *OneWayTrading) Decide(currentPrice, prediction, trust float64) bool {
	return currentPrice >= o.Threshold(prediction, trust)
}
